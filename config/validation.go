package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigRequirements defines required configuration for each environment
type ConfigRequirements struct {
	Required []string
}

var (
	// Environment-specific requirements
	requirements = map[Environment]ConfigRequirements{
		Development: {
			Required: []string{"JWT_SECRET"},
		},
		Test: {
			Required: []string{"JWT_SECRET"},
		},
		CI: {
			Required: []string{"DB_HOST", "DB_NAME", "DB_USER", "DB_PASSWORD", "JWT_SECRET"},
		},
		Production: {
			Required: []string{"DB_HOST", "DB_NAME", "DB_USER", "DB_PASSWORD", "JWT_SECRET", "LLM_API_KEY"},
		},
	}
)

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	reqs := requirements[env]

	var errors []string

	values := map[string]string{
		"DB_HOST":     cfg.DBHost,
		"DB_NAME":     cfg.DBName,
		"DB_USER":     cfg.DBUser,
		"DB_PASSWORD": cfg.DBPassword,
		"JWT_SECRET":  cfg.JWTSecret,
		"LLM_API_KEY": cfg.LLMAPIKey,
	}
	for _, key := range reqs.Required {
		if cfg.DBDriver == "sqlite" && strings.HasPrefix(key, "DB_") && key != "DB_NAME" {
			continue
		}
		if values[key] == "" {
			errors = append(errors, ValidationError{Field: key, Message: fmt.Sprintf("required in %s environment", env)}.Error())
		}
	}

	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		errors = append(errors, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)}.Error())
	}
	if cfg.LLMMaxTokens <= 0 {
		errors = append(errors, ValidationError{Field: "LLM_MAX_TOKENS", Message: "must be positive"}.Error())
	}
	if cfg.ImportRateLimit < 0 {
		errors = append(errors, ValidationError{Field: "IMPORT_RATE_LIMIT", Message: "must not be negative"}.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
