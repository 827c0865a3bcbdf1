package config

import (
	"os"
	"strings"
)

// Environment selects where settings are read from and which ones are required
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment reads CI=true first, then ENV. An empty ENV means development;
// any other unrecognized value is returned as is so LoadConfig can reject it.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	env := Environment(strings.ToLower(strings.TrimSpace(os.Getenv("ENV"))))
	if env == "" {
		return Development
	}
	return env
}
