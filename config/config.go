package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// LLM extraction service
	LLMAPIKey          string
	LLMAPIURL          string
	LLMModel           string
	LLMMaxTokens       int
	LLMReasoningEffort string

	// Fetching and imports
	FetchProfilesFile string
	ImportRateLimit   int
	ImportRateWindow  time.Duration

	// Object storage
	S3BucketName string
	AWSRegion    string
}

const (
	defaultServerPort      = "8080"
	defaultServerHost      = "0.0.0.0"
	defaultDBDriver        = "postgres"
	defaultDBPort          = "5432"
	defaultDBSSLMode       = "disable"
	defaultRedisPort       = "6379"
	defaultLLMAPIURL       = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel        = "gpt-4o-mini"
	defaultLLMMaxTokens    = 4096
	defaultImportRateLimit = 20
	defaultImportWindow    = time.Hour
)

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	// Load configuration based on environment
	switch env {
	case CI:
		loadCIConfig(cfg)
	case Development, Test, Production:
		loadSecretsConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := applyDefaults(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCIConfig loads configuration for the CI environment from environment variables only
func loadCIConfig(cfg *Config) {
	cfg.ServerPort = os.Getenv("SERVER_PORT")
	cfg.ServerHost = os.Getenv("SERVER_HOST")
	cfg.DBDriver = os.Getenv("DB_DRIVER")
	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = os.Getenv("DB_PORT")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = os.Getenv("DB_SSL_MODE")
	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = os.Getenv("REDIS_PORT")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.LLMAPIKey = os.Getenv("LLM_API_KEY")
	loadOptional(cfg, os.Getenv)
}

// loadSecretsConfig reads Docker secrets; environment variables override them.
func loadSecretsConfig(cfg *Config) {
	cfg.ServerPort = lookup("SERVER_PORT")
	cfg.ServerHost = lookup("SERVER_HOST")
	cfg.DBDriver = lookup("DB_DRIVER")
	cfg.DBHost = lookup("DB_HOST")
	cfg.DBPort = lookup("DB_PORT")
	cfg.DBUser = lookup("DB_USER")
	cfg.DBPassword = lookup("DB_PASSWORD")
	cfg.DBName = lookup("DB_NAME")
	cfg.DBSSLMode = lookup("DB_SSL_MODE")
	cfg.RedisHost = lookup("REDIS_HOST")
	cfg.RedisPort = lookup("REDIS_PORT")
	cfg.RedisPassword = lookup("REDIS_PASSWORD")
	cfg.RedisURL = lookup("REDIS_URL")
	cfg.JWTSecret = lookup("JWT_SECRET")
	cfg.LLMAPIKey = lookup("LLM_API_KEY")
	loadOptional(cfg, lookup)
}

func loadOptional(cfg *Config, get func(string) string) {
	cfg.LLMAPIURL = get("LLM_API_URL")
	cfg.LLMModel = get("LLM_MODEL")
	cfg.LLMReasoningEffort = get("LLM_REASONING_EFFORT")
	cfg.FetchProfilesFile = get("FETCH_PROFILES_FILE")
	cfg.S3BucketName = get("S3_BUCKET_NAME")
	cfg.AWSRegion = get("AWS_REGION")
	if origins := get("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
}

func applyDefaults(cfg *Config) error {
	if cfg.ServerPort == "" {
		cfg.ServerPort = defaultServerPort
	}
	if cfg.ServerHost == "" {
		cfg.ServerHost = defaultServerHost
	}
	if cfg.DBDriver == "" {
		cfg.DBDriver = defaultDBDriver
	}
	if cfg.DBPort == "" {
		cfg.DBPort = defaultDBPort
	}
	if cfg.DBSSLMode == "" {
		cfg.DBSSLMode = defaultDBSSLMode
	}
	if cfg.RedisPort == "" {
		cfg.RedisPort = defaultRedisPort
	}
	if cfg.LLMAPIURL == "" {
		cfg.LLMAPIURL = defaultLLMAPIURL
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = defaultLLMModel
	}

	var err error
	if cfg.RedisDB, err = intSetting("REDIS_DB", 0); err != nil {
		return err
	}
	if cfg.LLMMaxTokens, err = intSetting("LLM_MAX_TOKENS", defaultLLMMaxTokens); err != nil {
		return err
	}
	if cfg.ImportRateLimit, err = intSetting("IMPORT_RATE_LIMIT", defaultImportRateLimit); err != nil {
		return err
	}
	cfg.ImportRateWindow = defaultImportWindow
	if raw := os.Getenv("IMPORT_RATE_WINDOW"); raw != "" {
		if cfg.ImportRateWindow, err = time.ParseDuration(raw); err != nil {
			return fmt.Errorf("IMPORT_RATE_WINDOW: %w", err)
		}
	}
	return nil
}

// RedisAddr returns the host:port pair for the Redis client, or "" when Redis is not configured.
func (c *Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func intSetting(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// lookup returns the environment variable, or the Docker secret named after it in lower case.
func lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return readSecret(strings.ToLower(key))
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
