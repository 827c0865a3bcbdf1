package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("CI", "true")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("DB_NAME", "tastebox")
	t.Setenv("DB_SSL_MODE", "disable")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://tastebox.app")
	t.Setenv("LLM_MAX_TOKENS", "2048")
	t.Setenv("LLM_REASONING_EFFORT", "low")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	// Test database configuration
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "postgres", cfg.DBUser)
	assert.Equal(t, "postgres", cfg.DBPassword)
	assert.Equal(t, "tastebox", cfg.DBName)
	assert.Equal(t, "disable", cfg.DBSSLMode)

	// Test JWT configuration
	assert.Equal(t, "test-secret", cfg.JWTSecret)

	// Test Redis configuration
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)

	assert.Equal(t, []string{"http://localhost:5173", "https://tastebox.app"}, cfg.CORSOrigins)
	assert.Equal(t, 2048, cfg.LLMMaxTokens)
	assert.Equal(t, "low", cfg.LLMReasoningEffort)
}

func TestLoadConfigWithDefaults(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("ENV", "development")
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("JWT_SECRET", "dev-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", cfg.LLMAPIURL)
	assert.Equal(t, 4096, cfg.LLMMaxTokens)
	assert.Empty(t, cfg.LLMReasoningEffort)
	assert.Equal(t, 20, cfg.ImportRateLimit)
	assert.Equal(t, time.Hour, cfg.ImportRateWindow)
	assert.Empty(t, cfg.RedisAddr())
}

func TestLoadConfigFromSecrets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("from-file\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "redis_host"), []byte("redis"), 0o600))

	t.Setenv("CI", "")
	t.Setenv("ENV", "development")
	t.Setenv("SECRETS_DIR", dir)
	t.Setenv("JWT_SECRET", "")

	t.Run("should read docker secrets", func(t *testing.T) {
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.JWTSecret)
		assert.Equal(t, "redis:6379", cfg.RedisAddr())
	})

	t.Run("should prefer environment variables", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "from-env")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.JWTSecret)
	})
}

func TestValidateConfig(t *testing.T) {
	t.Setenv("CI", "")

	t.Run("should require database credentials in production", func(t *testing.T) {
		t.Setenv("ENV", "production")
		err := ValidateConfig(&Config{DBDriver: "postgres", JWTSecret: "x", LLMMaxTokens: 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_PASSWORD")
		assert.Contains(t, err.Error(), "LLM_API_KEY")
	})

	t.Run("should not require a database host for sqlite", func(t *testing.T) {
		t.Setenv("ENV", "production")
		err := ValidateConfig(&Config{DBDriver: "sqlite", DBName: "tastebox.db", JWTSecret: "x", LLMAPIKey: "k", LLMMaxTokens: 1})
		assert.NoError(t, err)
	})

	t.Run("should reject unknown drivers", func(t *testing.T) {
		t.Setenv("ENV", "development")
		err := ValidateConfig(&Config{DBDriver: "mysql", JWTSecret: "x", LLMMaxTokens: 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_DRIVER")
	})

	t.Run("should reject invalid numeric settings", func(t *testing.T) {
		t.Setenv("ENV", "development")
		t.Setenv("SECRETS_DIR", t.TempDir())
		t.Setenv("JWT_SECRET", "x")
		t.Setenv("LLM_MAX_TOKENS", "many")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
}
