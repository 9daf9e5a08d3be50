package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_NAME", "plateful_dev")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "plateful_dev", cfg.DBName)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	// Defaults fill in what the environment left unset.
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret")
}

func TestCacheEnabledDefaults(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "")

	assert.True(t, cacheEnabled(Development))
	assert.True(t, cacheEnabled(Production))
	assert.False(t, cacheEnabled(Test), "tests default to deterministic reads")
}

func TestCacheEnabledOverride(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "true")
	assert.True(t, cacheEnabled(Test))

	t.Setenv("CACHE_ENABLED", "false")
	assert.False(t, cacheEnabled(Production))
}

func TestValidateConfig(t *testing.T) {
	t.Setenv("ENV", "development")

	valid := &Config{
		ServerPort: "8080",
		DBHost:     "localhost",
		DBPort:     "5432",
		DBUser:     "postgres",
		DBName:     "plateful",
		JWTSecret:  "secret",
	}
	assert.NoError(t, ValidateConfig(valid))

	invalid := &Config{ServerPort: "8080"}
	err := ValidateConfig(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret")
	assert.Contains(t, err.Error(), "database host and port")
}
