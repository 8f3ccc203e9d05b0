package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadClean(t *testing.T) *Config {
	t.Helper()
	// Make sure ambient credentials do not leak into the test.
	t.Setenv("BLOCKCYPHER_API_KEY", "")
	t.Setenv("ETHERSCAN_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	cfg, err := Load()
	require.NoError(t, err)
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	cfg := loadClean(t)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 15, cfg.Explorer.TimeoutSeconds)
	assert.Equal(t, 7000, cfg.Explorer.MaxTransactions)
	assert.Equal(t, 5, cfg.Explorer.CacheTTLMinutes)
	assert.Equal(t, 3.0, cfg.Explorer.RequestsPerSecond)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
	assert.Equal(t, 30, cfg.AI.TimeoutSeconds)
}

func TestLoadDurationHelpers(t *testing.T) {
	cfg := loadClean(t)

	assert.Equal(t, 15*time.Second, cfg.FetchTimeout())
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
	assert.Equal(t, 30*time.Second, cfg.AITimeout())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CRYPTOFOLIO_LOG_LEVEL", "debug")
	t.Setenv("CRYPTOFOLIO_EXPLORER_TIMEOUT_SECONDS", "30")

	cfg := loadClean(t)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 30, cfg.Explorer.TimeoutSeconds)
}

func TestLoadCredentialsFromEnvironment(t *testing.T) {
	t.Setenv("BLOCKCYPHER_API_KEY", "bc-key")
	t.Setenv("ETHERSCAN_API_KEY", "es-key")
	t.Setenv("GEMINI_API_KEY", "ai-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "bc-key", cfg.Explorer.BlockCypherAPIKey)
	assert.Equal(t, "es-key", cfg.Explorer.EtherscanAPIKey)
	assert.Equal(t, "ai-key", cfg.AI.APIKey)
	assert.True(t, cfg.AIEnabled())
}

func TestAIDisabledWithoutCredential(t *testing.T) {
	cfg := loadClean(t)
	assert.False(t, cfg.AIEnabled())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"invalid log level", "CRYPTOFOLIO_LOG_LEVEL", "verbose"},
		{"invalid log format", "CRYPTOFOLIO_LOG_FORMAT", "xml"},
		{"non-positive timeout", "CRYPTOFOLIO_EXPLORER_TIMEOUT_SECONDS", "0"},
		{"non-positive max transactions", "CRYPTOFOLIO_EXPLORER_MAX_TRANSACTIONS", "-1"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Setenv(test.key, test.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
