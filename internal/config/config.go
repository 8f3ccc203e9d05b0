// Package config provides Viper-based hierarchical configuration management.
// Precedence: defaults, then an optional config.yaml, then environment
// variables with the CRYPTOFOLIO prefix. API credentials are only ever read
// from the environment; a missing credential disables the corresponding
// feature instead of falling back to any shared key.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Explorer struct {
		BlockCypherAPIKey string `mapstructure:"blockcypher_api_key" yaml:"-"`
		EtherscanAPIKey   string `mapstructure:"etherscan_api_key" yaml:"-"`
		TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		MaxTransactions   int    `mapstructure:"max_transactions" yaml:"max_transactions"`
		CacheTTLMinutes   int    `mapstructure:"cache_ttl_minutes" yaml:"cache_ttl_minutes"`
		RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	} `mapstructure:"explorer" yaml:"explorer"`

	AI struct {
		APIKey         string `mapstructure:"api_key" yaml:"-"`
		Model          string `mapstructure:"model" yaml:"model"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	} `mapstructure:"ai" yaml:"ai"`

	Prices struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"prices" yaml:"prices"`
}

// Load initializes Viper configuration with hierarchical loading.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.cryptofolio")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CRYPTOFOLIO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
		// No config file is fine; defaults and env vars apply.
	}

	// Credentials always come from well-known unprefixed env vars.
	if err := v.BindEnv("explorer.blockcypher_api_key", "BLOCKCYPHER_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind BLOCKCYPHER_API_KEY: %w", err)
	}
	if err := v.BindEnv("explorer.etherscan_api_key", "ETHERSCAN_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind ETHERSCAN_API_KEY: %w", err)
	}
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("explorer.timeout_seconds", 15)
	v.SetDefault("explorer.max_transactions", 7000)
	v.SetDefault("explorer.cache_ttl_minutes", 5)
	v.SetDefault("explorer.requests_per_second", 3.0)

	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout_seconds", 30)

	v.SetDefault("prices.file", "")
}

func validate(c *Config) error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json; got %q", c.Log.Format)
	}
	if c.Explorer.TimeoutSeconds <= 0 {
		return fmt.Errorf("explorer.timeout_seconds must be positive")
	}
	if c.Explorer.MaxTransactions <= 0 {
		return fmt.Errorf("explorer.max_transactions must be positive")
	}
	if c.Explorer.CacheTTLMinutes <= 0 {
		return fmt.Errorf("explorer.cache_ttl_minutes must be positive")
	}
	if c.Explorer.RequestsPerSecond <= 0 {
		return fmt.Errorf("explorer.requests_per_second must be positive")
	}
	if c.AI.TimeoutSeconds <= 0 {
		return fmt.Errorf("ai.timeout_seconds must be positive")
	}
	return nil
}

// FetchTimeout returns the explorer request timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Explorer.TimeoutSeconds) * time.Second
}

// CacheTTL returns the fetch-result cache time-to-live.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Explorer.CacheTTLMinutes) * time.Minute
}

// AITimeout returns the classification request timeout.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// AIEnabled reports whether a classification credential is configured.
func (c *Config) AIEnabled() bool {
	return c.AI.APIKey != ""
}
