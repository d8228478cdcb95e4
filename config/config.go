package config

import (
	"fmt"
	"os"
	"strconv"
)

// ConfigurationError reports a missing or unusable required setting.
// Raised by Validate before any network call is attempted.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// External provider configurations
	AlphaVantage AlphaVantageConfig
	Marketaux    MarketauxConfig

	// Fetch pacing configuration
	Fetch FetchConfig

	// HTTP configuration
	HTTP HTTPConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	APIKey string
}

// MarketauxConfig holds Marketaux news API configuration
type MarketauxConfig struct {
	APIToken string
}

// FetchConfig holds pacing configuration for provider fetch batches
type FetchConfig struct {
	// PaceSeconds is the wait between consecutive provider calls within one
	// batch. The free quotes tier allows 5 calls/minute, hence 12s.
	PaceSeconds int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port               string
	CORSAllowedOrigins string
	RequestTimeoutSec  int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		AlphaVantage: AlphaVantageConfig{
			APIKey: os.Getenv("ALPHA_VANTAGE_API_KEY"),
		},
		Marketaux: MarketauxConfig{
			APIToken: os.Getenv("MARKETAUX_API_TOKEN"),
		},
		Fetch: FetchConfig{
			PaceSeconds: getEnvInt("FETCH_PACE_SECONDS", 12),
		},
		HTTP: HTTPConfig{
			Port:               getEnvString("PORT", "8080"),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
			RequestTimeoutSec:  getEnvInt("HTTP_REQUEST_TIMEOUT_SECONDS", 120),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required settings are present. Missing credentials
// fail fast here rather than on the first provider call.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return &ConfigurationError{Key: "DATABASE_URL", Reason: "required"}
	}
	if c.AlphaVantage.APIKey == "" {
		return &ConfigurationError{Key: "ALPHA_VANTAGE_API_KEY", Reason: "required"}
	}
	if c.Marketaux.APIToken == "" {
		return &ConfigurationError{Key: "MARKETAUX_API_TOKEN", Reason: "required"}
	}
	if c.Fetch.PaceSeconds <= 0 {
		return &ConfigurationError{Key: "FETCH_PACE_SECONDS", Reason: "must be positive"}
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL: "postgres://localhost:5432/marketpulse_test",
		},
		AlphaVantage: AlphaVantageConfig{
			APIKey: "test-key",
		},
		Marketaux: MarketauxConfig{
			APIToken: "test-token",
		},
		Fetch: FetchConfig{
			PaceSeconds: 12,
		},
		HTTP: HTTPConfig{
			Port:               "8080",
			CORSAllowedOrigins: "*",
			RequestTimeoutSec:  120,
		},
	}
}
