// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Text generation (risk narratives, query summaries)
	AnthropicAPIKey string // Optional; static fallback text is used when unset
	TextGenModel    string
	TextGenTimeout  time.Duration

	// Forecasting
	MonteCarloTrials int

	// Observability
	OTLPEndpoint   string // OTLP gRPC collector endpoint (optional)
	TracingEnabled bool
}

// Defaults
const (
	DefaultPort             = "8080"
	DefaultEnv              = "development"
	DefaultLogLevel         = "info"
	DefaultTextGenModel     = "claude-3-5-haiku-latest"
	DefaultTextGenTimeoutMs = 10000
	DefaultMonteCarloTrials = 1000
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", DefaultPort),
		Env:              getEnv("ENV", DefaultEnv),
		LogLevel:         getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:      os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		TextGenModel:     getEnv("TEXTGEN_MODEL", DefaultTextGenModel),
		TextGenTimeout:   time.Duration(getEnvInt64("TEXTGEN_TIMEOUT_MS", DefaultTextGenTimeoutMs)) * time.Millisecond,
		MonteCarloTrials: int(getEnvInt64("MONTE_CARLO_TRIALS", DefaultMonteCarloTrials)),
		OTLPEndpoint:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
	cfg.TracingEnabled = cfg.OTLPEndpoint != ""

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is coherent
func (c *Config) Validate() error {
	if c.MonteCarloTrials < 100 {
		return fmt.Errorf("MONTE_CARLO_TRIALS must be at least 100, got %d", c.MonteCarloTrials)
	}
	if c.TextGenTimeout <= 0 {
		return fmt.Errorf("TEXTGEN_TIMEOUT_MS must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}
