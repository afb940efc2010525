package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultAPIBaseURL = "http://localhost:8000"
	DefaultTimeout    = 15 * time.Second
)

// Config holds all configuration for the application
type Config struct {
	// API Configuration
	API APIConfig

	// Logging Configuration
	Logging LoggingConfig

	// Keyring disables the OS keychain when false (tokens then live for one
	// process only)
	Keyring bool
}

// APIConfig holds the backend connection settings
type APIConfig struct {
	BaseURL string        `validate:"required,url"`
	Timeout time.Duration `validate:"gt=0"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `validate:"omitempty,oneof=trace debug info warn warning error disabled off"`
	Format string `validate:"oneof=json console"` // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	baseURL := os.Getenv("HIREBOARD_API_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}

	timeout := DefaultTimeout
	if raw := os.Getenv("HIREBOARD_TIMEOUT"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid HIREBOARD_TIMEOUT %q: %w", raw, err)
		}
		timeout = parsed
	}

	// Logging configuration - the CLI only reports warnings by default
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "warn"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "console"
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL: baseURL,
			Timeout: timeout,
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
		Keyring: os.Getenv("HIREBOARD_NO_KEYRING") == "",
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
