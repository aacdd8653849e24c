// Package config handles loading and validating runtime configuration for the Cup Trip API.
// Configuration values (like the database URL and API port) are read from environment variables
// rather than being hardcoded, so the same binary runs in dev, staging and production with only
// the environment changed.
package config

import (
	"errors"
	"fmt"

	// env parses environment variables into a struct using `env:"..."` tags,
	// including defaults and required checks.
	"github.com/caarlos0/env/v11"
	// godotenv reads a .env file and loads its key=value pairs into the process environment.
	// Handy in development; in production the platform sets real environment variables.
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values for the application.
type Config struct {
	Port          string `env:"PORT" envDefault:"8080"`           // TCP port the HTTP server listens on
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`   // PostgreSQL connection string
	ClerkJWTKey   string `env:"CLERK_JWT_KEY"`                    // PEM public key Clerk signs session tokens with
	Env           string `env:"ENV" envDefault:"development"`     // "development", "staging", or "production"
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`      // zerolog level name: debug, info, warn, error
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"` // Apply pending migrations on start
	CORSOrigins   string `env:"CORS_ORIGINS" envDefault:"*"`      // Comma-separated list of allowed origins
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables and returns a populated Config.
// It first tries to load a .env file for local development; a missing .env is fine.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks rules that span fields. Outside development, tokens must be verified, so the
// Clerk signing key is mandatory there.
func (c *Config) validate() error {
	if !c.IsDevelopment() && c.ClerkJWTKey == "" {
		return errors.New("CLERK_JWT_KEY is required outside development")
	}
	return nil
}
