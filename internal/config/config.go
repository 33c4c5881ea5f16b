// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"go-simpler.org/env"

	"github.com/mdhender/registro/internal/store"
)

// DefaultSecretKey is the insecure development fallback for SECRET_KEY.
const DefaultSecretKey = "dev"

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Addr      string `env:"ADDR" default:"0.0.0.0:8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// DatabaseURL selects PostgreSQL when set; otherwise SQLitePath is used.
	DatabaseURL     string `env:"DATABASE_URL"`
	DatabaseSSLMode string `env:"DATABASE_SSLMODE" default:"require"`
	SQLitePath      string `env:"SQLITE_PATH" default:"usuarios_local.db"`

	SecretKey string `env:"SECRET_KEY" default:"dev"`
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}
	return fromEnv()
}

func fromEnv() (*Config, error) {
	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.DatabaseSSLMode {
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("DATABASE_SSLMODE %q is not a valid sslmode", cfg.DatabaseSSLMode)
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}
	if cfg.Addr == "" {
		return fmt.Errorf("ADDR is required")
	}
	return nil
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// InsecureSecret reports whether the session secret is the development default.
func (c *Config) InsecureSecret() bool {
	return c.SecretKey == DefaultSecretKey
}

// Backend names the database selected by this configuration.
func (c *Config) Backend() string {
	return store.Config{DatabaseURL: c.DatabaseURL}.Backend()
}
