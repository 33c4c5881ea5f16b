// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdhender/registro/internal/store"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "ADDR", "LOG_LEVEL", "LOG_FORMAT",
		"DATABASE_URL", "DATABASE_SSLMODE", "SQLITE_PATH", "SECRET_KEY",
	} {
		t.Setenv(key, "") // restores the original value after the test
		os.Unsetenv(key)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := fromEnv()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
	assert.Equal(t, "require", cfg.DatabaseSSLMode)
	assert.Equal(t, "usuarios_local.db", cfg.SQLitePath)
	assert.Equal(t, DefaultSecretKey, cfg.SecretKey)
	assert.True(t, cfg.InsecureSecret())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, store.BackendSQLite, cfg.Backend())
}

func TestFromEnv_DatabaseURLSelectsPostgres(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@db/app")
	t.Setenv("SECRET_KEY", "a-real-secret")
	t.Setenv("APP_ENV", "Production")

	cfg, err := fromEnv()
	require.NoError(t, err)

	assert.Equal(t, store.BackendPostgres, cfg.Backend())
	assert.False(t, cfg.InsecureSecret())
	assert.True(t, cfg.IsProduction())
}

func TestFromEnv_InvalidSSLMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_SSLMODE", "sometimes")

	_, err := fromEnv()
	assert.ErrorContains(t, err, "DATABASE_SSLMODE")
}

func TestFromEnv_InvalidLogFormat(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_FORMAT", "xml")

	_, err := fromEnv()
	assert.ErrorContains(t, err, "LOG_FORMAT")
}
