// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package store

import (
	"context"
	"log/slog"

	"github.com/mdhender/registro/internal/metrics"
	"github.com/mdhender/registro/internal/registration"
)

// Backend names, also used as metric labels.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// DefaultPath is the embedded database file used when Config.Path is empty.
const DefaultPath = "usuarios_local.db"

// Store is the record repository shared by both backends.
type Store interface {
	// Backend returns BackendSQLite or BackendPostgres.
	Backend() string

	// InitSchema creates the usuarios table if it does not exist.
	// It is safe to call on every start; existing data is untouched.
	InitSchema(ctx context.Context) error

	// Insert stores one registration and returns its generated id.
	Insert(ctx context.Context, r registration.Registration) (int64, error)

	// ListAll returns every record, most recent first.
	ListAll(ctx context.Context) ([]registration.Record, error)

	// Columns returns the usuarios column names in table order.
	Columns(ctx context.Context) ([]string, error)

	// Ping checks that the database is still reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Config holds database configuration options.
type Config struct {
	// DatabaseURL selects PostgreSQL when non-empty.
	// Both URL (postgres://...) and keyword/value forms are accepted.
	DatabaseURL string

	// SSLMode is forced onto the PostgreSQL connection string.
	// Default: "require".
	SSLMode string

	// Path to the SQLite file when DatabaseURL is empty. Relative paths are
	// resolved against the working directory. Use ":memory:" for a private
	// in-memory database. Default: DefaultPath.
	Path string

	// Production rejects :memory: databases unless AllowMemoryInProduction is set.
	Production              bool
	AllowMemoryInProduction bool

	// Logger for operational logging. Uses slog.Default() if nil.
	Logger *slog.Logger

	// Metrics records operation timings. Optional.
	Metrics *metrics.Metrics
}

// defaults returns a copy of cfg with default values applied.
func (cfg Config) defaults() Config {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "require"
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	return cfg
}

// Backend reports which backend cfg selects.
func (cfg Config) Backend() string {
	if cfg.DatabaseURL != "" {
		return BackendPostgres
	}
	return BackendSQLite
}

// Open returns the store for the backend selected by cfg.
// The database is pinged before Open returns; failures wrap ErrConnection.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if cfg.Backend() == BackendPostgres {
		pg, err := OpenPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}
	lite, err := OpenSQLite(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return lite, nil
}
