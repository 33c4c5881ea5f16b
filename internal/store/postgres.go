// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

var postgresDialect = dialect{
	name:   BackendPostgres,
	schema: "postgres.sql",
	// fecha_nacimiento is bound as text and cast to DATE by the server.
	insert: `
		INSERT INTO usuarios
			(nombres, apellidos, fecha_nacimiento, sexo, pais, tipo_documento,
			 numero_documento, correo, departamento)
		VALUES ($1, $2, $3::text::date, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`,
	list: `
		SELECT id, nombres, apellidos, to_char(fecha_nacimiento, 'YYYY-MM-DD'), sexo, pais,
		       tipo_documento, numero_documento, correo, departamento, created_at
		FROM usuarios
		ORDER BY created_at DESC, id DESC
	`,
	columns: `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = 'usuarios'
		ORDER BY ordinal_position
	`,
}

// Postgres is the networked Store.
type Postgres struct {
	*repository
}

// OpenPostgres connects to cfg.DatabaseURL with sslmode forced to cfg.SSLMode
// (default "require") and pings the server. In production only modes that
// require TLS are accepted.
func OpenPostgres(ctx context.Context, cfg Config) (*Postgres, error) {
	cfg = cfg.defaults()
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("%w: empty database URL", ErrConnection)
	}
	if cfg.Production && !requiresTLS(cfg.SSLMode) {
		return nil, fmt.Errorf("%w: sslmode %q not allowed in production", ErrConnection, cfg.SSLMode)
	}

	dsn, err := withSSLMode(cfg.DatabaseURL, cfg.SSLMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: parse database URL: %w", ErrConnection, err)
	}

	cfg.Logger.Info("DB mode: postgres",
		"host", connCfg.Host,
		"port", connCfg.Port,
		"database", connCfg.Database,
		"sslmode", cfg.SSLMode,
	)

	db := stdlib.OpenDB(*connCfg)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrConnection, err)
	}

	return &Postgres{repository: newRepository(db, postgresDialect, cfg)}, nil
}

// requiresTLS reports whether mode refuses plaintext connections.
func requiresTLS(mode string) bool {
	switch mode {
	case "require", "verify-ca", "verify-full":
		return true
	}
	return false
}

// withSSLMode returns dsn with its sslmode replaced by mode.
// URL (postgres://) and keyword/value DSNs are both supported.
func withSSLMode(dsn, mode string) (string, error) {
	if !strings.Contains(dsn, "://") {
		// keyword/value: the last occurrence of a key wins
		return strings.TrimSpace(dsn) + " sslmode=" + mode, nil
	}

	u, err := url.Parse(dsn)
	if err != nil {
		// url.Error repeats the URL, password included
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return "", fmt.Errorf("parse database URL: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql":
	default:
		return "", fmt.Errorf("unsupported database URL scheme %q", u.Scheme)
	}
	q := u.Query()
	q.Set("sslmode", mode)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
