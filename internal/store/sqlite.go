// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

var sqliteDialect = dialect{
	name:   BackendSQLite,
	schema: "sqlite.sql",
	insert: `
		INSERT INTO usuarios
			(nombres, apellidos, fecha_nacimiento, sexo, pais, tipo_documento,
			 numero_documento, correo, departamento)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
	list: `
		SELECT id, nombres, apellidos, fecha_nacimiento, sexo, pais,
		       tipo_documento, numero_documento, correo, departamento, created_at
		FROM usuarios
		ORDER BY created_at DESC, id DESC
	`,
	columns: `SELECT name FROM pragma_table_info('usuarios') ORDER BY cid`,
}

// SQLite is the embedded, file-backed Store.
type SQLite struct {
	*repository
	path string
}

// Path returns the absolute database path, or ":memory:".
func (s *SQLite) Path() string {
	return s.path
}

// memorySeq names in-memory databases so each Open gets a private one.
var memorySeq atomic.Int64

func isMemory(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file::memory:")
}

// OpenSQLite opens the SQLite database at cfg.Path, creating the file if it
// does not exist. cfg.DatabaseURL is ignored.
func OpenSQLite(ctx context.Context, cfg Config) (*SQLite, error) {
	cfg = cfg.defaults()

	if isMemory(cfg.Path) {
		return openMemory(ctx, cfg)
	}
	return openPersistent(ctx, cfg)
}

// openMemory opens a private in-memory database.
func openMemory(ctx context.Context, cfg Config) (*SQLite, error) {
	if cfg.Production && !cfg.AllowMemoryInProduction {
		return nil, fmt.Errorf("%w: in-memory database not allowed in production", ErrConnection)
	}

	cfg.Logger.Info("DB mode: in-memory")
	name := fmt.Sprintf("registro-%d?mode=memory&cache=shared", memorySeq.Add(1))
	db, err := openSQLite(ctx, cfg, buildDSN(name, memoryPragmas))
	if err != nil {
		return nil, err
	}
	return &SQLite{repository: newRepository(db, sqliteDialect, cfg), path: ":memory:"}, nil
}

// openPersistent opens (or creates) a file-backed database.
func openPersistent(ctx context.Context, cfg Config) (*SQLite, error) {
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnection, cfg.Path, err)
	}
	if err := validatePersistentPath(path); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	if fileExists(path) {
		cfg.Logger.Info("DB mode: persistent", "path", path)
	} else {
		cfg.Logger.Info("creating database", "path", path)
	}

	db, err := openSQLite(ctx, cfg, buildDSN(path, persistentPragmas))
	if err != nil {
		return nil, err
	}
	return &SQLite{repository: newRepository(db, sqliteDialect, cfg), path: path}, nil
}

// openSQLite opens the pool and pings it, which creates the file on first use.
func openSQLite(ctx context.Context, cfg Config, dsn string) (*sql.DB, error) {
	cfg.Logger.Debug("opening database", "driver", driverName, "dsn", dsn)

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: sql.Open: %w", ErrConnection, err)
	}

	// SQLite works best with limited connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrConnection, err)
	}
	return db, nil
}

// validatePersistentPath checks that an absolute path is usable for a database file.
func validatePersistentPath(path string) error {
	if filepath.Ext(path) != ".db" {
		return fmt.Errorf("%s: expected .db extension", path)
	}
	if isDirectory(path) {
		return fmt.Errorf("%s: path is a directory", path)
	}
	dir := filepath.Dir(path)
	if !isDirectory(dir) {
		return fmt.Errorf("%s: parent directory does not exist", dir)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
