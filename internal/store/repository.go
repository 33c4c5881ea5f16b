// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/mdhender/registro/internal/metrics"
	"github.com/mdhender/registro/internal/registration"
)

// dialect carries the backend-specific SQL. Everything else is shared.
type dialect struct {
	name    string
	schema  string // file name under schema/
	insert  string // nine bind parameters, RETURNING id
	list    string // id, nine fields, created_at
	columns string
}

// repository implements Store on top of database/sql for a given dialect.
// The pool hands out a connection per statement or transaction and takes it
// back on every exit path.
type repository struct {
	db      *sql.DB
	dialect dialect
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func newRepository(db *sql.DB, d dialect, cfg Config) *repository {
	return &repository{
		db:      db,
		dialect: d,
		logger:  cfg.Logger.With("backend", d.name),
		metrics: cfg.Metrics,
	}
}

func (r *repository) Backend() string {
	return r.dialect.name
}

// DB exposes the underlying pool for tests and tooling.
func (r *repository) DB() *sql.DB {
	return r.db
}

func (r *repository) InitSchema(ctx context.Context) (err error) {
	defer r.observe("init_schema", time.Now(), &err)

	if err := applySchema(ctx, r.db, r.dialect.schema); err != nil {
		return fmt.Errorf("%w: init schema: %w", ErrPersistence, err)
	}
	r.logger.Debug("schema ready", "file", r.dialect.schema)
	return nil
}

// Insert binds the fields as parameters and commits a single-row transaction.
func (r *repository) Insert(ctx context.Context, reg registration.Registration) (id int64, err error) {
	defer r.observe("insert", time.Now(), &err)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin insert: %w", ErrPersistence, err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, r.dialect.insert, reg.Args()...).Scan(&id); err != nil {
		return 0, fmt.Errorf("%w: insert usuario: %w", ErrPersistence, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit insert: %w", ErrPersistence, err)
	}

	r.logger.Debug("usuario inserted", "id", id)
	return id, nil
}

// ListAll reads every row ordered by created_at, newest first; ties go to the higher id.
func (r *repository) ListAll(ctx context.Context) (records []registration.Record, err error) {
	defer r.observe("list", time.Now(), &err)

	rows, err := r.db.QueryContext(ctx, r.dialect.list)
	if err != nil {
		return nil, fmt.Errorf("%w: list usuarios: %w", ErrPersistence, err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec registration.Record
		if err := rows.Scan(
			&rec.ID,
			&rec.Nombres,
			&rec.Apellidos,
			&rec.FechaNacimiento,
			&rec.Sexo,
			&rec.Pais,
			&rec.TipoDocumento,
			&rec.NumeroDocumento,
			&rec.Correo,
			&rec.Departamento,
			timestamp{&rec.CreatedAt},
		); err != nil {
			return nil, fmt.Errorf("%w: scan usuario: %w", ErrPersistence, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list usuarios: %w", ErrPersistence, err)
	}
	return records, nil
}

func (r *repository) Columns(ctx context.Context) (columns []string, err error) {
	defer r.observe("columns", time.Now(), &err)

	rows, err := r.db.QueryContext(ctx, r.dialect.columns)
	if err != nil {
		return nil, fmt.Errorf("%w: table columns: %w", ErrPersistence, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scan column: %w", ErrPersistence, err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: table columns: %w", ErrPersistence, err)
	}
	return columns, nil
}

func (r *repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", ErrConnection, err)
	}
	return nil
}

func (r *repository) Close() error {
	return r.db.Close()
}

func (r *repository) observe(operation string, start time.Time, errp *error) {
	r.metrics.ObserveStore(r.dialect.name, operation, start, *errp)
}

// timestamp scans created_at from either backend: PostgreSQL returns a
// time.Time, SQLite returns the TEXT written by datetime('now').
type timestamp struct {
	t *time.Time
}

var timestampLayouts = []string{
	time.DateTime,
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
}

func (ts timestamp) Scan(src any) error {
	var text string
	switch v := src.(type) {
	case time.Time:
		*ts.t = v.UTC()
		return nil
	case string:
		text = v
	case []byte:
		text = string(v)
	case nil:
		*ts.t = time.Time{}
		return nil
	default:
		return fmt.Errorf("created_at: unsupported type %T", src)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			*ts.t = t
			return nil
		}
	}
	return fmt.Errorf("created_at: cannot parse %q", text)
}
