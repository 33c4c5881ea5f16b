// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// applySchema runs one embedded schema script in a transaction.
// The scripts only use CREATE ... IF NOT EXISTS, so reapplying is a no-op.
func applySchema(ctx context.Context, db *sql.DB, name string) error {
	sqlBytes, err := fs.ReadFile(schemaFS, "schema/"+name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
		return fmt.Errorf("exec %s: %w", name, err)
	}

	return tx.Commit()
}
