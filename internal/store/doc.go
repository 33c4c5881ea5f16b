// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package store persists registrations in SQLite or PostgreSQL behind one
// Store interface.
//
// Open picks the backend once from Config: a non-empty DatabaseURL selects
// PostgreSQL, otherwise the embedded SQLite file is used (and created on
// first use). Both backends expose the same logical usuarios table; only
// column types and placeholder syntax differ.
//
// # Basic Usage
//
//	st, err := store.Open(ctx, store.Config{Path: "usuarios_local.db"})
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//	if err := st.InitSchema(ctx); err != nil {
//	    return err
//	}
//	id, err := st.Insert(ctx, reg)
//
// # Errors
//
// Failures to reach the database are wrapped in ErrConnection. Failures of
// schema, insert or list statements are wrapped in ErrPersistence. Nothing
// is retried.
package store
