// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package registro is a small user-registration web application.
//
// It renders a registration form, checks that every field is filled in,
// stores the record in a single table and lists the saved records, newest
// first. The same logical schema lives in one of two backends:
//   - SQLite, a local file that is created on first use (default)
//   - PostgreSQL, reached through DATABASE_URL over TLS
//
// # Layout
//
//   - cmd/registro: process entry point
//   - internal/config: environment and .env loading
//   - internal/logging: slog setup
//   - internal/metrics: Prometheus collectors
//   - internal/registration: the record type and form validation
//   - internal/store: connection provider, schema initializer, repository
//   - internal/web: chi routes, templates, flash messages
//
// # Driver Support
//
// The SQLite backend supports two drivers via build tags:
//   - modernc.org/sqlite (default, pure Go, no CGO)
//   - github.com/mattn/go-sqlite3 (CGO, use -tags mattn)
//
// PostgreSQL always goes through github.com/jackc/pgx/v5/stdlib.
package registro
