// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package store

import "errors"

var (
	// ErrConnection wraps failures to open or reach the database:
	// unreachable host, rejected credentials, bad DSN, unwritable file.
	ErrConnection = errors.New("database connection failed")

	// ErrPersistence wraps failures of statements against a live database.
	ErrPersistence = errors.New("database operation failed")
)
