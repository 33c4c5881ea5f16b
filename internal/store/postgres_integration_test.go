// Copyright (c) 2026 Michael D Henderson. All rights reserved.

//go:build integration

package store_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mdhender/registro/internal/store"
)

var testDatabaseURL string

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("registro"),
		postgres.WithUsername("registro"),
		postgres.WithPassword("registro"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start postgres container: %v\n", err)
		os.Exit(1)
	}

	testDatabaseURL, err = container.ConnectionString(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get connection string: %v\n", err)
		_ = container.Terminate(ctx)
		os.Exit(1)
	}

	code := m.Run()

	if err := container.Terminate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to terminate postgres container: %v\n", err)
	}
	os.Exit(code)
}

// openPostgres opens the container database with the schema applied and an empty table.
// The container has no TLS, so sslmode is relaxed explicitly.
func openPostgres(t *testing.T) *store.Postgres {
	t.Helper()
	ctx := context.Background()

	st, err := store.OpenPostgres(ctx, store.Config{
		DatabaseURL: testDatabaseURL,
		SSLMode:     "disable",
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	require.NoError(t, st.InitSchema(ctx))
	_, err = st.DB().ExecContext(ctx, `TRUNCATE usuarios RESTART IDENTITY`)
	require.NoError(t, err)
	return st
}

func TestPostgres_OpenSelectsBackend(t *testing.T) {
	st, err := store.Open(context.Background(), store.Config{
		DatabaseURL: testDatabaseURL,
		SSLMode:     "disable",
	})
	require.NoError(t, err)
	defer st.Close()

	assert.Equal(t, store.BackendPostgres, st.Backend())
}

func TestPostgres_RequireRejectsPlaintextServer(t *testing.T) {
	_, err := store.OpenPostgres(context.Background(), store.Config{DatabaseURL: testDatabaseURL})
	assert.ErrorIs(t, err, store.ErrConnection)
}

func TestPostgres_BadCredentials(t *testing.T) {
	_, err := store.OpenPostgres(context.Background(), store.Config{
		DatabaseURL: "host=127.0.0.1 port=1 user=nobody password=wrong dbname=registro connect_timeout=2",
		SSLMode:     "disable",
	})
	assert.ErrorIs(t, err, store.ErrConnection)
}

func TestPostgres_InitSchemaIdempotent(t *testing.T) {
	ctx := context.Background()
	st := openPostgres(t)

	_, err := st.Insert(ctx, ana())
	require.NoError(t, err)
	require.NoError(t, st.InitSchema(ctx))
	require.NoError(t, st.InitSchema(ctx))

	records, err := st.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestPostgres_SameColumnsAsSQLite(t *testing.T) {
	ctx := context.Background()

	pgColumns, err := openPostgres(t).Columns(ctx)
	require.NoError(t, err)
	liteColumns, err := openMemory(t).Columns(ctx)
	require.NoError(t, err)

	assert.Equal(t, wantColumns, pgColumns)
	assert.Equal(t, liteColumns, pgColumns)
}

func TestPostgres_InsertAndList(t *testing.T) {
	ctx := context.Background()
	st := openPostgres(t)

	const n = 5
	for i := range n {
		_, err := st.Insert(ctx, person(i))
		require.NoError(t, err)
	}
	id, err := st.Insert(ctx, ana())
	require.NoError(t, err)

	records, err := st.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, n+1)

	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, ana(), records[0].Registration)
	assert.False(t, records[0].CreatedAt.IsZero())
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i].CreatedAt.After(records[i-1].CreatedAt))
	}
}

func TestPostgres_InvalidDateIsPersistenceError(t *testing.T) {
	ctx := context.Background()
	st := openPostgres(t)

	r := ana()
	r.FechaNacimiento = "not a date"
	_, err := st.Insert(ctx, r)
	assert.ErrorIs(t, err, store.ErrPersistence)

	records, err := st.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records, "a rejected insert must not leave a row")
}

func TestPostgres_VarcharLimitIsPersistenceError(t *testing.T) {
	ctx := context.Background()
	st := openPostgres(t)

	r := ana()
	r.Sexo = "much longer than ten characters"
	_, err := st.Insert(ctx, r)
	assert.ErrorIs(t, err, store.ErrPersistence)
}
