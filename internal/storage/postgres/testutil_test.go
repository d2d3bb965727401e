package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL container for testing and applies the
// schema. Returns a cleanup function that must be called after tests complete.
func setupTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")

	applySchema(t, ctx, pool)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// applySchema creates the tracker tables. Mirrors the embedded migration in
// internal/storage/migrations/postgres; duplicated here to avoid an import
// cycle between the migrations and postgres packages.
func applySchema(t *testing.T, ctx context.Context, pool *Pool) {
	t.Helper()

	schema := `
		CREATE TABLE IF NOT EXISTS alert_log (
			side TEXT NOT NULL,
			token_address TEXT NOT NULL,
			signature TEXT NOT NULL,
			committed_at BIGINT NOT NULL,
			PRIMARY KEY (side, token_address, signature)
		);

		CREATE TABLE IF NOT EXISTS tracked_wallets (
			address TEXT PRIMARY KEY,
			display_name TEXT NOT NULL DEFAULT '',
			added_at BIGINT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tracked_tokens (
			token_address TEXT PRIMARY KEY,
			wallet_scope TEXT[] NOT NULL DEFAULT '{}',
			added_at BIGINT NOT NULL
		);
	`

	_, err := pool.Exec(ctx, schema)
	require.NoError(t, err, "failed to apply schema")
}
