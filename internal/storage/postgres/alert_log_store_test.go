package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-wallet-pulse/internal/domain"
)

func TestAlertLogStore_IsNewAndCommit(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAlertLogStore(pool)
	ctx := context.Background()

	isNew, err := store.IsNew(ctx, domain.SideBuy, "tokenT", []string{"sig1", "sig2"})
	require.NoError(t, err)
	assert.True(t, isNew, "fresh token must be new")

	err = store.Commit(ctx, domain.SideBuy, "tokenT", []string{"sig1", "sig2"})
	require.NoError(t, err)

	// Any overlap suppresses the whole candidate.
	isNew, err = store.IsNew(ctx, domain.SideBuy, "tokenT", []string{"sig1", "sig3"})
	require.NoError(t, err)
	assert.False(t, isNew, "candidate overlapping a committed signature must be suppressed")

	// A disjoint set stays new.
	isNew, err = store.IsNew(ctx, domain.SideBuy, "tokenT", []string{"sig4"})
	require.NoError(t, err)
	assert.True(t, isNew)
}

func TestAlertLogStore_SidesIndependent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAlertLogStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Commit(ctx, domain.SideSell, "tokenT", []string{"sig1"}))

	isNew, err := store.IsNew(ctx, domain.SideBuy, "tokenT", []string{"sig1"})
	require.NoError(t, err)
	assert.True(t, isNew, "sell history must not suppress buy alerts")
}

func TestAlertLogStore_CommitIdempotent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAlertLogStore(pool)
	ctx := context.Background()

	sigs := []string{"sig1", "sig2"}
	require.NoError(t, store.Commit(ctx, domain.SideBuy, "tokenT", sigs))
	require.NoError(t, store.Commit(ctx, domain.SideBuy, "tokenT", sigs))

	var count int
	err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM alert_log WHERE side = $1 AND token_address = $2`,
		string(domain.SideBuy), "tokenT").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "double commit must not duplicate rows")
}

func TestAlertLogStore_SurvivesReconnect(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	store := NewAlertLogStore(pool)
	require.NoError(t, store.Commit(ctx, domain.SideBuy, "tokenT", []string{"sig1"}))

	// A second store over the same database sees the committed state, which
	// is what holds the dedup invariant across process restarts.
	fresh := NewAlertLogStore(pool)
	isNew, err := fresh.IsNew(ctx, domain.SideBuy, "tokenT", []string{"sig1"})
	require.NoError(t, err)
	assert.False(t, isNew)
}
