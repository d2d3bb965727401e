package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-wallet-pulse/internal/domain"
	"solana-wallet-pulse/internal/storage"
)

func TestWalletStore_PutListDelete(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewWalletStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &domain.TrackedWallet{
		Address:     "bbb",
		DisplayName: "whale two",
		AddedAt:     1700000001000,
	}))
	require.NoError(t, store.Put(ctx, &domain.TrackedWallet{
		Address:     "aaa",
		DisplayName: "whale one",
		AddedAt:     1700000000000,
	}))

	wallets, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, "aaa", wallets[0].Address)
	assert.Equal(t, "whale one", wallets[0].DisplayName)
	assert.Equal(t, int64(1700000000000), wallets[0].AddedAt)

	// Upsert keeps a single row, updating the name.
	require.NoError(t, store.Put(ctx, &domain.TrackedWallet{
		Address:     "aaa",
		DisplayName: "renamed",
		AddedAt:     1700000002000,
	}))
	wallets, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, "renamed", wallets[0].DisplayName)

	require.NoError(t, store.Delete(ctx, "aaa"))
	err = store.Delete(ctx, "aaa")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTokenStore_PutListDelete(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &domain.TrackedToken{
		TokenAddress: "tok1",
		WalletScope:  []string{"w1", "w2"},
		AddedAt:      1700000000000,
	}))

	tokens, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, []string{"w1", "w2"}, tokens[0].WalletScope)

	require.NoError(t, store.Delete(ctx, "tok1"))
	err = store.Delete(ctx, "tok1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
