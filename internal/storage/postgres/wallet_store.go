package postgres

import (
	"context"
	"fmt"

	"solana-wallet-pulse/internal/domain"
	"solana-wallet-pulse/internal/storage"
)

// WalletStore implements storage.WalletStore using PostgreSQL.
type WalletStore struct {
	pool *Pool
}

// NewWalletStore creates a new WalletStore.
func NewWalletStore(pool *Pool) *WalletStore {
	return &WalletStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletStore = (*WalletStore)(nil)

// Put inserts or updates a tracked wallet.
func (s *WalletStore) Put(ctx context.Context, w *domain.TrackedWallet) error {
	if w == nil || w.Address == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO tracked_wallets (address, display_name, added_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (address) DO UPDATE SET display_name = EXCLUDED.display_name
	`

	if _, err := s.pool.Exec(ctx, query, w.Address, w.DisplayName, w.AddedAt); err != nil {
		return fmt.Errorf("upsert wallet: %w", err)
	}
	return nil
}

// Delete removes a wallet from the registry.
func (s *WalletStore) Delete(ctx context.Context, address string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tracked_wallets WHERE address = $1`, address)
	if err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List returns all tracked wallets ordered by address.
func (s *WalletStore) List(ctx context.Context) ([]*domain.TrackedWallet, error) {
	query := `
		SELECT address, display_name, added_at
		FROM tracked_wallets
		ORDER BY address
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var result []*domain.TrackedWallet
	for rows.Next() {
		var w domain.TrackedWallet
		if err := rows.Scan(&w.Address, &w.DisplayName, &w.AddedAt); err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		result = append(result, &w)
	}

	return result, rows.Err()
}
