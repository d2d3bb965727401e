package postgres

import (
	"context"
	"fmt"

	"solana-wallet-pulse/internal/domain"
	"solana-wallet-pulse/internal/storage"
)

// TokenStore implements storage.TokenStore using PostgreSQL.
type TokenStore struct {
	pool *Pool
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(pool *Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

// Put inserts or updates a tracked token.
func (s *TokenStore) Put(ctx context.Context, t *domain.TrackedToken) error {
	if t == nil || t.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO tracked_tokens (token_address, wallet_scope, added_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_address) DO UPDATE SET wallet_scope = EXCLUDED.wallet_scope
	`

	if _, err := s.pool.Exec(ctx, query, t.TokenAddress, t.WalletScope, t.AddedAt); err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}
	return nil
}

// Delete removes a token from the registry.
func (s *TokenStore) Delete(ctx context.Context, tokenAddress string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tracked_tokens WHERE token_address = $1`, tokenAddress)
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List returns all tracked tokens ordered by token address.
func (s *TokenStore) List(ctx context.Context) ([]*domain.TrackedToken, error) {
	query := `
		SELECT token_address, wallet_scope, added_at
		FROM tracked_tokens
		ORDER BY token_address
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	var result []*domain.TrackedToken
	for rows.Next() {
		var t domain.TrackedToken
		if err := rows.Scan(&t.TokenAddress, &t.WalletScope, &t.AddedAt); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		result = append(result, &t)
	}

	return result, rows.Err()
}
