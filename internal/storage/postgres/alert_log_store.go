package postgres

import (
	"context"
	"fmt"
	"time"

	"solana-wallet-pulse/internal/domain"
	"solana-wallet-pulse/internal/storage"
)

// AlertLogStore implements storage.AlertLogStore using PostgreSQL.
// One row per (side, token_address, signature); the primary key makes Commit
// idempotent via ON CONFLICT DO NOTHING.
type AlertLogStore struct {
	pool *Pool
}

// NewAlertLogStore creates a new AlertLogStore.
func NewAlertLogStore(pool *Pool) *AlertLogStore {
	return &AlertLogStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AlertLogStore = (*AlertLogStore)(nil)

// IsNew reports whether none of the signatures exist for (side, token).
func (s *AlertLogStore) IsNew(ctx context.Context, side domain.Side, tokenAddress string, signatures []string) (bool, error) {
	if tokenAddress == "" {
		return false, storage.ErrInvalidInput
	}
	if len(signatures) == 0 {
		return true, nil
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM alert_log
			WHERE side = $1 AND token_address = $2 AND signature = ANY($3)
		)
	`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, string(side), tokenAddress, signatures).Scan(&exists); err != nil {
		return false, fmt.Errorf("check alert log: %w", err)
	}

	return !exists, nil
}

// Commit durably appends the signatures for (side, token). The transaction
// commits before the caller proceeds to dispatch, so a crash after Commit can
// lose an alert but never duplicate one.
func (s *AlertLogStore) Commit(ctx context.Context, side domain.Side, tokenAddress string, signatures []string) error {
	if tokenAddress == "" {
		return storage.ErrInvalidInput
	}
	if len(signatures) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO alert_log (side, token_address, signature, committed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (side, token_address, signature) DO NOTHING
	`

	now := time.Now().UnixMilli()
	for _, sig := range signatures {
		if _, err := tx.Exec(ctx, query, string(side), tokenAddress, sig, now); err != nil {
			return fmt.Errorf("insert alert log row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit alert log: %w", err)
	}
	return nil
}
