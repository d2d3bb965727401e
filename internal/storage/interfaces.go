package storage

import (
	"context"

	"solana-wallet-pulse/internal/domain"
)

// AlertLogStore persists which transaction signatures have already fired an
// alert, keyed independently per (side, token). It is the at-most-once-alert
// guarantee: a signature present in the log never re-triggers an alert for
// the same side and token, across process restarts.
type AlertLogStore interface {
	// IsNew reports whether none of the signatures appear in the persisted
	// log for (side, token). A single overlap means the candidate has been
	// alerted at least partially and must be suppressed whole.
	IsNew(ctx context.Context, side domain.Side, tokenAddress string, signatures []string) (bool, error)

	// Commit appends the signatures to the log for (side, token) and makes
	// them durable before returning. Signatures already present are not
	// duplicated; committing the same set twice is a no-op.
	Commit(ctx context.Context, side domain.Side, tokenAddress string, signatures []string) error
}

// WalletStore is the tracked-wallet registry.
type WalletStore interface {
	// Put inserts or updates a tracked wallet.
	Put(ctx context.Context, w *domain.TrackedWallet) error

	// Delete removes a wallet from the registry. Returns ErrNotFound if the
	// address is not tracked.
	Delete(ctx context.Context, address string) error

	// List returns all tracked wallets ordered by address.
	List(ctx context.Context) ([]*domain.TrackedWallet, error)
}

// TokenStore is the tracked-token registry.
type TokenStore interface {
	// Put inserts or updates a tracked token with its wallet scope.
	Put(ctx context.Context, t *domain.TrackedToken) error

	// Delete removes a token. Returns ErrNotFound if the token is not tracked.
	Delete(ctx context.Context, tokenAddress string) error

	// List returns all tracked tokens ordered by token address.
	List(ctx context.Context) ([]*domain.TrackedToken, error)
}

// TransactionArchive is an append-only record of every canonical transaction
// observed during polling, kept for offline analytics. Writes are best-effort
// from the poller's point of view: archive failure never blocks alerting.
type TransactionArchive interface {
	// InsertBulk appends a batch of transactions. Duplicate signatures may
	// be re-appended; the archive deduplicates on read or merge.
	InsertBulk(ctx context.Context, txs []*domain.Transaction) error

	// GetByTokenTimeRange returns archived transactions for a token within
	// [start, end] seconds (inclusive), ordered by timestamp ascending.
	GetByTokenTimeRange(ctx context.Context, tokenAddress string, start, end int64) ([]*domain.Transaction, error)
}
