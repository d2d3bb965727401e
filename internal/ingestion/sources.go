package ingestion

import (
	"context"
	"time"

	"solana-wallet-pulse/internal/domain"
)

// SwapSource provides normalized swap transactions for a tracked wallet.
type SwapSource interface {
	// Fetch returns canonical transactions for the wallet, newest first.
	// Records older than the lookback window may still be returned; the
	// poller applies the window cut before correlation. Implementations
	// absorb ordinary upstream failure by returning an empty slice with the
	// error, so a single wallet never aborts a poll cycle.
	Fetch(ctx context.Context, walletAddress string, lookback time.Duration) ([]*domain.Transaction, error)
}
