package stub

import (
	"context"
	"time"

	"solana-wallet-pulse/internal/domain"
)

// StubSwapSource returns fixed in-memory transactions for testing.
// Implements ingestion.SwapSource.
type StubSwapSource struct {
	transactions map[string][]*domain.Transaction // keyed by wallet address
	errs         map[string]error                 // per-wallet fetch error
}

// NewStubSwapSource creates a new stub swap source with the given transactions.
func NewStubSwapSource(txs []*domain.Transaction) *StubSwapSource {
	byWallet := make(map[string][]*domain.Transaction)
	for _, tx := range txs {
		byWallet[tx.WalletAddress] = append(byWallet[tx.WalletAddress], tx)
	}
	return &StubSwapSource{
		transactions: byWallet,
		errs:         make(map[string]error),
	}
}

// FailWallet makes Fetch return err for the given wallet.
func (s *StubSwapSource) FailWallet(walletAddress string, err error) {
	s.errs[walletAddress] = err
}

// Fetch returns transactions recorded for the wallet. Returns copies to
// prevent mutation.
func (s *StubSwapSource) Fetch(_ context.Context, walletAddress string, _ time.Duration) ([]*domain.Transaction, error) {
	if err := s.errs[walletAddress]; err != nil {
		return nil, err
	}

	var result []*domain.Transaction
	for _, tx := range s.transactions[walletAddress] {
		copy := *tx
		result = append(result, &copy)
	}
	return result, nil
}
