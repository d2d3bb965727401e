package memory

import (
	"context"
	"sort"
	"sync"

	"solana-wallet-pulse/internal/domain"
	"solana-wallet-pulse/internal/storage"
)

// TransactionArchive is an in-memory implementation of
// storage.TransactionArchive. Deduplicates by signature on insert.
type TransactionArchive struct {
	mu   sync.RWMutex
	data map[string]*domain.Transaction // keyed by signature
}

// NewTransactionArchive creates a new in-memory archive.
func NewTransactionArchive() *TransactionArchive {
	return &TransactionArchive{
		data: make(map[string]*domain.Transaction),
	}
}

var _ storage.TransactionArchive = (*TransactionArchive)(nil)

// InsertBulk appends transactions; re-appended signatures overwrite in place.
func (s *TransactionArchive) InsertBulk(_ context.Context, txs []*domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range txs {
		if tx == nil || tx.Signature == "" {
			return storage.ErrInvalidInput
		}
		copy := *tx
		s.data[tx.Signature] = &copy
	}
	return nil
}

// GetByTokenTimeRange returns archived transactions for a token within
// [start, end] seconds, ordered by timestamp ASC.
func (s *TransactionArchive) GetByTokenTimeRange(_ context.Context, tokenAddress string, start, end int64) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Transaction
	for _, tx := range s.data {
		if tx.TokenAddress == tokenAddress && tx.Timestamp >= start && tx.Timestamp <= end {
			copy := *tx
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp < result[j].Timestamp
		}
		return result[i].Signature < result[j].Signature
	})

	return result, nil
}
