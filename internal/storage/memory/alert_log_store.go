package memory

import (
	"context"
	"fmt"
	"sync"

	"solana-wallet-pulse/internal/domain"
	"solana-wallet-pulse/internal/storage"
)

// AlertLogStore is an in-memory implementation of storage.AlertLogStore.
// Useful for tests and persistence-free runs; the dedup invariant holds only
// for the lifetime of the process.
type AlertLogStore struct {
	mu   sync.RWMutex
	data map[string]map[string]struct{} // (side|token) -> signature set
}

// NewAlertLogStore creates a new in-memory alert log.
func NewAlertLogStore() *AlertLogStore {
	return &AlertLogStore{
		data: make(map[string]map[string]struct{}),
	}
}

var _ storage.AlertLogStore = (*AlertLogStore)(nil)

// alertKey keys the log per (side, token) so sell history never suppresses
// buy alerts and vice versa.
func alertKey(side domain.Side, tokenAddress string) string {
	return fmt.Sprintf("%s|%s", side, tokenAddress)
}

// IsNew reports whether none of the signatures have fired for (side, token).
func (s *AlertLogStore) IsNew(_ context.Context, side domain.Side, tokenAddress string, signatures []string) (bool, error) {
	if tokenAddress == "" {
		return false, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen, ok := s.data[alertKey(side, tokenAddress)]
	if !ok {
		return true, nil
	}

	for _, sig := range signatures {
		if _, exists := seen[sig]; exists {
			return false, nil
		}
	}
	return true, nil
}

// Commit appends the signatures to the log for (side, token). Idempotent:
// signatures already present are not duplicated.
func (s *AlertLogStore) Commit(_ context.Context, side domain.Side, tokenAddress string, signatures []string) error {
	if tokenAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := alertKey(side, tokenAddress)
	seen, ok := s.data[key]
	if !ok {
		seen = make(map[string]struct{}, len(signatures))
		s.data[key] = seen
	}

	for _, sig := range signatures {
		seen[sig] = struct{}{}
	}
	return nil
}

// Size returns the number of stored signatures for (side, token).
func (s *AlertLogStore) Size(side domain.Side, tokenAddress string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data[alertKey(side, tokenAddress)])
}
