package memory

import (
	"context"
	"sort"
	"sync"

	"solana-wallet-pulse/internal/domain"
	"solana-wallet-pulse/internal/storage"
)

// WalletStore is an in-memory implementation of storage.WalletStore.
type WalletStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TrackedWallet // keyed by address
}

// NewWalletStore creates a new in-memory wallet registry.
func NewWalletStore() *WalletStore {
	return &WalletStore{
		data: make(map[string]*domain.TrackedWallet),
	}
}

var _ storage.WalletStore = (*WalletStore)(nil)

// Put inserts or updates a tracked wallet.
func (s *WalletStore) Put(_ context.Context, w *domain.TrackedWallet) error {
	if w == nil || w.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *w
	s.data[w.Address] = &copy
	return nil
}

// Delete removes a wallet from the registry.
func (s *WalletStore) Delete(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[address]; !exists {
		return storage.ErrNotFound
	}
	delete(s.data, address)
	return nil
}

// List returns all tracked wallets ordered by address.
func (s *WalletStore) List(_ context.Context) ([]*domain.TrackedWallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.TrackedWallet, 0, len(s.data))
	for _, w := range s.data {
		copy := *w
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Address < result[j].Address
	})

	return result, nil
}
