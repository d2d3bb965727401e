package memory

import (
	"context"
	"sort"
	"sync"

	"solana-wallet-pulse/internal/domain"
	"solana-wallet-pulse/internal/storage"
)

// TokenStore is an in-memory implementation of storage.TokenStore.
type TokenStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TrackedToken // keyed by token address
}

// NewTokenStore creates a new in-memory token registry.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		data: make(map[string]*domain.TrackedToken),
	}
}

var _ storage.TokenStore = (*TokenStore)(nil)

// Put inserts or updates a tracked token.
func (s *TokenStore) Put(_ context.Context, t *domain.TrackedToken) error {
	if t == nil || t.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *t
	copy.WalletScope = append([]string(nil), t.WalletScope...)
	s.data[t.TokenAddress] = &copy
	return nil
}

// Delete removes a token from the registry.
func (s *TokenStore) Delete(_ context.Context, tokenAddress string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[tokenAddress]; !exists {
		return storage.ErrNotFound
	}
	delete(s.data, tokenAddress)
	return nil
}

// List returns all tracked tokens ordered by token address.
func (s *TokenStore) List(_ context.Context) ([]*domain.TrackedToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.TrackedToken, 0, len(s.data))
	for _, t := range s.data {
		copy := *t
		copy.WalletScope = append([]string(nil), t.WalletScope...)
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TokenAddress < result[j].TokenAddress
	})

	return result, nil
}
