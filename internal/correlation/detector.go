// Package correlation groups swap transactions by token and detects
// coordinated multi-wallet activity.
package correlation

import (
	"sort"

	"solana-wallet-pulse/internal/domain"
)

// Config holds detection thresholds.
type Config struct {
	// MinWallets is the number of distinct wallets that must trade the same
	// token on the same side within one batch to form a candidate.
	MinWallets int
}

// DefaultConfig returns the default detection configuration.
func DefaultConfig() Config {
	return Config{MinWallets: 3}
}

// Detector finds tokens that enough distinct wallets traded in one batch.
type Detector struct {
	config Config
}

// NewDetector creates a detector with the given config.
func NewDetector(config Config) *Detector {
	if config.MinWallets <= 0 {
		config.MinWallets = DefaultConfig().MinWallets
	}
	return &Detector{config: config}
}

// tokenGroup accumulates per-token state while scanning a batch.
type tokenGroup struct {
	wallets      map[string]struct{}
	totalAmount  float64
	tokenSymbol  string
	transactions []*domain.Transaction
}

// Detect filters the batch to the requested side, groups by token address and
// returns every group whose distinct-wallet count reaches MinWallets.
//
// Wallets are counted as a set: ten transactions from one wallet count once.
// The result is sorted by token address ascending so the outcome is
// deterministic and independent of input order; all simultaneous qualifying
// tokens are reported in the same cycle.
func (d *Detector) Detect(transactions []*domain.Transaction, side domain.Side) []*domain.Candidate {
	groups := make(map[string]*tokenGroup)

	for _, tx := range transactions {
		if tx.Side != side {
			continue
		}
		if tx.TokenAddress == "" || tx.WalletAddress == "" {
			continue
		}

		group, ok := groups[tx.TokenAddress]
		if !ok {
			group = &tokenGroup{wallets: make(map[string]struct{})}
			groups[tx.TokenAddress] = group
		}

		group.wallets[tx.WalletAddress] = struct{}{}
		group.totalAmount += tx.Amount
		if group.tokenSymbol == "" {
			group.tokenSymbol = tx.TokenSymbol
		}
		group.transactions = append(group.transactions, tx)
	}

	var candidates []*domain.Candidate
	for tokenAddress, group := range groups {
		if len(group.wallets) < d.config.MinWallets {
			continue
		}
		candidates = append(candidates, &domain.Candidate{
			TokenAddress: tokenAddress,
			TokenSymbol:  group.tokenSymbol,
			Side:         side,
			WalletCount:  len(group.wallets),
			TotalAmount:  group.totalAmount,
			Transactions: group.transactions,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].TokenAddress < candidates[j].TokenAddress
	})

	return candidates
}
