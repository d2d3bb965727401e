package domain

// TrackedWallet is a registry entry for a wallet whose activity is polled.
type TrackedWallet struct {
	Address     string // base58 Solana address, primary key
	DisplayName string // user-facing label
	AddedAt     int64  // Unix timestamp in milliseconds
}

// TrackedToken scopes correlation for a specific token to a subset of wallets.
// An empty WalletScope means all tracked wallets.
type TrackedToken struct {
	TokenAddress string
	WalletScope  []string
	AddedAt      int64
}
