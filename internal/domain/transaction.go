package domain

// Side identifies the direction of a swap relative to the tracked wallet.
type Side string

// Swap side constants
const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Transaction is the canonical, normalized form of one upstream swap record.
// It is created by a swap source and never mutated afterwards.
type Transaction struct {
	Signature     string  // globally unique per on-chain event, dedup key
	WalletAddress string  // tracked wallet that is a party to the swap
	TokenAddress  string  // traded asset identifier
	TokenSymbol   string  // best-effort label, may be empty
	Amount        float64 // non-negative, base-asset units; 0 when upstream field is missing or malformed
	Price         float64 // non-negative unit price; 1.0 placeholder when unknown
	Side          Side    // buy or sell; records that are neither never become Transactions
	Timestamp     int64   // Unix seconds; records with unparseable timestamps are dropped upstream
}
