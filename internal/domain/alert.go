package domain

// Candidate is a token group that crossed the distinct-wallet threshold in a
// single poll cycle. It carries the full contributing transaction list so the
// alert log can extract signatures for deduplication.
type Candidate struct {
	TokenAddress string
	TokenSymbol  string // taken from any contributing transaction
	Side         Side
	WalletCount  int     // number of distinct wallets, not transaction count
	TotalAmount  float64 // best-effort sum across contributing transactions
	Transactions []*Transaction
}

// Signatures returns the transaction signatures of the candidate in input order.
func (c *Candidate) Signatures() []string {
	sigs := make([]string, 0, len(c.Transactions))
	for _, tx := range c.Transactions {
		sigs = append(sigs, tx.Signature)
	}
	return sigs
}

// Alert is the dispatched form of a candidate.
type Alert struct {
	ID           string // UUID, assigned at dispatch time
	TokenAddress string
	TokenSymbol  string
	Side         Side
	WalletCount  int
	TotalAmount  float64
	FiredAt      int64 // Unix timestamp in milliseconds
}
