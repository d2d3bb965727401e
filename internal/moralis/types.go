package moralis

import "encoding/json"

// Swap subcategories the tracker classifies. Anything else is skipped by the
// ingestion layer.
const (
	SubCategoryNewPosition = "newPosition"
	SubCategorySellAll     = "sellAll"
)

// swapsResponse is the raw envelope returned by the swaps endpoint.
type swapsResponse struct {
	Result []SwapRecord `json:"result"`
}

// SwapRecord is one raw swap as returned by the Moralis Solana gateway.
// Numeric fields arrive as strings or numbers depending on the record, so the
// flexible ones are kept raw and parsed leniently by the caller.
type SwapRecord struct {
	TransactionType string          `json:"transactionType"`
	SubCategory     string          `json:"subCategory"`
	WalletAddress   string          `json:"walletAddress"`
	PairAddress     string          `json:"pairAddress"`
	Signature       string          `json:"signature"`
	BlockTimestamp  json.RawMessage `json:"blockTimestamp"`
	Price           json.RawMessage `json:"price"`
	Bought          TokenAmount     `json:"bought"`
	Sold            TokenAmount     `json:"sold"`
}

// TokenAmount is the bought/sold sub-object of a swap record.
type TokenAmount struct {
	Symbol string          `json:"symbol"`
	Amount json.RawMessage `json:"amount"`
}
