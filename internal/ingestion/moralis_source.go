package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"solana-wallet-pulse/internal/domain"
	"solana-wallet-pulse/internal/moralis"
	"solana-wallet-pulse/internal/ratelimit"
	"solana-wallet-pulse/internal/solanaaddr"
)

// ErrInvalidWallet marks a wallet whose address failed validation; the poller
// skips such wallets for the cycle instead of failing the process.
var ErrInvalidWallet = errors.New("invalid wallet address")

// MoralisSwapSource fetches swaps from the Moralis gateway under the global
// rate limit and normalizes them into canonical transactions.
type MoralisSwapSource struct {
	client  *moralis.Client
	limiter *ratelimit.Limiter
	logger  *zap.Logger
}

// NewMoralisSwapSource creates a Moralis-backed swap source.
func NewMoralisSwapSource(client *moralis.Client, limiter *ratelimit.Limiter, logger *zap.Logger) *MoralisSwapSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MoralisSwapSource{
		client:  client,
		limiter: limiter,
		logger:  logger,
	}
}

var _ SwapSource = (*MoralisSwapSource)(nil)

// Fetch returns canonical transactions for one wallet. Upstream failure after
// retries yields an empty slice plus the error; the page itself is processed
// record by record so one malformed entry never drops the rest.
func (s *MoralisSwapSource) Fetch(ctx context.Context, walletAddress string, _ time.Duration) ([]*domain.Transaction, error) {
	if err := solanaaddr.ValidateWallet(walletAddress); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWallet, err)
	}

	var records []moralis.SwapRecord
	err := s.limiter.Execute(ctx, func(ctx context.Context) error {
		var callErr error
		records, callErr = s.client.WalletSwaps(ctx, walletAddress)
		return callErr
	}, func(err error) bool {
		return errors.Is(err, moralis.ErrRateLimited)
	})
	if err != nil {
		return nil, err
	}

	txs := make([]*domain.Transaction, 0, len(records))
	for _, rec := range records {
		tx, err := normalizeRecord(rec)
		if err != nil {
			s.logger.Debug("dropping swap record",
				zap.String("wallet", walletAddress),
				zap.String("signature", rec.Signature),
				zap.Error(err))
			continue
		}
		if tx == nil {
			// Not a buy or sell, out of scope.
			continue
		}
		txs = append(txs, tx)
	}

	return txs, nil
}

// normalizeRecord converts one raw swap into a canonical transaction.
// Returns (nil, nil) for records that are neither a buy nor a sell, and an
// error for records that must be dropped.
func normalizeRecord(rec moralis.SwapRecord) (*domain.Transaction, error) {
	var side domain.Side
	switch rec.SubCategory {
	case moralis.SubCategoryNewPosition:
		side = domain.SideBuy
	case moralis.SubCategorySellAll:
		side = domain.SideSell
	default:
		return nil, nil
	}

	if rec.Signature == "" {
		return nil, errors.New("record has no signature")
	}
	if rec.PairAddress == "" {
		return nil, errors.New("record has no pair address")
	}

	ts, err := parseTimestamp(rec.BlockTimestamp)
	if err != nil {
		return nil, fmt.Errorf("parse blockTimestamp: %w", err)
	}

	leg := rec.Bought
	if side == domain.SideSell {
		leg = rec.Sold
	}

	// A malformed amount zeroes this record only, never the page.
	amount, ok := parseFlexibleFloat(leg.Amount)
	if !ok || amount < 0 {
		amount = 0
	}

	price, ok := parseFlexibleFloat(rec.Price)
	if !ok || price < 0 {
		// Placeholder: callers must not treat price as accurate.
		price = 1.0
	}

	return &domain.Transaction{
		Signature:     rec.Signature,
		WalletAddress: rec.WalletAddress,
		TokenAddress:  rec.PairAddress,
		TokenSymbol:   leg.Symbol,
		Amount:        amount,
		Price:         price,
		Side:          side,
		Timestamp:     ts,
	}, nil
}

// parseTimestamp accepts the two upstream encodings: integer epoch
// milliseconds and RFC3339 with a Z suffix. Anything else is an error; the
// record is dropped rather than defaulted to the current time.
func parseTimestamp(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 {
		return 0, errors.New("missing")
	}

	var millis int64
	if err := json.Unmarshal(raw, &millis); err == nil {
		if millis <= 0 {
			return 0, fmt.Errorf("non-positive epoch value %d", millis)
		}
		return millis / 1000, nil
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if t, err := time.Parse(time.RFC3339, str); err == nil {
			return t.Unix(), nil
		}
		// Some records carry epoch millis as a quoted string.
		if millis, err := strconv.ParseInt(str, 10, 64); err == nil && millis > 0 {
			return millis / 1000, nil
		}
		return 0, fmt.Errorf("unparseable timestamp %q", str)
	}

	return 0, fmt.Errorf("unsupported timestamp encoding %s", string(raw))
}

// parseFlexibleFloat reads a JSON value that may be a number or a quoted
// numeric string.
func parseFlexibleFloat(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if f, err := strconv.ParseFloat(str, 64); err == nil {
			return f, true
		}
	}

	return 0, false
}
