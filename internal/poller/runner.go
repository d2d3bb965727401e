package poller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"solana-wallet-pulse/internal/correlation"
	"solana-wallet-pulse/internal/domain"
	"solana-wallet-pulse/internal/ingestion"
	"solana-wallet-pulse/internal/notify"
	"solana-wallet-pulse/internal/observability"
	"solana-wallet-pulse/internal/storage"
)

const (
	// DefaultPollInterval is the delay between polling cycles.
	DefaultPollInterval = 60 * time.Second

	// DefaultLookback bounds how far back fetched swaps are considered.
	DefaultLookback = 6 * time.Hour

	// DefaultWalletCooldown is how long a wallet is skipped after a
	// fetch that returned no swaps.
	DefaultWalletCooldown = 60 * time.Second
)

// Runner orchestrates the poll cycle: fetch swaps for every tracked
// wallet, detect coordinated buys and sells, and dispatch alerts that
// survive the dedup check.
type Runner struct {
	source       ingestion.SwapSource
	walletStore  storage.WalletStore
	tokenStore   storage.TokenStore
	alertLog     storage.AlertLogStore
	archive      storage.TransactionArchive
	buyDetector  *correlation.Detector
	sellDetector *correlation.Detector
	notifier     notify.Notifier

	pollInterval   time.Duration
	lookback       time.Duration
	walletCooldown time.Duration
	alertsEnabled  bool
	logger         *zap.Logger
	metrics        *observability.Metrics // nil disables instrumentation

	now func() time.Time

	// Wallets that returned no swaps are skipped until the cooldown
	// elapses, keeping quota for wallets that are actually trading.
	emptySince map[string]time.Time
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Source       ingestion.SwapSource
	WalletStore  storage.WalletStore
	TokenStore   storage.TokenStore       // optional token watchlist
	AlertLog     storage.AlertLogStore
	Archive      storage.TransactionArchive // optional, best-effort
	BuyDetector  *correlation.Detector
	SellDetector *correlation.Detector
	Notifier     notify.Notifier

	PollInterval   time.Duration // Default: 60s
	Lookback       time.Duration // Default: 6h
	WalletCooldown time.Duration // Default: 60s
	AlertsEnabled  bool
	Logger         *zap.Logger
	Metrics        *observability.Metrics // optional
}

// NewRunner creates a new poll runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("swap source is required")
	}
	if opts.WalletStore == nil {
		return nil, fmt.Errorf("wallet store is required")
	}
	if opts.AlertLog == nil {
		return nil, fmt.Errorf("alert log store is required")
	}
	if opts.BuyDetector == nil || opts.SellDetector == nil {
		return nil, fmt.Errorf("buy and sell detectors are required")
	}
	if opts.Notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}

	pollInterval := opts.PollInterval
	if pollInterval == 0 {
		pollInterval = DefaultPollInterval
	}
	lookback := opts.Lookback
	if lookback == 0 {
		lookback = DefaultLookback
	}
	walletCooldown := opts.WalletCooldown
	if walletCooldown == 0 {
		walletCooldown = DefaultWalletCooldown
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Runner{
		source:         opts.Source,
		walletStore:    opts.WalletStore,
		tokenStore:     opts.TokenStore,
		alertLog:       opts.AlertLog,
		archive:        opts.Archive,
		buyDetector:    opts.BuyDetector,
		sellDetector:   opts.SellDetector,
		notifier:       opts.Notifier,
		pollInterval:   pollInterval,
		lookback:       lookback,
		walletCooldown: walletCooldown,
		alertsEnabled:  opts.AlertsEnabled,
		logger:         logger,
		metrics:        opts.Metrics,
		now:            time.Now,
		emptySince:     make(map[string]time.Time),
	}, nil
}

// Run polls until the context is cancelled. The first cycle runs
// immediately; later cycles run on the poll interval.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("starting poll runner",
		zap.Duration("poll_interval", r.pollInterval),
		zap.Duration("lookback", r.lookback),
		zap.Bool("alerts_enabled", r.alertsEnabled))

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		if err := r.PollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				r.logger.Info("poll runner stopped")
				return nil
			}
			r.logger.Error("poll cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			r.logger.Info("poll runner stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// PollOnce executes a single poll cycle.
func (r *Runner) PollOnce(ctx context.Context) error {
	err := r.pollOnce(ctx)
	if m := r.metrics; m != nil {
		if err != nil {
			m.PollCyclesTotal.WithLabelValues("error").Inc()
		} else {
			m.PollCyclesTotal.WithLabelValues("ok").Inc()
			m.LastSuccessfulPoll.SetToCurrentTime()
		}
	}
	return err
}

func (r *Runner) pollOnce(ctx context.Context) error {
	if !r.alertsEnabled {
		r.logger.Debug("alerts disabled, skipping cycle")
		return nil
	}

	wallets, err := r.walletStore.List(ctx)
	if err != nil {
		return fmt.Errorf("list tracked wallets: %w", err)
	}
	if len(wallets) == 0 {
		r.logger.Debug("no tracked wallets, skipping cycle")
		return nil
	}

	transactions := r.fetchAll(ctx, wallets)
	if len(transactions) == 0 {
		return nil
	}

	transactions = r.withinLookback(transactions)
	transactions, err = r.applyTokenScope(ctx, transactions)
	if err != nil {
		return err
	}
	if len(transactions) == 0 {
		return nil
	}

	if m := r.metrics; m != nil {
		m.TransactionsIngested.Add(float64(len(transactions)))
	}

	if r.archive != nil {
		if err := r.archive.InsertBulk(ctx, transactions); err != nil {
			r.logger.Warn("archive insert failed", zap.Error(err))
			if m := r.metrics; m != nil {
				m.ArchiveInsertErrors.Inc()
			}
		}
	}

	candidates := r.buyDetector.Detect(transactions, domain.SideBuy)
	candidates = append(candidates, r.sellDetector.Detect(transactions, domain.SideSell)...)
	if m := r.metrics; m != nil {
		for _, candidate := range candidates {
			m.CandidatesDetected.WithLabelValues(string(candidate.Side)).Inc()
		}
	}

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.processCandidate(ctx, candidate)
	}
	return nil
}

// fetchAll collects swaps for every wallet, tolerating per-wallet
// failures. Wallets whose last fetch was empty stay on cooldown.
func (r *Runner) fetchAll(ctx context.Context, wallets []*domain.TrackedWallet) []*domain.Transaction {
	now := r.now()
	var all []*domain.Transaction
	for _, wallet := range wallets {
		if since, ok := r.emptySince[wallet.Address]; ok {
			if now.Sub(since) < r.walletCooldown {
				continue
			}
			delete(r.emptySince, wallet.Address)
		}

		start := time.Now()
		txs, err := r.source.Fetch(ctx, wallet.Address, r.lookback)
		if m := r.metrics; m != nil {
			m.FetchLatency.Observe(time.Since(start).Seconds())
		}
		if err != nil {
			if ctx.Err() != nil {
				return all
			}
			r.logger.Warn("wallet fetch failed",
				zap.String("wallet", wallet.Address),
				zap.Error(err))
			r.countFetch("error")
			continue
		}
		if len(txs) == 0 {
			r.emptySince[wallet.Address] = now
			r.countFetch("empty")
			continue
		}
		r.countFetch("ok")
		all = append(all, txs...)
	}
	if m := r.metrics; m != nil {
		m.WalletsOnCooldown.Set(float64(len(r.emptySince)))
	}
	return all
}

func (r *Runner) countFetch(outcome string) {
	if m := r.metrics; m != nil {
		m.WalletFetchesTotal.WithLabelValues(outcome).Inc()
	}
}

// withinLookback drops transactions older than the lookback window.
func (r *Runner) withinLookback(transactions []*domain.Transaction) []*domain.Transaction {
	cutoff := r.now().Add(-r.lookback).Unix()
	kept := transactions[:0]
	for _, tx := range transactions {
		if tx.Timestamp >= cutoff {
			kept = append(kept, tx)
		}
	}
	return kept
}

// applyTokenScope restricts detection to the token watchlist when one
// is configured. A token with a wallet scope only counts swaps from
// wallets in that scope. An empty watchlist means every token counts.
func (r *Runner) applyTokenScope(ctx context.Context, transactions []*domain.Transaction) ([]*domain.Transaction, error) {
	if r.tokenStore == nil {
		return transactions, nil
	}
	tokens, err := r.tokenStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tracked tokens: %w", err)
	}
	if len(tokens) == 0 {
		return transactions, nil
	}

	scopes := make(map[string]map[string]bool, len(tokens))
	for _, token := range tokens {
		var scope map[string]bool
		if len(token.WalletScope) > 0 {
			scope = make(map[string]bool, len(token.WalletScope))
			for _, addr := range token.WalletScope {
				scope[addr] = true
			}
		}
		scopes[token.TokenAddress] = scope
	}

	kept := transactions[:0]
	for _, tx := range transactions {
		scope, tracked := scopes[tx.TokenAddress]
		if !tracked {
			continue
		}
		if scope != nil && !scope[tx.WalletAddress] {
			continue
		}
		kept = append(kept, tx)
	}
	return kept, nil
}

// processCandidate runs the dedup check, commits the candidate's
// signatures, and only then dispatches the alert. A commit failure
// suppresses dispatch so a restart cannot re-fire an uncommitted alert.
func (r *Runner) processCandidate(ctx context.Context, candidate *domain.Candidate) {
	signatures := candidate.Signatures()

	fresh, err := r.alertLog.IsNew(ctx, candidate.Side, candidate.TokenAddress, signatures)
	if err != nil {
		r.logger.Error("dedup check failed, suppressing alert",
			zap.String("token", candidate.TokenAddress),
			zap.String("side", string(candidate.Side)),
			zap.Error(err))
		r.countSuppressed("dedup_error")
		return
	}
	if !fresh {
		r.logger.Debug("candidate already alerted",
			zap.String("token", candidate.TokenAddress),
			zap.String("side", string(candidate.Side)))
		r.countSuppressed("duplicate")
		return
	}

	if err := r.alertLog.Commit(ctx, candidate.Side, candidate.TokenAddress, signatures); err != nil {
		r.logger.Error("alert commit failed, suppressing dispatch",
			zap.String("token", candidate.TokenAddress),
			zap.String("side", string(candidate.Side)),
			zap.Error(err))
		r.countSuppressed("commit_error")
		return
	}

	alert := &domain.Alert{
		ID:           uuid.NewString(),
		TokenAddress: candidate.TokenAddress,
		TokenSymbol:  candidate.TokenSymbol,
		Side:         candidate.Side,
		WalletCount:  candidate.WalletCount,
		TotalAmount:  candidate.TotalAmount,
		FiredAt:      r.now().UnixMilli(),
	}

	message := FormatAlert(candidate)
	if err := r.notifier.Notify(ctx, message); err != nil {
		r.logger.Warn("alert delivery failed",
			zap.String("alert_id", alert.ID),
			zap.String("token", candidate.TokenAddress),
			zap.Error(err))
	}

	if m := r.metrics; m != nil {
		m.AlertsFired.WithLabelValues(string(candidate.Side)).Inc()
	}
	r.logger.Info("alert fired",
		zap.String("alert_id", alert.ID),
		zap.String("token", candidate.TokenAddress),
		zap.String("side", string(candidate.Side)),
		zap.Int("wallets", candidate.WalletCount),
		zap.Float64("total_amount", candidate.TotalAmount))
}

func (r *Runner) countSuppressed(reason string) {
	if m := r.metrics; m != nil {
		m.AlertsSuppressed.WithLabelValues(reason).Inc()
	}
}

// FormatAlert renders a candidate as a human-readable alert message.
func FormatAlert(candidate *domain.Candidate) string {
	var b strings.Builder

	action := "bought"
	if candidate.Side == domain.SideSell {
		action = "sold"
	}

	symbol := candidate.TokenSymbol
	if symbol == "" {
		symbol = candidate.TokenAddress
	}

	fmt.Fprintf(&b, "%d wallets %s %s\n", candidate.WalletCount, action, symbol)
	fmt.Fprintf(&b, "Token: %s\n", candidate.TokenAddress)
	fmt.Fprintf(&b, "Total amount: %.4f\n", candidate.TotalAmount)

	seen := make(map[string]bool, candidate.WalletCount)
	for _, tx := range candidate.Transactions {
		if seen[tx.WalletAddress] {
			continue
		}
		seen[tx.WalletAddress] = true
		fmt.Fprintf(&b, "  %s\n", tx.WalletAddress)
	}
	return strings.TrimRight(b.String(), "\n")
}
