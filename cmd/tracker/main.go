// Package main runs the wallet tracker: it polls swaps for tracked
// wallets, detects coordinated buys and sells, and dispatches alerts.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"solana-wallet-pulse/internal/config"
	"solana-wallet-pulse/internal/correlation"
	"solana-wallet-pulse/internal/domain"
	"solana-wallet-pulse/internal/ingestion"
	"solana-wallet-pulse/internal/moralis"
	"solana-wallet-pulse/internal/notify"
	"solana-wallet-pulse/internal/observability"
	"solana-wallet-pulse/internal/poller"
	"solana-wallet-pulse/internal/ratelimit"
	"solana-wallet-pulse/internal/solanaaddr"
	"solana-wallet-pulse/internal/storage"
	chstore "solana-wallet-pulse/internal/storage/clickhouse"
	"solana-wallet-pulse/internal/storage/memory"
	"solana-wallet-pulse/internal/storage/migrations"
	pgstore "solana-wallet-pulse/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config (falls back to environment)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("tracker failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		walletStore storage.WalletStore
		tokenStore  storage.TokenStore
		alertLog    storage.AlertLogStore
	)
	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("run postgres migrations: %w", err)
		}
		walletStore = pgstore.NewWalletStore(pool)
		tokenStore = pgstore.NewTokenStore(pool)
		alertLog = pgstore.NewAlertLogStore(pool)
		logger.Info("using postgres storage")
	} else {
		walletStore = memory.NewWalletStore()
		tokenStore = memory.NewTokenStore()
		alertLog = memory.NewAlertLogStore()
		logger.Warn("no postgres dsn configured, alert dedup will not survive restarts")
	}

	var archive storage.TransactionArchive
	if cfg.ClickHouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN)
		if err != nil {
			return fmt.Errorf("run clickhouse migrations: %w", err)
		}
		defer conn.Close()
		archive = chstore.NewTransactionArchive(conn)
		logger.Info("archiving transactions to clickhouse")
	}

	if err := seedWallets(ctx, walletStore, cfg.TrackedWallets, logger); err != nil {
		return err
	}

	var notifier notify.Notifier
	if cfg.TelegramBotToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatIDs, logger)
		if err != nil {
			return fmt.Errorf("create telegram notifier: %w", err)
		}
		notifier = tg
	} else {
		notifier = notify.NewLogNotifier(logger)
		logger.Info("no telegram token configured, alerts go to the log")
	}

	var metrics *observability.Metrics
	if cfg.MetricsPort > 0 {
		metrics = observability.NewMetrics("")
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
			Handler: mux,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("serving metrics", zap.Int("port", cfg.MetricsPort))
	}

	clientOpts := []moralis.ClientOption{}
	if cfg.MoralisBaseURL != "" {
		clientOpts = append(clientOpts, moralis.WithBaseURL(cfg.MoralisBaseURL))
	}
	client := moralis.NewClient(cfg.MoralisAPIKey, clientOpts...)
	limiterCfg := ratelimit.Config{
		MinInterval: cfg.RateLimitMinInterval,
		MaxRetries:  cfg.RateLimitMaxRetries,
	}
	if metrics != nil {
		limiterCfg.OnRetry = metrics.RateLimitRetries.Inc
	}
	limiter := ratelimit.New(limiterCfg)
	source := ingestion.NewMoralisSwapSource(client, limiter, logger)

	runner, err := poller.NewRunner(poller.RunnerOptions{
		Source:         source,
		WalletStore:    walletStore,
		TokenStore:     tokenStore,
		AlertLog:       alertLog,
		Archive:        archive,
		BuyDetector:    correlation.NewDetector(correlation.Config{MinWallets: cfg.BuyMinWallets}),
		SellDetector:   correlation.NewDetector(correlation.Config{MinWallets: cfg.SellMinWallets}),
		Notifier:       notifier,
		PollInterval:   cfg.PollInterval,
		Lookback:       cfg.Lookback,
		WalletCooldown: cfg.WalletCooldown,
		AlertsEnabled:  cfg.AlertsEnabled,
		Logger:         logger,
		Metrics:        metrics,
	})
	if err != nil {
		return fmt.Errorf("create runner: %w", err)
	}

	return runner.Run(ctx)
}

// seedWallets registers configured wallet addresses, rejecting ones that
// are not valid on-curve Solana addresses.
func seedWallets(ctx context.Context, store storage.WalletStore, addrs []string, logger *zap.Logger) error {
	now := time.Now().UnixMilli()
	for _, addr := range addrs {
		if err := solanaaddr.ValidateWallet(addr); err != nil {
			return fmt.Errorf("tracked wallet %s: %w", addr, err)
		}
		if err := store.Put(ctx, &domain.TrackedWallet{Address: addr, AddedAt: now}); err != nil {
			return fmt.Errorf("register wallet %s: %w", addr, err)
		}
	}
	if len(addrs) > 0 {
		logger.Info("seeded tracked wallets", zap.Int("count", len(addrs)))
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
