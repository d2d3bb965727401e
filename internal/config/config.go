// Package config loads tracker configuration from a YAML file or from
// environment variables, with a .env fallback for local runs.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the wallet tracker.
type Config struct {
	// Upstream indexing API
	MoralisAPIKey  string
	MoralisBaseURL string

	// Polling
	PollInterval   time.Duration
	Lookback       time.Duration
	WalletCooldown time.Duration

	// Correlation thresholds
	BuyMinWallets  int
	SellMinWallets int

	// Rate limiting
	RateLimitMinInterval time.Duration
	RateLimitMaxRetries  int

	// Wallets seeded into the registry at startup.
	TrackedWallets []string

	// Storage. Empty DSNs select the in-memory stores.
	PostgresDSN   string
	ClickHouseDSN string

	// Alerting
	AlertsEnabled    bool
	TelegramBotToken string
	TelegramChatIDs  []string

	// Metrics. Zero disables the /metrics endpoint.
	MetricsPort int

	// Logging
	LogLevel string
}

type yamlConfig struct {
	MoralisAPIKey  string `yaml:"moralis_api_key"`
	MoralisBaseURL string `yaml:"moralis_base_url"`

	PollInterval   time.Duration `yaml:"poll_interval"`
	Lookback       time.Duration `yaml:"lookback"`
	WalletCooldown time.Duration `yaml:"wallet_cooldown"`

	BuyMinWallets  int `yaml:"buy_min_wallets"`
	SellMinWallets int `yaml:"sell_min_wallets"`

	RateLimitMinInterval time.Duration `yaml:"rate_limit_min_interval"`
	RateLimitMaxRetries  int           `yaml:"rate_limit_max_retries"`

	TrackedWallets []string `yaml:"tracked_wallets"`

	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickHouseDSN string `yaml:"clickhouse_dsn"`

	AlertsEnabled    *bool    `yaml:"alerts_enabled"`
	TelegramBotToken string   `yaml:"telegram_bot_token"`
	TelegramChatIDs  []string `yaml:"telegram_chat_ids"`

	MetricsPort int `yaml:"metrics_port"`

	LogLevel string `yaml:"log_level"`
}

// Load reads configuration from the YAML file at path, or from the
// environment when path is empty. Environment loading pulls in a .env
// file if one is present; real environment variables win over .env.
func Load(path string) (*Config, error) {
	var cfg *Config
	var err error
	if path != "" {
		cfg, err = loadYAML(path)
	} else {
		cfg, err = loadEnv()
	}
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config file %s", path)
	}

	var y yamlConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, errors.Wrapf(err, "parse config file %s", path)
	}

	cfg := &Config{
		MoralisAPIKey:        y.MoralisAPIKey,
		MoralisBaseURL:       y.MoralisBaseURL,
		PollInterval:         y.PollInterval,
		Lookback:             y.Lookback,
		WalletCooldown:       y.WalletCooldown,
		BuyMinWallets:        y.BuyMinWallets,
		SellMinWallets:       y.SellMinWallets,
		RateLimitMinInterval: y.RateLimitMinInterval,
		RateLimitMaxRetries:  y.RateLimitMaxRetries,
		TrackedWallets:       y.TrackedWallets,
		PostgresDSN:          y.PostgresDSN,
		ClickHouseDSN:        y.ClickHouseDSN,
		AlertsEnabled:        true,
		TelegramBotToken:     y.TelegramBotToken,
		TelegramChatIDs:      y.TelegramChatIDs,
		MetricsPort:          y.MetricsPort,
		LogLevel:             y.LogLevel,
	}
	if y.AlertsEnabled != nil {
		cfg.AlertsEnabled = *y.AlertsEnabled
	}
	return cfg, nil
}

func loadEnv() (*Config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	cfg := &Config{
		MoralisAPIKey:        os.Getenv("MORALIS_API_KEY"),
		MoralisBaseURL:       os.Getenv("MORALIS_BASE_URL"),
		PollInterval:         getEnvDuration("POLL_INTERVAL", 0),
		Lookback:             getEnvDuration("LOOKBACK", 0),
		WalletCooldown:       getEnvDuration("WALLET_COOLDOWN", 0),
		BuyMinWallets:        getEnvInt("BUY_MIN_WALLETS", 0),
		SellMinWallets:       getEnvInt("SELL_MIN_WALLETS", 0),
		RateLimitMinInterval: getEnvDuration("RATE_LIMIT_MIN_INTERVAL", 0),
		RateLimitMaxRetries:  getEnvInt("RATE_LIMIT_MAX_RETRIES", 0),
		PostgresDSN:          os.Getenv("POSTGRES_DSN"),
		ClickHouseDSN:        os.Getenv("CLICKHOUSE_DSN"),
		AlertsEnabled:        getEnvBool("ALERTS_ENABLED", true),
		TelegramBotToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		MetricsPort:          getEnvInt("METRICS_PORT", 0),
		LogLevel:             os.Getenv("LOG_LEVEL"),
	}

	if raw := os.Getenv("TELEGRAM_CHAT_IDS"); raw != "" {
		cfg.TelegramChatIDs = splitList(raw)
	}
	if raw := os.Getenv("TRACKED_WALLETS"); raw != "" {
		cfg.TrackedWallets = splitList(raw)
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func applyDefaults(cfg *Config) {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 60 * time.Second
	}
	if cfg.Lookback == 0 {
		cfg.Lookback = 6 * time.Hour
	}
	if cfg.WalletCooldown == 0 {
		cfg.WalletCooldown = 60 * time.Second
	}
	if cfg.BuyMinWallets == 0 {
		cfg.BuyMinWallets = 3
	}
	if cfg.SellMinWallets == 0 {
		cfg.SellMinWallets = 3
	}
	if cfg.RateLimitMinInterval == 0 {
		cfg.RateLimitMinInterval = 1100 * time.Millisecond
	}
	if cfg.RateLimitMaxRetries == 0 {
		cfg.RateLimitMaxRetries = 3
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func (c *Config) validate() error {
	if c.MoralisAPIKey == "" {
		return errors.New("moralis api key is required")
	}
	if c.BuyMinWallets < 2 || c.SellMinWallets < 2 {
		return errors.New("wallet thresholds must be at least 2")
	}
	if c.TelegramBotToken != "" && len(c.TelegramChatIDs) == 0 {
		return errors.New("telegram bot token set without chat ids")
	}
	return nil
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return v
}
