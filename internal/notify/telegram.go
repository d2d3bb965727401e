package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTelegramBaseURL is the Telegram Bot API endpoint.
	DefaultTelegramBaseURL = "https://api.telegram.org"

	defaultTelegramTimeout = 10 * time.Second
)

// TelegramNotifier sends alert messages to one or more chats via the
// Bot API sendMessage method. A failure for one chat does not stop
// delivery to the remaining chats.
type TelegramNotifier struct {
	baseURL    string
	token      string
	chatIDs    []string
	httpClient *http.Client
	logger     *zap.Logger
}

// TelegramOption configures a TelegramNotifier.
type TelegramOption func(*TelegramNotifier)

// WithTelegramBaseURL overrides the Bot API endpoint.
func WithTelegramBaseURL(u string) TelegramOption {
	return func(n *TelegramNotifier) {
		n.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTelegramHTTPClient overrides the HTTP client.
func WithTelegramHTTPClient(c *http.Client) TelegramOption {
	return func(n *TelegramNotifier) {
		n.httpClient = c
	}
}

// WithTelegramTimeout overrides the request timeout.
func WithTelegramTimeout(d time.Duration) TelegramOption {
	return func(n *TelegramNotifier) {
		n.httpClient.Timeout = d
	}
}

func NewTelegramNotifier(token string, chatIDs []string, logger *zap.Logger, opts ...TelegramOption) (*TelegramNotifier, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	if len(chatIDs) == 0 {
		return nil, fmt.Errorf("at least one telegram chat id is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	n := &TelegramNotifier{
		baseURL:    DefaultTelegramBaseURL,
		token:      token,
		chatIDs:    chatIDs,
		httpClient: &http.Client{Timeout: defaultTelegramTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// Notify sends message to every configured chat. Returns the last
// delivery error, if any, after attempting all chats.
func (n *TelegramNotifier) Notify(ctx context.Context, message string) error {
	var lastErr error
	for _, chatID := range n.chatIDs {
		if err := n.sendMessage(ctx, chatID, message); err != nil {
			n.logger.Warn("telegram delivery failed",
				zap.String("chat_id", chatID),
				zap.Error(err))
			lastErr = err
		}
	}
	return lastErr
}

func (n *TelegramNotifier) sendMessage(ctx context.Context, chatID, text string) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return fmt.Errorf("marshal sendMessage request: %w", err)
	}

	u := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("create sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute sendMessage request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram api status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}

var _ Notifier = (*TelegramNotifier)(nil)
