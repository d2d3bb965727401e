// Package moralis provides an HTTP client for the Moralis Solana gateway.
package moralis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Default configuration values.
const (
	DefaultBaseURL  = "https://solana-gateway.moralis.io/account/mainnet"
	DefaultTimeout  = 30 * time.Second
	DefaultPageSize = 100
)

// ErrRateLimited is returned on HTTP 429 so the rate limiter can retry the
// call with backoff. All other failures are terminal for the request.
var ErrRateLimited = errors.New("rate limited (429)")

// Client calls the Moralis Solana gateway over HTTP.
type Client struct {
	baseURL  string
	apiKey   string
	client   *http.Client
	pageSize int
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL overrides the gateway base URL.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithPageSize sets the per-request swap page size cap.
func WithPageSize(n int) ClientOption {
	return func(c *Client) {
		c.pageSize = n
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a new Moralis gateway client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: DefaultTimeout},
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WalletSwaps fetches the most recent swaps for a wallet, newest first,
// capped at the configured page size. It issues exactly one HTTP request;
// retry policy is the caller's concern.
func (c *Client) WalletSwaps(ctx context.Context, walletAddress string) ([]SwapRecord, error) {
	q := url.Values{}
	q.Set("order", "DESC")
	q.Set("limit", strconv.Itoa(c.pageSize))

	endpoint := fmt.Sprintf("%s/%s/swaps?%s", c.baseURL, url.PathEscape(walletAddress), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed swapsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return parsed.Result, nil
}
