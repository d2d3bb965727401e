// Package ratelimit bounds the global outbound request rate to the upstream
// indexing API and retries rate-limited calls with backoff.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Default configuration values.
const (
	DefaultMinInterval = 1100 * time.Millisecond
	DefaultMaxRetries  = 3
	DefaultBackoffBase = 2 * time.Second
)

// ErrRetriesExhausted wraps the last rate-limited error once every retry
// attempt has been consumed.
var ErrRetriesExhausted = errors.New("retries exhausted")

// RetryableFunc performs one outbound request attempt.
type RetryableFunc func(ctx context.Context) error

// Limiter serializes outbound requests process-wide: at most one request per
// MinInterval, regardless of how many callers share the limiter. The last
// request time is guarded by a mutex so concurrent wallet fetches remain
// bounded by the same clock.
type Limiter struct {
	mu          sync.Mutex
	lastRequest time.Time

	minInterval time.Duration
	maxRetries  int
	backoffBase time.Duration
	onRetry     func()

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Config holds limiter parameters. Zero values fall back to defaults.
type Config struct {
	MinInterval time.Duration
	MaxRetries  int
	BackoffBase time.Duration

	// OnRetry is invoked once per retried rate-limited attempt.
	// Optional; used to feed a retry counter.
	OnRetry func()
}

// New creates a Limiter.
func New(cfg Config) *Limiter {
	if cfg.MinInterval == 0 {
		cfg.MinInterval = DefaultMinInterval
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.BackoffBase == 0 {
		cfg.BackoffBase = DefaultBackoffBase
	}

	return &Limiter{
		minInterval: cfg.MinInterval,
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
		onRetry:     cfg.OnRetry,
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

// Wait blocks until at least MinInterval has passed since the previous
// request, then records the new request time. Returns early on context
// cancellation without consuming the slot.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	for {
		wait := l.minInterval - l.now().Sub(l.lastRequest)
		if wait <= 0 {
			break
		}
		// Another caller may claim the slot while the lock is released,
		// so the remaining wait is recomputed after every sleep.
		l.mu.Unlock()
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
		l.mu.Lock()
	}
	l.lastRequest = l.now()
	l.mu.Unlock()
	return nil
}

// Execute runs fn under the global rate limit. A rate-limited response
// (matched by isRateLimited) is retried up to MaxRetries times with backoff
// BackoffBase * attempt; any other error propagates immediately.
func (l *Limiter) Execute(ctx context.Context, fn RetryableFunc, isRateLimited func(error) bool) error {
	var lastErr error

	for attempt := 1; attempt <= l.maxRetries+1; attempt++ {
		if err := l.Wait(ctx); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !isRateLimited(err) {
			return err
		}

		lastErr = err
		if attempt <= l.maxRetries {
			if l.onRetry != nil {
				l.onRetry()
			}
			if err := l.sleep(ctx, time.Duration(attempt)*l.backoffBase); err != nil {
				return err
			}
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, l.maxRetries+1, lastErr)
}

// sleepCtx sleeps for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
