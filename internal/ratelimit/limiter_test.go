package ratelimit

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"
)

// fakeClock drives the limiter deterministically: Wait sleeps advance the
// clock instead of wall time.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeLimiter(cfg Config) (*Limiter, *fakeClock) {
	l := New(cfg)
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	l.now = func() time.Time { return clock.now }
	l.sleep = func(_ context.Context, d time.Duration) error {
		clock.sleeps = append(clock.sleeps, d)
		clock.now = clock.now.Add(d)
		return nil
	}
	return l, clock
}

func TestLimiter_Wait_EnforcesMinInterval(t *testing.T) {
	l, clock := newFakeLimiter(Config{MinInterval: time.Second})
	ctx := context.Background()

	// First call: no prior request, no sleep.
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(clock.sleeps) != 0 {
		t.Errorf("expected no sleep on first call, got %v", clock.sleeps)
	}

	// Immediate second call must wait the full interval.
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(clock.sleeps) != 1 || clock.sleeps[0] != time.Second {
		t.Errorf("expected one 1s sleep, got %v", clock.sleeps)
	}
}

func TestLimiter_Wait_ConsecutiveCallsSpaced(t *testing.T) {
	l, clock := newFakeLimiter(Config{MinInterval: 500 * time.Millisecond})
	ctx := context.Background()

	var stamps []time.Time
	for i := 0; i < 5; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait %d: %v", i, err)
		}
		stamps = append(stamps, clock.now)
	}

	for i := 1; i < len(stamps); i++ {
		gap := stamps[i].Sub(stamps[i-1])
		if gap < 500*time.Millisecond {
			t.Errorf("gap between call %d and %d is %v, want >= 500ms", i-1, i, gap)
		}
	}
}

func TestLimiter_Wait_ConcurrentCallersSpaced(t *testing.T) {
	const (
		callers     = 4
		minInterval = 100 * time.Millisecond
	)
	l := New(Config{MinInterval: minInterval})
	ctx := context.Background()

	var mu sync.Mutex
	var stamps []time.Time
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Wait(ctx); err != nil {
				t.Errorf("Wait: %v", err)
				return
			}
			mu.Lock()
			stamps = append(stamps, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })
	// Allow a little skew: the stamp is taken after the slot is claimed.
	floor := minInterval - 10*time.Millisecond
	for i := 1; i < len(stamps); i++ {
		gap := stamps[i].Sub(stamps[i-1])
		if gap < floor {
			t.Errorf("gap between concurrent calls %d and %d is %v, want >= %v", i-1, i, gap, minInterval)
		}
	}
}

func TestLimiter_Execute_RetriesRateLimited(t *testing.T) {
	l, clock := newFakeLimiter(Config{
		MinInterval: time.Millisecond,
		MaxRetries:  3,
		BackoffBase: time.Second,
	})

	rateLimited := errors.New("rate limited")
	calls := 0
	err := l.Execute(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return rateLimited
		}
		return nil
	}, func(err error) bool { return errors.Is(err, rateLimited) })

	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}

	// Backoff is linear in the attempt number: base*1, base*2 for the two retries.
	var backoffs []time.Duration
	for _, d := range clock.sleeps {
		if d >= time.Second {
			backoffs = append(backoffs, d)
		}
	}
	if len(backoffs) != 2 || backoffs[0] != time.Second || backoffs[1] != 2*time.Second {
		t.Errorf("expected backoffs [1s 2s], got %v", backoffs)
	}
}

func TestLimiter_Execute_ReportsRetries(t *testing.T) {
	retries := 0
	l, _ := newFakeLimiter(Config{
		MinInterval: time.Millisecond,
		MaxRetries:  3,
		BackoffBase: time.Millisecond,
		OnRetry:     func() { retries++ },
	})

	rateLimited := errors.New("rate limited")
	calls := 0
	err := l.Execute(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return rateLimited
		}
		return nil
	}, func(err error) bool { return errors.Is(err, rateLimited) })

	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if retries != 2 {
		t.Errorf("OnRetry fired %d times, want 2", retries)
	}
}

func TestLimiter_Execute_ExhaustsRetries(t *testing.T) {
	l, _ := newFakeLimiter(Config{
		MinInterval: time.Millisecond,
		MaxRetries:  2,
		BackoffBase: time.Millisecond,
	})

	rateLimited := errors.New("rate limited")
	calls := 0
	err := l.Execute(context.Background(), func(context.Context) error {
		calls++
		return rateLimited
	}, func(err error) bool { return errors.Is(err, rateLimited) })

	if !errors.Is(err, ErrRetriesExhausted) {
		t.Errorf("expected ErrRetriesExhausted, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls (1 + 2 retries), got %d", calls)
	}
}

func TestLimiter_Execute_OtherErrorsPropagateImmediately(t *testing.T) {
	l, _ := newFakeLimiter(Config{MinInterval: time.Millisecond})

	boom := errors.New("boom")
	calls := 0
	err := l.Execute(context.Background(), func(context.Context) error {
		calls++
		return boom
	}, func(error) bool { return false })

	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected single call, got %d", calls)
	}
}

func TestLimiter_Wait_ContextCancelled(t *testing.T) {
	l := New(Config{MinInterval: time.Hour})

	// Consume the free first slot.
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
