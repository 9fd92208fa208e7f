// Package ratelimit enforces per-caller request quotas on top of a shared
// counter store, so every server instance sees the same counts.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/spansk/internal/store"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAt is when the current window ends.
	ResetAt time.Time
}

// RetryAfter returns how long the caller should wait before retrying,
// rounded up to whole seconds.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	wait := d.ResetAt.Sub(now)
	if wait <= 0 {
		return 0
	}
	return (wait + time.Second - 1).Truncate(time.Second)
}

// Limiter counts requests per key in fixed windows.
type Limiter struct {
	counters store.CounterStore
	limit    int
	window   time.Duration
	now      func() time.Time
}

// New returns a Limiter allowing limit requests per window for each key.
// A limit of 0 or less allows everything.
func New(counters store.CounterStore, limit int, window time.Duration) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		counters: counters,
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// WithClock replaces the limiter's clock and returns l.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Enabled reports whether the limiter rejects anything at all.
func (l *Limiter) Enabled() bool {
	return l != nil && l.limit > 0
}

// Allow counts one request for key. The store error is returned alongside
// an allowing decision so callers can choose to fail open.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	start := now.Truncate(l.window)
	d := Decision{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit,
		ResetAt:   start.Add(l.window),
	}
	if !l.Enabled() {
		return d, nil
	}

	windowKey := fmt.Sprintf("%s:%d", key, start.Unix())
	count, err := l.counters.Increment(ctx, windowKey, l.window)
	if err != nil {
		return d, fmt.Errorf("count request for %s: %w", key, err)
	}

	d.Remaining = l.limit - int(count)
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	d.Allowed = count <= int64(l.limit)
	return d, nil
}
