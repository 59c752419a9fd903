package security

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrRateLimited = errors.New("too many login attempts, please try again later")

// CounterStore holds expiring counters shared by every API process.
type CounterStore interface {
	// Get returns the current value of key, 0 if missing or expired.
	Get(ctx context.Context, key string) (int64, error)
	// Incr increments key; the first increment starts a window after which the key expires.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	Delete(ctx context.Context, key string) error
}

// Limiter is a fixed-window attempts limiter keyed by client identity.
type Limiter struct {
	store  CounterStore
	limit  int64
	window time.Duration
	prefix string
}

func NewLimiter(store CounterStore, limit int, window time.Duration) *Limiter {
	return &Limiter{
		store:  store,
		limit:  int64(limit),
		window: window,
		prefix: "login_attempts:",
	}
}

// Allow reports whether key may attempt again within the current window.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := l.store.Get(ctx, l.prefix+key)
	if err != nil {
		return false, errors.Wrap(err, "getting attempts count")
	}
	return n < l.limit, nil
}

// Hit records a failed attempt for key.
func (l *Limiter) Hit(ctx context.Context, key string) error {
	_, err := l.store.Incr(ctx, l.prefix+key, l.window)
	return errors.Wrap(err, "incrementing attempts count")
}

// Reset clears the attempts of key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return errors.Wrap(l.store.Delete(ctx, l.prefix+key), "resetting attempts count")
}
