// Package ratelimit enforces per-identity submission quotas over a rolling
// time window.
package ratelimit

import (
	"context"
	"time"
)

// Store is the counter backing for the limiter. Admit performs one whole
// sliding-window step for key, atomically with respect to concurrent calls
// for the same key: discard recorded timestamps older than now-window; if
// the remaining count has reached quota, report false without recording;
// otherwise record now and report true. Denials never consume quota.
type Store interface {
	Admit(ctx context.Context, key string, now time.Time, window time.Duration, quota int) (bool, error)
}

// Limiter applies a sliding-window quota per identity. The window counts
// events in the trailing interval ending at the moment of the call, so a
// burst of 2x quota straddling a boundary is impossible.
type Limiter struct {
	store  Store
	quota  int
	window time.Duration
}

// New creates a Limiter over the given store.
func New(store Store, quota int, window time.Duration) *Limiter {
	return &Limiter{
		store:  store,
		quota:  quota,
		window: window,
	}
}

// Allow reports whether identity may submit now. A denial consumes no
// quota; an error means the store is unavailable, not that the caller is
// over quota.
func (l *Limiter) Allow(ctx context.Context, identity string) (bool, error) {
	return l.store.Admit(ctx, identity, time.Now(), l.window, l.quota)
}
