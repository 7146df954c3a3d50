package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps per-key admission timestamps in process memory. State
// is neither durable nor shared across instances; the Redis store covers
// multi-instance deployments. Keys are bounded by the configured token
// allow-list, so stale entries are pruned on access rather than by a
// background sweeper.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string][]time.Time
}

// NewMemoryStore creates an empty in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]time.Time),
	}
}

// Admit implements Store. The mutex makes the prune-count-record step one
// atomic unit for concurrent callers.
func (s *MemoryStore) Admit(_ context.Context, key string, now time.Time, window time.Duration, quota int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-window)
	stamps := s.entries[key]
	live := stamps[:0]
	for _, ts := range stamps {
		if ts.After(cutoff) {
			live = append(live, ts)
		}
	}

	if len(live) >= quota {
		s.entries[key] = live
		return false, nil
	}

	s.entries[key] = append(live, now)
	return true, nil
}
