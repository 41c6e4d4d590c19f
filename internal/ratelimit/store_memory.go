package ratelimit

import (
	"context"
	"sync"
	"time"

	"partnerdesk/pkg/requestcontext"
)

// InMemoryStore keeps sliding windows in process memory. Limits are per
// instance and keys are never evicted.
type InMemoryStore struct {
	mu      sync.Mutex
	windows map[string][]time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{windows: make(map[string][]time.Time)}
}

func (s *InMemoryStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	admitted := trim(s.windows[key], now.Add(-window))
	if len(admitted) >= limit {
		s.windows[key] = admitted
		return &Result{Allowed: false, Limit: limit, ResetAt: admitted[0].Add(window)}, nil
	}

	admitted = append(admitted, now)
	s.windows[key] = admitted
	return &Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(admitted),
		ResetAt:   admitted[0].Add(window),
	}, nil
}

// trim drops timestamps at or before cutoff. Timestamps are kept in
// admission order.
func trim(admitted []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(admitted); i++ {
		if admitted[i].After(cutoff) {
			break
		}
	}
	return admitted[i:]
}
