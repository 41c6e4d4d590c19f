package memory

import (
	"context"
	"slices"
	"sync"

	id "partnerdesk/pkg/domain"
	"partnerdesk/pkg/platform/audit"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.PartnerID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.PartnerID][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.PartnerID] = append(s.events[event.PartnerID], event)
	return nil
}

// ListByPartner returns events newest first; equal timestamps keep the later
// append first.
func (s *InMemoryStore) ListByPartner(_ context.Context, partnerID id.PartnerID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := slices.Clone(s.events[partnerID])
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b audit.Event) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if out == nil {
		out = []audit.Event{}
	}
	return out, nil
}
