package store

import (
	"context"
	"sync"

	"partnerdesk/internal/vat/domain/history"
	id "partnerdesk/pkg/domain"
)

// InMemoryHistoryStore keeps events newest first per partner.
type InMemoryHistoryStore struct {
	mu     sync.RWMutex
	events map[id.PartnerID][]history.Event
}

func NewInMemoryHistoryStore() *InMemoryHistoryStore {
	return &InMemoryHistoryStore{events: make(map[id.PartnerID][]history.Event)}
}

func (s *InMemoryHistoryStore) Append(_ context.Context, partnerID id.PartnerID, event history.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[partnerID] = append([]history.Event{event}, s.events[partnerID]...)
	return nil
}

func (s *InMemoryHistoryStore) Recent(_ context.Context, partnerID id.PartnerID, limit int) ([]history.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.events[partnerID]
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	out := make([]history.Event, len(events))
	copy(out, events)
	return out, nil
}

// DeletePartner drops the history of a removed partner.
func (s *InMemoryHistoryStore) DeletePartner(_ context.Context, partnerID id.PartnerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, partnerID)
	return nil
}
