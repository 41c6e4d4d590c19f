package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"partnerdesk/internal/subscriber/models"
	id "partnerdesk/pkg/domain"
	"partnerdesk/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[id.SubscriberID]*models.Subscriber
	byEmail map[string]id.SubscriberID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[id.SubscriberID]*models.Subscriber),
		byEmail: make(map[string]id.SubscriberID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, sub *models.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := models.NormalizeEmail(sub.Email)
	if _, taken := s.byEmail[key]; taken {
		return sentinel.ErrConflict
	}
	stored := *sub
	s.byID[sub.ID] = &stored
	s.byEmail[key] = sub.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, subscriberID id.SubscriberID) (*models.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.byID[subscriberID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *sub
	return &out, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subID, ok := s.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *s.byID[subID]
	return &out, nil
}

func (s *InMemoryStore) Search(_ context.Context, query string, offset, limit int) ([]*models.Subscriber, error) {
	query = strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	matches := make([]*models.Subscriber, 0)
	for _, sub := range s.byID {
		if sub.Matches(query) {
			out := *sub
			matches = append(matches, &out)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matches, func(a, b *models.Subscriber) int {
		return strings.Compare(a.Email, b.Email)
	})
	if offset >= len(matches) {
		return []*models.Subscriber{}, nil
	}
	end := min(offset+limit, len(matches))
	return matches[offset:end], nil
}
