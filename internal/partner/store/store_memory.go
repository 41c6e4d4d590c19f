package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"partnerdesk/internal/partner/models"
	id "partnerdesk/pkg/domain"
	"partnerdesk/pkg/platform/sentinel"
)

type vatKey struct {
	country   id.CountryCode
	vatNumber string
}

type InMemoryStore struct {
	mu       sync.RWMutex
	partners map[id.PartnerID]*models.Partner
	byVAT    map[vatKey]id.PartnerID
	contacts map[id.PartnerID][]id.SubscriberID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		partners: make(map[id.PartnerID]*models.Partner),
		byVAT:    make(map[vatKey]id.PartnerID),
		contacts: make(map[id.PartnerID][]id.SubscriberID),
	}
}

func copyPartner(p *models.Partner) *models.Partner {
	out := *p
	if p.VerificationDate != nil {
		d := *p.VerificationDate
		out.VerificationDate = &d
	}
	return &out
}

func (s *InMemoryStore) Create(_ context.Context, p *models.Partner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := vatKey{p.Country, p.VATNumber}
	if _, taken := s.byVAT[key]; taken {
		return sentinel.ErrConflict
	}
	s.partners[p.ID] = copyPartner(p)
	s.byVAT[key] = p.ID
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, p *models.Partner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.partners[p.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	oldKey := vatKey{current.Country, current.VATNumber}
	newKey := vatKey{p.Country, p.VATNumber}
	if oldKey != newKey {
		if _, taken := s.byVAT[newKey]; taken {
			return sentinel.ErrConflict
		}
		delete(s.byVAT, oldKey)
		s.byVAT[newKey] = p.ID
	}
	s.partners[p.ID] = copyPartner(p)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, partnerID id.PartnerID) (*models.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.partners[partnerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyPartner(p), nil
}

func (s *InMemoryStore) FindByVAT(_ context.Context, country id.CountryCode, vatNumber string) (*models.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	partnerID, ok := s.byVAT[vatKey{country, vatNumber}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyPartner(s.partners[partnerID]), nil
}

func (s *InMemoryStore) Delete(_ context.Context, partnerID id.PartnerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.partners[partnerID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byVAT, vatKey{p.Country, p.VATNumber})
	delete(s.partners, partnerID)
	delete(s.contacts, partnerID)
	return nil
}

func (s *InMemoryStore) List(_ context.Context, filter models.Filter, offset, limit int) ([]*models.Partner, int, error) {
	s.mu.RLock()
	matches := make([]*models.Partner, 0)
	for _, p := range s.partners {
		if filter.Matches(p) {
			matches = append(matches, copyPartner(p))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matches, func(a, b *models.Partner) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.FullVATNumber(), b.FullVATNumber())
	})
	total := len(matches)
	if offset >= total {
		return []*models.Partner{}, total, nil
	}
	return matches[offset:min(offset+limit, total)], total, nil
}

func (s *InMemoryStore) ReplaceContacts(_ context.Context, partnerID id.PartnerID, subscriberIDs []id.SubscriberID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.partners[partnerID]; !ok {
		return sentinel.ErrNotFound
	}
	if len(subscriberIDs) == 0 {
		delete(s.contacts, partnerID)
		return nil
	}
	s.contacts[partnerID] = slices.Clone(subscriberIDs)
	return nil
}

func (s *InMemoryStore) ListContacts(_ context.Context, partnerID id.PartnerID) ([]id.SubscriberID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.contacts[partnerID]), nil
}
