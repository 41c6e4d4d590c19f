// Package store persists partners, their contacts and their VAT verification
// history in memory or PostgreSQL.
package store

import (
	"context"

	"partnerdesk/internal/partner/models"
	"partnerdesk/internal/vat/domain/history"
	id "partnerdesk/pkg/domain"
)

// Store returns sentinel.ErrNotFound for unknown partners and
// sentinel.ErrConflict when (country, VAT number) is already taken.
type Store interface {
	Create(ctx context.Context, p *models.Partner) error
	Update(ctx context.Context, p *models.Partner) error
	FindByID(ctx context.Context, partnerID id.PartnerID) (*models.Partner, error)
	FindByVAT(ctx context.Context, country id.CountryCode, vatNumber string) (*models.Partner, error)
	Delete(ctx context.Context, partnerID id.PartnerID) error
	// List returns partners ordered by name and the total number of matches.
	List(ctx context.Context, filter models.Filter, offset, limit int) ([]*models.Partner, int, error)

	ReplaceContacts(ctx context.Context, partnerID id.PartnerID, subscriberIDs []id.SubscriberID) error
	ListContacts(ctx context.Context, partnerID id.PartnerID) ([]id.SubscriberID, error)
}

// HistoryStore keeps verification events per partner.
type HistoryStore interface {
	Append(ctx context.Context, partnerID id.PartnerID, event history.Event) error
	// Recent returns at most limit events, newest first.
	Recent(ctx context.Context, partnerID id.PartnerID, limit int) ([]history.Event, error)
	DeletePartner(ctx context.Context, partnerID id.PartnerID) error
}
