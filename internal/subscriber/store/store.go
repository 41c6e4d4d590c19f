// Package store persists subscribers in memory or PostgreSQL.
package store

import (
	"context"

	"partnerdesk/internal/subscriber/models"
	id "partnerdesk/pkg/domain"
)

// Store is implemented by the in-memory and PostgreSQL stores. Lookups return
// sentinel.ErrNotFound; Create returns sentinel.ErrConflict for a taken e-mail.
type Store interface {
	Create(ctx context.Context, s *models.Subscriber) error
	FindByID(ctx context.Context, subscriberID id.SubscriberID) (*models.Subscriber, error)
	FindByEmail(ctx context.Context, email string) (*models.Subscriber, error)
	// Search matches query case-insensitively against e-mail and names,
	// ordered by e-mail.
	Search(ctx context.Context, query string, offset, limit int) ([]*models.Subscriber, error)
}
