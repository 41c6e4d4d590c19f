package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	id "partnerdesk/pkg/domain"
	"partnerdesk/pkg/requestcontext"
)

// Publisher enriches events from the request context and writes them
// synchronously. A write failure is returned so the caller's transaction
// fails with it. A nil *Publisher discards events.
type Publisher struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if p == nil {
		return nil
	}
	if event.Action == "" {
		return errors.New("audit event requires an action")
	}
	if event.PartnerID.IsNil() {
		return errors.New("audit event requires a partner id")
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ActorID == "" {
		if user := requestcontext.UserID(ctx); !user.IsNil() {
			event.ActorID = user.String()
		}
	}

	if err := p.store.Append(ctx, event); err != nil {
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "audit write failed",
				"action", string(event.Action),
				"category", string(event.Action.Category()),
				"partner_id", event.PartnerID.String(),
				"error", err,
			)
		}
		return fmt.Errorf("audit %s: %w", event.Action, err)
	}
	return nil
}

// List returns the partner's events, newest first.
func (p *Publisher) List(ctx context.Context, partnerID id.PartnerID) ([]Event, error) {
	if p == nil {
		return []Event{}, nil
	}
	return p.store.ListByPartner(ctx, partnerID)
}
