// Package service implements subscriber lookup and find-or-create.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"partnerdesk/internal/subscriber/models"
	"partnerdesk/internal/subscriber/store"
	id "partnerdesk/pkg/domain"
	dErrors "partnerdesk/pkg/domain-errors"
	"partnerdesk/pkg/platform/paging"
	"partnerdesk/pkg/platform/sentinel"
	"partnerdesk/pkg/requestcontext"
)

// DefaultLookupPageSize is the number of subscribers returned per lookup page.
const DefaultLookupPageSize = 10

type Service struct {
	store    store.Store
	logger   *slog.Logger
	pageSize int
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithPageSize(n int) Option {
	return func(s *Service) { s.pageSize = paging.NormalizeSize(n) }
}

func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:    st,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		pageSize: DefaultLookupPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup returns one page of subscribers matching search. HasMore is set when
// a further page has at least one result.
func (s *Service) Lookup(ctx context.Context, search string, page int) (*models.LookupPage, error) {
	if page < 1 {
		page = 1
	}
	rows, err := s.store.Search(ctx, search, paging.Offset(page, s.pageSize), s.pageSize+1)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search subscribers")
	}
	result := &models.LookupPage{Results: rows}
	if len(rows) > s.pageSize {
		result.Results = rows[:s.pageSize]
		result.HasMore = true
	}
	return result, nil
}

func (s *Service) Get(ctx context.Context, subscriberID id.SubscriberID) (*models.Subscriber, error) {
	sub, err := s.store.FindByID(ctx, subscriberID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "subscriber not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subscriber")
	}
	return sub, nil
}

// FindOrCreate returns the subscriber registered under email, creating one
// with newsletter consent when the address is new.
func (s *Service) FindOrCreate(ctx context.Context, email string) (*models.Subscriber, error) {
	email, err := models.ParseEmail(email)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subscriber")
	}

	sub := &models.Subscriber{
		ID:                id.NewSubscriberID(),
		Email:             email,
		NewsletterConsent: true,
		CreatedAt:         requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, sub); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost a race with a concurrent create of the same address.
			return s.store.FindByEmail(ctx, email)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create subscriber")
	}

	s.logger.InfoContext(ctx, "subscriber created",
		"subscriber_id", sub.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return sub, nil
}
