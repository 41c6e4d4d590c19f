// Package service implements partner management: creation with contact
// resolution, updates, verification recording and the paginated list.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"partnerdesk/internal/partner/models"
	"partnerdesk/internal/partner/store"
	"partnerdesk/internal/platform/metrics"
	submodels "partnerdesk/internal/subscriber/models"
	"partnerdesk/internal/vat/domain/history"
	"partnerdesk/internal/vat/domain/identifier"
	id "partnerdesk/pkg/domain"
	dErrors "partnerdesk/pkg/domain-errors"
	"partnerdesk/pkg/platform/audit"
	"partnerdesk/pkg/platform/paging"
	"partnerdesk/pkg/platform/sentinel"
	pstrings "partnerdesk/pkg/platform/strings"
	"partnerdesk/pkg/platform/tx"
	"partnerdesk/pkg/requestcontext"
)

const (
	DefaultHistoryLimit = 10
	DefaultListPageSize = 10
)

// Subscribers resolves contact entries to subscribers.
type Subscribers interface {
	FindOrCreate(ctx context.Context, email string) (*submodels.Subscriber, error)
	Get(ctx context.Context, subscriberID id.SubscriberID) (*submodels.Subscriber, error)
}

type Service struct {
	store        store.Store
	history      store.HistoryStore
	subscribers  Subscribers
	tx           tx.Runner
	auditor      *audit.Publisher
	validator    *identifier.Validator
	metrics      *metrics.Metrics
	logger       *slog.Logger
	historyLimit int
	pageSize     int
}

type Option func(*Service)

func WithTxRunner(r tx.Runner) Option {
	return func(s *Service) {
		if r != nil {
			s.tx = r
		}
	}
}

// WithAuditor records partner changes in the audit trail, inside the same
// unit of work as the change.
func WithAuditor(a *audit.Publisher) Option {
	return func(s *Service) { s.auditor = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithValidator(v *identifier.Validator) Option {
	return func(s *Service) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithHistoryLimit sets how many recent events Get returns.
func WithHistoryLimit(n int) Option {
	return func(s *Service) { s.historyLimit = paging.NormalizeSize(n) }
}

func WithPageSize(n int) Option {
	return func(s *Service) { s.pageSize = paging.NormalizeSize(n) }
}

func New(st store.Store, hs store.HistoryStore, subscribers Subscribers, opts ...Option) *Service {
	s := &Service{
		store:        st,
		history:      hs,
		subscribers:  subscribers,
		tx:           &tx.MemoryRunner{},
		validator:    identifier.NewValidator(nil),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		historyLimit: DefaultHistoryLimit,
		pageSize:     DefaultListPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates cmd, stores the partner with its contacts and, when a
// verification ID is supplied, a first history event.
func (s *Service) Create(ctx context.Context, cmd models.CreateCommand) (*models.Partner, error) {
	country, vatNumber, err := s.parseVAT(cmd.Country, cmd.VATNumber)
	if err != nil {
		return nil, err
	}
	address := cmd.Address
	address.Normalize()
	if err := address.Validate(); err != nil {
		return nil, err
	}
	contacts, err := parseContacts(cmd.Contacts)
	if err != nil {
		return nil, err
	}
	verificationID := strings.TrimSpace(cmd.VerificationID)
	if len(verificationID) > models.MaxVerificationIDSize {
		return nil, dErrors.New(dErrors.CodeValidation, "verification_id is too long")
	}

	now := requestcontext.Now(ctx)
	p := &models.Partner{
		ID:              id.NewPartnerID(),
		Country:         country,
		VATNumber:       vatNumber,
		Name:            address.Name,
		NameVerified:    cmd.NameVerified,
		City:            address.City,
		StreetName:      address.StreetName,
		BuildingNumber:  address.BuildingNumber,
		ApartmentNumber: address.ApartmentNumber,
		PostalCode:      address.PostalCode,
		PhoneNumber:     address.PhoneNumber,
		AdditionalInfo:  address.AdditionalInfo,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if verificationID != "" {
		p.MarkVerification(true, verificationID, now)
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, p); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "a partner with VAT number "+p.FullVATNumber()+" already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create partner")
		}
		subscriberIDs, err := s.resolveContacts(ctx, contacts)
		if err != nil {
			return err
		}
		if err := s.store.ReplaceContacts(ctx, p.ID, subscriberIDs); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save partner contacts")
		}
		if p.IsVerified {
			event := history.Event{
				VerifiedAt:     now,
				VerificationID: verificationID,
				IsVerified:     true,
				Message:        models.MessageVerifiedAtCreation,
			}
			if err := s.history.Append(ctx, p.ID, event); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record verification")
			}
		}
		return s.audit(ctx, audit.ActionPartnerCreated, p.ID, p.FullVATNumber())
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementPartnersCreated()
	s.logger.InfoContext(ctx, "partner created",
		"partner_id", p.ID.String(),
		"country", p.Country.String(),
		"verified", p.IsVerified,
		"contacts", len(contacts),
		"request_id", requestcontext.RequestID(ctx),
	)
	return p, nil
}

// Update applies the set fields of cmd and replaces the contact list.
func (s *Service) Update(ctx context.Context, partnerID id.PartnerID, cmd models.UpdateCommand) (*models.Partner, error) {
	contacts, err := parseContacts(cmd.Contacts)
	if err != nil {
		return nil, err
	}

	var updated *models.Partner
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.load(ctx, partnerID)
		if err != nil {
			return err
		}
		cmd.Apply(p)
		address := models.AddressOf(p)
		if err := address.Validate(); err != nil {
			return err
		}
		p.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.Update(ctx, p); err != nil {
			return translate(err, "failed to update partner")
		}

		subscriberIDs, err := s.resolveContacts(ctx, contacts)
		if err != nil {
			return err
		}
		if err := s.store.ReplaceContacts(ctx, p.ID, subscriberIDs); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save partner contacts")
		}
		updated = p
		return s.audit(ctx, audit.ActionPartnerUpdated, p.ID, "")
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "partner updated",
		"partner_id", partnerID.String(),
		"contacts", len(contacts),
		"request_id", requestcontext.RequestID(ctx),
	)
	return updated, nil
}

// Get returns the partner with its contacts and most recent history events.
func (s *Service) Get(ctx context.Context, partnerID id.PartnerID) (*models.View, error) {
	p, err := s.load(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	view := &models.View{Partner: p}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		contacts, err := s.contactsOf(gctx, partnerID)
		view.Contacts = contacts
		return err
	})
	g.Go(func() error {
		events, err := s.history.Recent(gctx, partnerID, s.historyLimit)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification history")
		}
		view.History = events
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

// RecentHistory returns the most recent events of a partner, newest first.
func (s *Service) RecentHistory(ctx context.Context, partnerID id.PartnerID) ([]history.Event, error) {
	events, err := s.history.Recent(ctx, partnerID, s.historyLimit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification history")
	}
	return events, nil
}

// RecordVerification stores a verification outcome on the partner and
// returns the history event it appended.
func (s *Service) RecordVerification(ctx context.Context, partnerID id.PartnerID, isVerified bool, verificationID string) (history.Event, error) {
	verificationID = strings.TrimSpace(verificationID)
	if len(verificationID) > models.MaxVerificationIDSize {
		return history.Event{}, dErrors.New(dErrors.CodeValidation, "verification_id is too long")
	}

	now := requestcontext.Now(ctx)
	event := history.Event{
		VerifiedAt:     now,
		VerificationID: verificationID,
		IsVerified:     isVerified,
		Message:        models.MessageVerifiedByUser,
	}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.load(ctx, partnerID)
		if err != nil {
			return err
		}
		p.MarkVerification(isVerified, verificationID, now)
		if err := s.store.Update(ctx, p); err != nil {
			return translate(err, "failed to update partner")
		}
		if err := s.history.Append(ctx, partnerID, event); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record verification")
		}
		return s.audit(ctx, audit.ActionVerificationRecorded, partnerID, verificationOutcome(isVerified))
	})
	if err != nil {
		return history.Event{}, err
	}

	s.metrics.IncrementVerificationStored(isVerified)
	s.logger.InfoContext(ctx, "partner verification recorded",
		"partner_id", partnerID.String(),
		"verified", isVerified,
		"request_id", requestcontext.RequestID(ctx),
	)
	return event, nil
}

// List returns one page of partners ordered by name. Out-of-range pages are
// clamped.
func (s *Service) List(ctx context.Context, filter models.Filter, page int) (*models.ListPage, error) {
	if !filter.Status.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid status filter")
	}
	filter.Search = strings.TrimSpace(filter.Search)
	page = max(page, 1)

	partners, total, err := s.store.List(ctx, filter, paging.Offset(page, s.pageSize), s.pageSize)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list partners")
	}
	totalPages := paging.TotalPages(total, s.pageSize)
	if page > totalPages {
		page = totalPages
		partners, total, err = s.store.List(ctx, filter, paging.Offset(page, s.pageSize), s.pageSize)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list partners")
		}
		totalPages = paging.TotalPages(total, s.pageSize)
	}
	return &models.ListPage{
		Partners:    partners,
		CurrentPage: paging.Clamp(page, totalPages),
		TotalPages:  totalPages,
		TotalCount:  total,
	}, nil
}

func (s *Service) Delete(ctx context.Context, partnerID id.PartnerID) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, partnerID); err != nil {
			return translate(err, "failed to delete partner")
		}
		if err := s.history.DeletePartner(ctx, partnerID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete verification history")
		}
		return s.audit(ctx, audit.ActionPartnerDeleted, partnerID, "")
	})
	if err != nil {
		return err
	}
	s.metrics.IncrementPartnersDeleted()
	s.logger.InfoContext(ctx, "partner deleted",
		"partner_id", partnerID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// AuditTrail returns the partner's audit events, newest first.
func (s *Service) AuditTrail(ctx context.Context, partnerID id.PartnerID) ([]audit.Event, error) {
	events, err := s.auditor.List(ctx, partnerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load audit trail")
	}
	return events, nil
}

func (s *Service) audit(ctx context.Context, action audit.Action, partnerID id.PartnerID, detail string) error {
	err := s.auditor.Emit(ctx, audit.Event{Action: action, PartnerID: partnerID, Detail: detail})
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write audit trail")
}

func verificationOutcome(isVerified bool) string {
	if isVerified {
		return "verified"
	}
	return "not verified"
}

func (s *Service) parseVAT(country, raw string) (id.CountryCode, string, error) {
	cc, err := id.ParseCountryCode(country)
	if err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeValidation, "invalid country code")
	}
	vatNumber := identifier.NormalizeVAT(cc.String(), raw)
	if vatNumber == "" {
		return "", "", dErrors.New(dErrors.CodeValidation, "vat_number is required")
	}
	if len(vatNumber) > models.MaxVATNumberLength {
		return "", "", dErrors.New(dErrors.CodeValidation, "vat_number is too long")
	}
	if s.validator.HasSpecificRule(cc.String()) && !s.validator.Validate(cc.String(), vatNumber).IsStructurallyValid {
		return "", "", dErrors.New(dErrors.CodeValidation, "VAT number has an invalid format for "+cc.String())
	}
	return cc, vatNumber, nil
}

// parseContacts de-duplicates contact entries and checks that every entry
// that is not a subscriber ID is a valid e-mail address.
func parseContacts(raw []string) ([]string, error) {
	contacts := pstrings.DedupeAndTrimLower(raw)
	if err := models.ValidateContacts(contacts); err != nil {
		return nil, err
	}
	for _, entry := range contacts {
		if _, err := id.ParseSubscriberID(entry); err == nil {
			continue
		}
		if _, err := submodels.ParseEmail(entry); err != nil {
			return nil, err
		}
	}
	return contacts, nil
}

// resolveContacts maps subscriber IDs and e-mail addresses to subscriber IDs.
// Unknown IDs are skipped; new addresses become subscribers.
func (s *Service) resolveContacts(ctx context.Context, contacts []string) ([]id.SubscriberID, error) {
	out := make([]id.SubscriberID, 0, len(contacts))
	seen := make(map[id.SubscriberID]bool, len(contacts))
	for _, entry := range contacts {
		var subscriberID id.SubscriberID
		if parsed, err := id.ParseSubscriberID(entry); err == nil {
			sub, err := s.subscribers.Get(ctx, parsed)
			if err != nil {
				if dErrors.HasCode(err, dErrors.CodeNotFound) {
					s.logger.WarnContext(ctx, "skipping unknown subscriber contact",
						"subscriber_id", entry,
						"request_id", requestcontext.RequestID(ctx),
					)
					continue
				}
				return nil, err
			}
			subscriberID = sub.ID
		} else {
			sub, err := s.subscribers.FindOrCreate(ctx, entry)
			if err != nil {
				return nil, err
			}
			subscriberID = sub.ID
		}
		if !seen[subscriberID] {
			seen[subscriberID] = true
			out = append(out, subscriberID)
		}
	}
	return out, nil
}

func (s *Service) contactsOf(ctx context.Context, partnerID id.PartnerID) ([]models.Contact, error) {
	ids, err := s.store.ListContacts(ctx, partnerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load partner contacts")
	}
	contacts := make([]models.Contact, 0, len(ids))
	for _, subscriberID := range ids {
		sub, err := s.subscribers.Get(ctx, subscriberID)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				continue
			}
			return nil, err
		}
		contacts = append(contacts, models.Contact{SubscriberID: sub.ID, Email: sub.Email})
	}
	return contacts, nil
}

func (s *Service) load(ctx context.Context, partnerID id.PartnerID) (*models.Partner, error) {
	p, err := s.store.FindByID(ctx, partnerID)
	if err != nil {
		return nil, translate(err, "failed to load partner")
	}
	return p, nil
}

func translate(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "partner not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "a partner with this VAT number already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
