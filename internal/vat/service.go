// Package vat verifies VAT numbers: structural validation, routing to the
// registry that covers the country, a per-registry circuit breaker and a
// result cache.
package vat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"partnerdesk/internal/vat/domain/identifier"
	"partnerdesk/internal/vat/metrics"
	"partnerdesk/internal/vat/models"
	"partnerdesk/internal/vat/providers"
	id "partnerdesk/pkg/domain"
	dErrors "partnerdesk/pkg/domain-errors"
	"partnerdesk/pkg/platform/circuit"
	"partnerdesk/pkg/platform/sentinel"
	"partnerdesk/pkg/requestcontext"
)

// ResultCache stores verification results. Find returns sentinel.ErrNotFound
// on a miss.
type ResultCache interface {
	Find(ctx context.Context, country, vatNumber string) (*models.VerificationResult, error)
	Save(ctx context.Context, result *models.VerificationResult) error
}

const (
	MessageVerified       = "VAT number verified"
	MessageNotActive      = "VAT number is not active in the registry"
	MessageUnavailable    = "VAT verification unavailable for country"
	MessageCircuitOpen    = "Registry is temporarily unavailable, enter company details manually"
	messageGenericFailure = "VAT verification failed"
)

// Service orchestrates a single verification.
type Service struct {
	validator   *identifier.Validator
	registry    *providers.ProviderRegistry
	cache       ResultCache
	metrics     *metrics.Metrics
	logger      *slog.Logger
	breakerOpts []circuit.Option

	mu       sync.Mutex
	breakers map[string]*circuit.Breaker
}

type Option func(*Service)

func WithCache(c ResultCache) Option {
	return func(s *Service) { s.cache = c }
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

// WithBreakerOptions configures the breaker created for each provider.
func WithBreakerOptions(opts ...circuit.Option) Option {
	return func(s *Service) { s.breakerOpts = opts }
}

func NewService(registry *providers.ProviderRegistry, opts ...Option) *Service {
	s := &Service{
		validator: identifier.NewValidator(nil),
		registry:  registry,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		breakers:  make(map[string]*circuit.Breaker),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify returns a cached result when one is fresh, otherwise asks the registry.
func (s *Service) Verify(ctx context.Context, country, rawVAT string) (*models.VerificationResult, error) {
	return s.verify(ctx, country, rawVAT, true)
}

// Reverify always asks the registry and refreshes the cache.
func (s *Service) Reverify(ctx context.Context, country, rawVAT string) (*models.VerificationResult, error) {
	return s.verify(ctx, country, rawVAT, false)
}

// Normalize returns the country code and the normalized VAT number without
// country prefix, as stored on partners.
func (s *Service) Normalize(country, rawVAT string) (id.CountryCode, string, error) {
	if strings.TrimSpace(country) == "" || strings.TrimSpace(rawVAT) == "" {
		return "", "", dErrors.New(dErrors.CodeValidation, "country and VAT number are required")
	}
	cc, err := id.ParseCountryCode(country)
	if err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeValidation, "invalid country code")
	}
	normalized := identifier.NormalizeVAT(cc.String(), rawVAT)
	if normalized == "" {
		return "", "", dErrors.New(dErrors.CodeValidation, "VAT number is empty after normalization")
	}
	return cc, normalized, nil
}

func (s *Service) verify(ctx context.Context, country, rawVAT string, useCache bool) (*models.VerificationResult, error) {
	cc, normalized, err := s.Normalize(country, rawVAT)
	if err != nil {
		return nil, err
	}

	check := s.validator.Validate(cc.String(), normalized)
	if !check.IsStructurallyValid && s.validator.HasSpecificRule(cc.String()) {
		return nil, dErrors.New(dErrors.CodeValidation, "VAT number has an invalid format for "+cc.String())
	}

	now := requestcontext.Now(ctx)
	base := models.VerificationResult{
		CountryCode:       cc.String(),
		VATNumber:         normalized,
		StructurallyValid: check.IsStructurallyValid,
		CheckedAt:         now,
	}

	provider, ok := s.registry.ForCountry(cc.String())
	if !ok {
		base.Message = MessageUnavailable
		base.ManualInputRequired = true
		return &base, nil
	}
	base.ProviderID = provider.ID()

	if useCache && s.cache != nil {
		cached, err := s.cache.Find(ctx, cc.String(), normalized)
		switch {
		case err == nil:
			s.metrics.IncrementOutcome(provider.ID(), "cached")
			cached.StructurallyValid = check.IsStructurallyValid
			return cached, nil
		case !errors.Is(err, sentinel.ErrNotFound):
			s.logger.WarnContext(ctx, "vat cache lookup failed",
				"error", err,
				"country", cc.String(),
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}

	breaker := s.breakerFor(provider.ID())
	if !breaker.Allow() {
		s.metrics.IncrementOutcome(provider.ID(), "circuit_open")
		base.Message = MessageCircuitOpen
		base.ManualInputRequired = true
		return &base, nil
	}

	start := time.Now()
	evidence, err := provider.Lookup(ctx, providers.Query{
		CountryCode: cc.String(),
		VATNumber:   normalized,
		Date:        now,
	})
	duration := time.Since(start)
	s.metrics.ObserveLookupLatency(provider.ID(), duration)

	if err != nil {
		s.recordProviderError(ctx, breaker, err)
		s.metrics.IncrementOutcome(provider.ID(), "error")
		s.logger.WarnContext(ctx, "vat registry lookup failed",
			"error", err,
			"provider", provider.ID(),
			"country", cc.String(),
			"category", string(providers.GetCategory(err)),
			"duration_ms", duration.Milliseconds(),
			"request_id", requestcontext.RequestID(ctx),
		)
		base.Message = messageForError(err)
		base.ManualInputRequired = true
		base.Answered = providers.GetCategory(err) == providers.ErrorNotFound
		return &base, nil
	}
	s.recordSuccess(ctx, breaker)

	result := base
	result.Answered = true
	result.VerificationID = evidence.VerificationID
	if evidence.Valid {
		company := evidence.Company
		result.Verified = true
		result.Company = &company
		result.Message = MessageVerified
		s.metrics.IncrementOutcome(provider.ID(), "verified")
	} else {
		result.Message = MessageNotActive
		result.ManualInputRequired = true
		s.metrics.IncrementOutcome(provider.ID(), "rejected")
	}

	if s.cache != nil {
		if err := s.cache.Save(ctx, &result); err != nil {
			s.logger.WarnContext(ctx, "vat cache save failed",
				"error", err,
				"country", cc.String(),
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}

	s.logger.InfoContext(ctx, "vat verification completed",
		"provider", provider.ID(),
		"country", cc.String(),
		"verified", result.Verified,
		"duration_ms", duration.Milliseconds(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return &result, nil
}

func (s *Service) breakerFor(providerID string) *circuit.Breaker {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.breakers[providerID]
	if !ok {
		b = circuit.New(providerID, s.breakerOpts...)
		s.breakers[providerID] = b
	}
	return b
}

func (s *Service) recordProviderError(ctx context.Context, b *circuit.Breaker, err error) {
	if !providers.CountsAgainstHealth(err) {
		s.recordSuccess(ctx, b)
		return
	}
	if _, change := b.RecordFailure(); change.Opened {
		s.metrics.SetCircuitOpen(b.Name(), true)
		s.logger.WarnContext(ctx, "vat registry circuit opened", "provider", b.Name())
	}
}

func (s *Service) recordSuccess(ctx context.Context, b *circuit.Breaker) {
	if _, change := b.RecordSuccess(); change.Closed {
		s.metrics.SetCircuitOpen(b.Name(), false)
		s.logger.InfoContext(ctx, "vat registry circuit closed", "provider", b.Name())
	}
}

func messageForError(err error) string {
	switch providers.GetCategory(err) {
	case providers.ErrorNotFound:
		return "No taxpayer is registered under this VAT number"
	case providers.ErrorInvalidInput:
		return "The registry rejected the VAT number format"
	case providers.ErrorTimeout:
		return "The registry did not respond in time"
	case providers.ErrorRateLimited:
		return "The registry is busy, try again later"
	case providers.ErrorProviderOutage:
		return "The registry is unavailable"
	default:
		return messageGenericFailure
	}
}

// ProviderHealth checks every registered provider concurrently. The map holds
// nil for healthy providers.
func (s *Service) ProviderHealth(ctx context.Context) map[string]error {
	all := s.registry.All()
	results := make([]error, len(all))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range all {
		i, p := i, p
		g.Go(func() error {
			results[i] = p.Health(gctx)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]error, len(all))
	for i, p := range all {
		out[p.ID()] = results[i]
	}
	return out
}

// CircuitStates reports the breaker position of every provider used so far.
func (s *Service) CircuitStates() map[string]circuit.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]circuit.State, len(s.breakers))
	for name, b := range s.breakers {
		out[name] = b.State()
	}
	return out
}
