// Package editsession keeps the per-form state of partner editing: each open
// form gets its own session holding a paginated verification history, and
// re-verifications prepend to that history.
package editsession

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	partnermodels "partnerdesk/internal/partner/models"
	"partnerdesk/internal/platform/metrics"
	"partnerdesk/internal/vat/domain/history"
	vatmodels "partnerdesk/internal/vat/models"
	id "partnerdesk/pkg/domain"
	dErrors "partnerdesk/pkg/domain-errors"
	"partnerdesk/pkg/requestcontext"
)

const (
	defaultPageSize = 5
	defaultIdleTTL  = 30 * time.Minute
)

// Partners is the slice of the partner service a session needs.
type Partners interface {
	Get(ctx context.Context, partnerID id.PartnerID) (*partnermodels.View, error)
	RecordVerification(ctx context.Context, partnerID id.PartnerID, isVerified bool, verificationID string) (history.Event, error)
}

// Verifier performs an uncached registry check.
type Verifier interface {
	Reverify(ctx context.Context, country, rawVAT string) (*vatmodels.VerificationResult, error)
}

// ReverifyOutcome is the registry result plus the history window after it.
// Event is nil when the registry did not answer and nothing was recorded.
type ReverifyOutcome struct {
	Result *vatmodels.VerificationResult
	Event  *history.Event
	Window *Window
}

type Manager struct {
	partners Partners
	verifier Verifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	pageSize int
	idleTTL  time.Duration

	mu       sync.RWMutex
	sessions map[id.SessionID]*Session
}

type Option func(*Manager)

func WithPageSize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.pageSize = n
		}
	}
}

// WithIdleTTL sets how long an untouched session survives. Zero disables expiry.
func WithIdleTTL(d time.Duration) Option {
	return func(m *Manager) { m.idleTTL = d }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func NewManager(partners Partners, verifier Verifier, opts ...Option) *Manager {
	m := &Manager{
		partners: partners,
		verifier: verifier,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		pageSize: defaultPageSize,
		idleTTL:  defaultIdleTTL,
		sessions: make(map[id.SessionID]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open starts a session for the partner, seeded with its recent history.
func (m *Manager) Open(ctx context.Context, partnerID id.PartnerID) (*Window, error) {
	view, err := m.partners.Get(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	sess := &Session{
		ID:        id.NewSessionID(),
		PartnerID: partnerID,
		Country:   view.Partner.Country.String(),
		VATNumber: view.Partner.VATNumber,
		OpenedAt:  now,
		lastUsed:  now,
		history:   history.New(m.pageSize),
	}
	sess.history.Seed(view.History, m.pageSize)

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	open := len(m.sessions)
	m.mu.Unlock()
	m.metrics.SetEditSessionsOpen(open)

	m.logger.InfoContext(ctx, "edit session opened",
		"session_id", sess.ID.String(),
		"partner_id", partnerID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.window(sess.history.Page(1)), nil
}

// Page moves the session to page n, clamped into range.
func (m *Manager) Page(ctx context.Context, sessionID id.SessionID, n int) (*Window, error) {
	sess, err := m.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return nil, errSessionNotFound()
	}
	sess.lastUsed = requestcontext.Now(ctx)
	return sess.window(sess.history.Page(n)), nil
}

// Reverify checks the partner's VAT number against the registry again. When
// the registry answers, the outcome is recorded on the partner and the
// returned event becomes the newest history entry, with page 1 shown.
// Only one re-verification per session runs at a time.
func (m *Manager) Reverify(ctx context.Context, sessionID id.SessionID) (*ReverifyOutcome, error) {
	sess, err := m.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.beginVerify(requestcontext.Now(ctx)) {
		return nil, dErrors.New(dErrors.CodeConflict, "re-verification already in progress")
	}
	defer sess.endVerify()

	result, err := m.verifier.Reverify(ctx, sess.Country, sess.VATNumber)
	if err != nil {
		return nil, err
	}
	outcome := &ReverifyOutcome{Result: result}

	if !result.Answered {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		outcome.Window = sess.window(sess.history.Current())
		return outcome, nil
	}

	event, err := m.partners.RecordVerification(ctx, sess.PartnerID, result.Verified, result.VerificationID)
	if err != nil {
		return nil, err
	}
	outcome.Event = &event

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.closed {
		sess.history.Prepend(event)
	}
	outcome.Window = sess.window(sess.history.Page(1))

	m.logger.InfoContext(ctx, "edit session re-verified",
		"session_id", sess.ID.String(),
		"partner_id", sess.PartnerID.String(),
		"verified", result.Verified,
		"request_id", requestcontext.RequestID(ctx),
	)
	return outcome, nil
}

// Close discards the session.
func (m *Manager) Close(ctx context.Context, sessionID id.SessionID) error {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	open := len(m.sessions)
	m.mu.Unlock()
	if !ok {
		return errSessionNotFound()
	}
	m.metrics.SetEditSessionsOpen(open)

	sess.mu.Lock()
	sess.closed = true
	sess.mu.Unlock()
	return nil
}

// Sweep discards sessions idle for longer than the TTL and returns how many
// were removed. Sessions with a re-verification in flight are kept.
func (m *Manager) Sweep(now time.Time) int {
	if m.idleTTL <= 0 {
		return 0
	}

	m.mu.Lock()
	var expired []*Session
	for sid, sess := range m.sessions {
		if sess.expired(now, m.idleTTL) {
			delete(m.sessions, sid)
			expired = append(expired, sess)
		}
	}
	open := len(m.sessions)
	m.mu.Unlock()

	for _, sess := range expired {
		sess.mu.Lock()
		sess.closed = true
		sess.mu.Unlock()
	}
	m.metrics.SetEditSessionsOpen(open)
	m.metrics.AddEditSessionsExpired(len(expired))
	return len(expired)
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// lookup returns an open session, treating one past its idle TTL as gone.
func (m *Manager) lookup(ctx context.Context, sessionID id.SessionID) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, errSessionNotFound()
	}
	if sess.expired(requestcontext.Now(ctx), m.idleTTL) {
		_ = m.Close(ctx, sessionID)
		m.metrics.AddEditSessionsExpired(1)
		return nil, errSessionNotFound()
	}
	return sess, nil
}

func errSessionNotFound() error {
	return dErrors.New(dErrors.CodeNotFound, "edit session not found or expired")
}
