package editsession

import (
	"sync"
	"time"

	"partnerdesk/internal/vat/domain/history"
	id "partnerdesk/pkg/domain"
)

// Session is one open partner edit form. It owns the verification history
// shown in that form; mu guards history and lastUsed.
type Session struct {
	ID        id.SessionID
	PartnerID id.PartnerID
	Country   string
	VATNumber string
	OpenedAt  time.Time

	mu        sync.Mutex
	history   *history.History
	lastUsed  time.Time
	verifying bool
	closed    bool
}

// Window is the visible slice of a session's history.
type Window struct {
	SessionID  id.SessionID           `json:"session_id"`
	PartnerID  id.PartnerID           `json:"partner_id"`
	Events     []history.Event        `json:"events"`
	Page       history.PageDescriptor `json:"page"`
	TotalCount int                    `json:"total_count"`
}

func (s *Session) window(events []history.Event) *Window {
	return &Window{
		SessionID:  s.ID,
		PartnerID:  s.PartnerID,
		Events:     events,
		Page:       s.history.Descriptor(),
		TotalCount: s.history.Len(),
	}
}

// expired reports whether the session sat untouched for longer than ttl.
// A session with a re-verification in flight never expires.
func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ttl > 0 && !s.verifying && now.Sub(s.lastUsed) > ttl
}

// beginVerify marks the session busy. It fails when another re-verification
// is running or the session was closed.
func (s *Session) beginVerify(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.verifying || s.closed {
		return false
	}
	s.verifying = true
	s.lastUsed = now
	return true
}

func (s *Session) endVerify() {
	s.mu.Lock()
	s.verifying = false
	s.mu.Unlock()
}
