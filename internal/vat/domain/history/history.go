// Package history keeps a newest-first, paginated window over VAT
// verification events.
//
// A History is owned by exactly one edit session and is not safe for
// concurrent use; the owner serialises access. Every operation is defined for
// every input: page numbers are clamped and a non-positive page size means 1.
package history

import (
	"time"

	"partnerdesk/pkg/platform/paging"
)

// Event is one registry check result. Events are values and never mutated
// after creation.
type Event struct {
	VerifiedAt     time.Time `json:"verification_date"`
	VerificationID string    `json:"verification_id"`
	IsVerified     bool      `json:"is_verified"`
	Message        string    `json:"message,omitempty"`
}

// PageDescriptor is what a caller needs to render pagination controls.
type PageDescriptor struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

// HasControls reports whether there is more than one page to navigate.
func (d PageDescriptor) HasControls() bool {
	return d.TotalPages > 1
}

// History holds events in insertion order, index 0 being the newest.
//
// Invariant: 1 <= currentPage <= totalPages, totalPages >= 1.
type History struct {
	events      []Event
	pageSize    int
	currentPage int
	totalPages  int
}

// New returns an empty history.
func New(pageSize int) *History {
	h := &History{}
	h.Seed(nil, pageSize)
	return h
}

// Seed replaces the events with a copy of events and shows page 1.
func (h *History) Seed(events []Event, pageSize int) {
	h.events = append([]Event(nil), events...)
	h.pageSize = paging.NormalizeSize(pageSize)
	h.currentPage = 1
	h.recompute()
}

// Prepend inserts event as the newest entry and shows page 1 so it is
// visible immediately. Existing order is kept as is.
func (h *History) Prepend(event Event) {
	h.events = append(h.events, Event{})
	copy(h.events[1:], h.events)
	h.events[0] = event
	h.currentPage = 1
	h.recompute()
}

// Page clamps n into [1, TotalPages], makes it current and returns a copy of
// that page's events. An empty history returns an empty, non-nil slice.
func (h *History) Page(n int) []Event {
	h.currentPage = paging.Clamp(n, h.totalPages)
	start, end := paging.Bounds(h.currentPage, h.pageSize, len(h.events))
	out := make([]Event, end-start)
	copy(out, h.events[start:end])
	return out
}

// Current returns the events on the current page without changing it.
func (h *History) Current() []Event {
	return h.Page(h.currentPage)
}

func (h *History) Descriptor() PageDescriptor {
	return PageDescriptor{CurrentPage: h.currentPage, TotalPages: h.totalPages}
}

func (h *History) PageSize() int {
	return h.pageSize
}

func (h *History) Len() int {
	return len(h.events)
}

// Events returns a copy of all events, newest first.
func (h *History) Events() []Event {
	return append([]Event(nil), h.events...)
}

func (h *History) recompute() {
	h.totalPages = paging.TotalPages(len(h.events), h.pageSize)
	h.currentPage = paging.Clamp(h.currentPage, h.totalPages)
}
