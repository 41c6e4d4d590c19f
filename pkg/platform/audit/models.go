// Package audit records who changed which partner and when.
package audit

import (
	"context"
	"time"

	id "partnerdesk/pkg/domain"
)

// Category separates events that must be kept from routine activity.
type Category string

const (
	// CategoryCompliance covers records whose loss matters: partners entering
	// or leaving the register.
	CategoryCompliance Category = "compliance"
	// CategoryOperations covers routine edits and re-verifications.
	CategoryOperations Category = "operations"
)

type Action string

const (
	ActionPartnerCreated       Action = "partner_created"
	ActionPartnerUpdated       Action = "partner_updated"
	ActionPartnerDeleted       Action = "partner_deleted"
	ActionVerificationRecorded Action = "verification_recorded"
)

var actionCategories = map[Action]Category{
	ActionPartnerCreated: CategoryCompliance,
	ActionPartnerDeleted: CategoryCompliance,
}

// Category returns the action's category. Unlisted actions are operations.
func (a Action) Category() Category {
	if c, ok := actionCategories[a]; ok {
		return c
	}
	return CategoryOperations
}

// Event is one audited change. ActorID is the authenticated user, empty for
// system actions.
type Event struct {
	Timestamp time.Time    `json:"timestamp"`
	Action    Action       `json:"action"`
	PartnerID id.PartnerID `json:"partner_id"`
	ActorID   string       `json:"actor_id,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	Detail    string       `json:"detail,omitempty"`
}

// Store persists events. Implementations join the caller's transaction when
// one is present in ctx.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByPartner(ctx context.Context, partnerID id.PartnerID) ([]Event, error)
}
