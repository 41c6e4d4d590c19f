// Package domain holds the domain primitives shared across bounded contexts:
// typed identifiers and small validated value types.
//
// Construct values with the Parse* functions at trust boundaries (handlers,
// store scans); direct conversion bypasses validation.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "partnerdesk/pkg/domain-errors"
)

// Typed identifiers. Distinct types keep a PartnerID from being passed where a
// SubscriberID is expected.
type (
	UserID       uuid.UUID
	PartnerID    uuid.UUID
	SubscriberID uuid.UUID
	SessionID    uuid.UUID
)

func parseUUID(s, kind string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	if len(s) > 64 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	return u, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

func ParsePartnerID(s string) (PartnerID, error) {
	u, err := parseUUID(s, "partner id")
	return PartnerID(u), err
}

func ParseSubscriberID(s string) (SubscriberID, error) {
	u, err := parseUUID(s, "subscriber id")
	return SubscriberID(u), err
}

func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session id")
	return SessionID(u), err
}

func NewUserID() UserID             { return UserID(uuid.New()) }
func NewPartnerID() PartnerID       { return PartnerID(uuid.New()) }
func NewSubscriberID() SubscriberID { return SubscriberID(uuid.New()) }
func NewSessionID() SessionID       { return SessionID(uuid.New()) }

func (id UserID) String() string       { return uuid.UUID(id).String() }
func (id PartnerID) String() string    { return uuid.UUID(id).String() }
func (id SubscriberID) String() string { return uuid.UUID(id).String() }
func (id SessionID) String() string    { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id PartnerID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id SubscriberID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id PartnerID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id SubscriberID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id SessionID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }

func (id *PartnerID) UnmarshalText(b []byte) error {
	parsed, err := ParsePartnerID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *SubscriberID) UnmarshalText(b []byte) error {
	parsed, err := ParseSubscriberID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *SessionID) UnmarshalText(b []byte) error {
	parsed, err := ParseSessionID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
