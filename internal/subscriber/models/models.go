package models

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	id "partnerdesk/pkg/domain"
	dErrors "partnerdesk/pkg/domain-errors"
)

const maxEmailLength = 254

// Subscriber is an e-mail address that partners reference as contacts.
type Subscriber struct {
	ID                id.SubscriberID `json:"id"`
	Email             string          `json:"email"`
	FirstName         string          `json:"first_name"`
	LastName          string          `json:"last_name"`
	NewsletterConsent bool            `json:"newsletter_consent"`
	CreatedAt         time.Time       `json:"created_at"`
}

// LookupPage is one page of a subscriber search.
type LookupPage struct {
	Results []*Subscriber `json:"results"`
	HasMore bool          `json:"has_more"`
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseEmail normalizes email and checks it is a syntactically valid address.
func ParseEmail(email string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return "", dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if len(email) > maxEmailLength || !govalidator.IsEmail(email) {
		return "", dErrors.New(dErrors.CodeValidation, "invalid email address: "+email)
	}
	return email, nil
}

// Matches reports whether the lower-cased query occurs in the e-mail or name.
func (s *Subscriber) Matches(query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Email), query) ||
		strings.Contains(strings.ToLower(s.FirstName), query) ||
		strings.Contains(strings.ToLower(s.LastName), query)
}
