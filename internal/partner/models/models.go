package models

import (
	"regexp"
	"strings"
	"time"

	"partnerdesk/internal/vat/domain/history"
	id "partnerdesk/pkg/domain"
)

const (
	MaxContacts           = 10
	MaxVATNumberLength    = 20
	MaxAdditionalInfo     = 200
	MaxNameLength         = 100
	MaxAddressLength      = 100
	MaxApartmentLength    = 10
	MaxPostalCodeLength   = 10
	MaxVerificationIDSize = 100
)

// Verification history messages.
const (
	MessageVerifiedAtCreation = "verification at partner creation"
	MessageVerifiedByUser     = "verification performed by user"
)

var phonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)

// Partner is a company identified by country and VAT number.
type Partner struct {
	ID               id.PartnerID   `json:"id"`
	Country          id.CountryCode `json:"country_code"`
	VATNumber        string         `json:"vat_number"`
	Name             string         `json:"name"`
	NameVerified     bool           `json:"name_verified"`
	City             string         `json:"city"`
	StreetName       string         `json:"street_name"`
	BuildingNumber   string         `json:"building_number"`
	ApartmentNumber  string         `json:"apartment_number"`
	PostalCode       string         `json:"postal_code"`
	PhoneNumber      string         `json:"phone_number"`
	AdditionalInfo   string         `json:"additional_info"`
	IsVerified       bool           `json:"is_verified"`
	VerificationDate *time.Time     `json:"verification_date"`
	VerificationID   string         `json:"verification_id"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// FullVATNumber returns the VAT number with its country prefix.
func (p *Partner) FullVATNumber() string {
	return p.Country.String() + p.VATNumber
}

// MarkVerification records the outcome of a registry check on the partner.
func (p *Partner) MarkVerification(isVerified bool, verificationID string, at time.Time) {
	p.IsVerified = isVerified
	p.VerificationID = verificationID
	verifiedAt := at
	p.VerificationDate = &verifiedAt
	p.UpdatedAt = at
}

// Contact is a subscriber e-mail attached to a partner.
type Contact struct {
	SubscriberID id.SubscriberID `json:"id"`
	Email        string          `json:"email"`
}

// View is a partner with its contacts and most recent verification events.
type View struct {
	Partner  *Partner
	Contacts []Contact
	History  []history.Event
}

// Address groups the editable address and contact fields.
type Address struct {
	Name            string
	City            string
	StreetName      string
	BuildingNumber  string
	ApartmentNumber string
	PostalCode      string
	PhoneNumber     string
	AdditionalInfo  string
}

// CreateCommand carries the fields of a new partner. Contacts hold subscriber
// IDs or e-mail addresses.
type CreateCommand struct {
	Country        string
	VATNumber      string
	Address        Address
	NameVerified   bool
	VerificationID string
	Contacts       []string
}

// UpdateCommand changes the fields that are set. Contacts always replace the
// current list; nil clears it.
type UpdateCommand struct {
	Name            *string
	City            *string
	StreetName      *string
	BuildingNumber  *string
	ApartmentNumber *string
	PostalCode      *string
	PhoneNumber     *string
	AdditionalInfo  *string
	Contacts        []string
}

// Filter narrows the partner list.
type Filter struct {
	Search  string
	Country id.CountryCode
	Status  id.VerificationStatus
}

// Matches applies the filter to one partner.
func (f Filter) Matches(p *Partner) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
		return false
	}
	if f.Country != "" && p.Country != f.Country {
		return false
	}
	return f.Status.Matches(p.IsVerified)
}

// ListPage is one page of the partner list.
type ListPage struct {
	Partners    []*Partner
	CurrentPage int
	TotalPages  int
	TotalCount  int
}

// IsValidPhone reports whether phone is empty or a 9-15 digit number with an
// optional leading "+".
func IsValidPhone(phone string) bool {
	return phone == "" || phonePattern.MatchString(phone)
}
