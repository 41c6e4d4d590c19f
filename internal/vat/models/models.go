// Package models holds the VAT verification result shared by the service,
// its caches and the HTTP layer.
package models

import (
	"time"

	"partnerdesk/internal/vat/providers"
)

// VerificationResult is the outcome of one orchestrated verification.
//
// Verified is only true when a registry confirmed the registration.
// ManualInputRequired tells the form to let the user type company details.
// Answered is set when a registry replied, positively or not.
type VerificationResult struct {
	CountryCode         string                    `json:"country"`
	VATNumber           string                    `json:"vat_number"`
	Verified            bool                      `json:"vat_verified"`
	VerificationID      string                    `json:"verification_id,omitempty"`
	Company             *providers.CompanyDetails `json:"data,omitempty"`
	Message             string                    `json:"message"`
	ManualInputRequired bool                      `json:"manual_input_required"`
	Answered            bool                      `json:"registry_answered"`
	StructurallyValid   bool                      `json:"structurally_valid"`
	ProviderID          string                    `json:"provider,omitempty"`
	CheckedAt           time.Time                 `json:"checked_at"`
}

// FullVATNumber is the country prefix followed by the number.
func (r *VerificationResult) FullVATNumber() string {
	return r.CountryCode + r.VATNumber
}

// CacheKey identifies a result independent of how the number was typed.
func CacheKey(country, normalizedVAT string) string {
	return country + ":" + normalizedVAT
}
