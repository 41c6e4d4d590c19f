package domain

import (
	"strings"

	dErrors "partnerdesk/pkg/domain-errors"
)

// CountryCode is an ISO 3166-1 alpha-2 code, always upper case.
//
// Usage: construct via ParseCountryCode at trust boundaries; direct casting
// bypasses normalization.
type CountryCode string

// ParseCountryCode trims and upper-cases s and checks it is two ASCII letters.
//
// Errors: returns CodeInvalidInput when the value is empty or malformed.
func ParseCountryCode(s string) (CountryCode, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "country cannot be empty")
	}
	if len(s) != 2 || !isASCIIUpper(s[0]) || !isASCIIUpper(s[1]) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid country code")
	}
	return CountryCode(s), nil
}

func isASCIIUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

func (c CountryCode) String() string {
	return string(c)
}

// euMemberStates lists the countries VIES answers for.
var euMemberStates = map[CountryCode]bool{
	"AT": true, "BE": true, "BG": true, "HR": true, "CY": true, "CZ": true,
	"DK": true, "EE": true, "FI": true, "FR": true, "DE": true, "GR": true,
	"HU": true, "IE": true, "IT": true, "LV": true, "LT": true, "LU": true,
	"MT": true, "NL": true, "PL": true, "PT": true, "RO": true, "SK": true,
	"SI": true, "ES": true, "SE": true,
}

// IsEU reports whether the country is an EU member state.
func (c CountryCode) IsEU() bool {
	return euMemberStates[c]
}

// EUMemberStates returns the EU member state codes.
func EUMemberStates() []CountryCode {
	out := make([]CountryCode, 0, len(euMemberStates))
	for c := range euMemberStates {
		out = append(out, c)
	}
	return out
}
