package mf

import (
	"strings"

	"partnerdesk/internal/vat/providers"
	pstrings "partnerdesk/pkg/platform/strings"
)

// ParseAddress splits a white-list address of the form "STREET NO, CODE CITY".
// Name is left empty. "12/4" style numbers are split into building and
// apartment. A second segment whose first token is not an NN-NNN postal code
// is taken whole as the city.
func ParseAddress(address string) providers.CompanyDetails {
	var out providers.CompanyDetails
	address = strings.TrimSpace(address)
	if address == "" {
		return out
	}

	streetPart, cityPart, hasCity := strings.Cut(address, ",")
	fields := strings.Fields(streetPart)
	switch {
	case len(fields) > 1:
		out.StreetName = strings.Join(fields[:len(fields)-1], " ")
		out.BuildingNumber = fields[len(fields)-1]
	case len(fields) == 1:
		out.StreetName = fields[0]
	}
	if building, apartment, ok := strings.Cut(out.BuildingNumber, "/"); ok {
		out.BuildingNumber, out.ApartmentNumber = building, apartment
	}

	if hasCity {
		cityFields := strings.Fields(cityPart)
		if len(cityFields) > 1 && IsPostalCode(cityFields[0]) {
			out.PostalCode = cityFields[0]
			out.City = strings.Join(cityFields[1:], " ")
		} else {
			out.City = strings.Join(cityFields, " ")
		}
	}

	out.StreetName = pstrings.Capitalize(out.StreetName)
	out.City = pstrings.Capitalize(out.City)
	return out
}

// IsPostalCode reports whether s looks like a Polish postal code (NN-NNN).
func IsPostalCode(s string) bool {
	if len(s) != 6 || s[2] != '-' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if i == 2 {
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
