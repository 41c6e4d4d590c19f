package vies

import (
	"strings"
	"unicode"

	"partnerdesk/internal/vat/providers"
)

// ParseAddress splits a VIES address, "STREET NO" on the first line and
// "CODE CITY" on the second. Member states format addresses freely, so the
// split is heuristic: the building number is the last street token when it
// contains a digit, the postal code the first city token when it does.
func ParseAddress(address string) providers.CompanyDetails {
	var out providers.CompanyDetails
	var lines []string
	for _, l := range strings.Split(address, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return out
	}

	street := strings.Fields(lines[0])
	if len(street) > 1 && hasDigit(street[len(street)-1]) {
		out.BuildingNumber = street[len(street)-1]
		out.StreetName = strings.Join(street[:len(street)-1], " ")
	} else {
		out.StreetName = strings.Join(street, " ")
	}

	if len(lines) > 1 {
		city := strings.Fields(lines[1])
		if len(city) >= 2 && hasDigit(city[0]) {
			out.PostalCode = city[0]
			out.City = strings.Join(city[1:], " ")
		} else {
			out.City = strings.Join(city, " ")
		}
	}
	return out
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
