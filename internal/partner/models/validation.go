package models

import (
	"strings"
	"unicode/utf8"

	dErrors "partnerdesk/pkg/domain-errors"
)

// Normalize trims every field.
func (a *Address) Normalize() {
	a.Name = strings.TrimSpace(a.Name)
	a.City = strings.TrimSpace(a.City)
	a.StreetName = strings.TrimSpace(a.StreetName)
	a.BuildingNumber = strings.TrimSpace(a.BuildingNumber)
	a.ApartmentNumber = strings.TrimSpace(a.ApartmentNumber)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.PhoneNumber = strings.TrimSpace(a.PhoneNumber)
	a.AdditionalInfo = strings.TrimSpace(a.AdditionalInfo)
}

// Validate checks field lengths and the phone format.
func (a *Address) Validate() error {
	checks := []struct {
		field string
		value string
		max   int
	}{
		{"name", a.Name, MaxNameLength},
		{"city", a.City, MaxAddressLength},
		{"street_name", a.StreetName, MaxAddressLength},
		{"building_number", a.BuildingNumber, MaxAddressLength},
		{"apartment_number", a.ApartmentNumber, MaxApartmentLength},
		{"postal_code", a.PostalCode, MaxPostalCodeLength},
		{"additional_info", a.AdditionalInfo, MaxAdditionalInfo},
	}
	for _, c := range checks {
		if utf8.RuneCountInString(c.value) > c.max {
			return dErrors.New(dErrors.CodeValidation, c.field+" is too long")
		}
	}
	if !IsValidPhone(a.PhoneNumber) {
		return dErrors.New(dErrors.CodeValidation, "phone_number must have 9 to 15 digits with an optional leading +")
	}
	return nil
}

// Apply copies the set fields of u onto p's editable fields.
func (u *UpdateCommand) Apply(p *Partner) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&p.Name, u.Name)
	set(&p.City, u.City)
	set(&p.StreetName, u.StreetName)
	set(&p.BuildingNumber, u.BuildingNumber)
	set(&p.ApartmentNumber, u.ApartmentNumber)
	set(&p.PostalCode, u.PostalCode)
	set(&p.PhoneNumber, u.PhoneNumber)
	set(&p.AdditionalInfo, u.AdditionalInfo)
}

// AddressOf returns the editable fields of p.
func AddressOf(p *Partner) Address {
	return Address{
		Name:            p.Name,
		City:            p.City,
		StreetName:      p.StreetName,
		BuildingNumber:  p.BuildingNumber,
		ApartmentNumber: p.ApartmentNumber,
		PostalCode:      p.PostalCode,
		PhoneNumber:     p.PhoneNumber,
		AdditionalInfo:  p.AdditionalInfo,
	}
}

// ValidateContacts enforces the contact limit after de-duplication.
func ValidateContacts(contacts []string) error {
	if len(contacts) > MaxContacts {
		return dErrors.New(dErrors.CodeValidation, "a partner can have at most 10 e-mail contacts")
	}
	return nil
}
