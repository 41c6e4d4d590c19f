package handler

import (
	"strings"

	"partnerdesk/internal/partner/models"
	dErrors "partnerdesk/pkg/domain-errors"
)

// CreatePartnerRequest is the body of POST /create.
type CreatePartnerRequest struct {
	Country         string   `json:"country"`
	VATNumber       string   `json:"vat_number"`
	Name            string   `json:"name"`
	NameVerified    bool     `json:"name_verified"`
	City            string   `json:"city"`
	StreetName      string   `json:"street_name"`
	BuildingNumber  string   `json:"building_number"`
	ApartmentNumber string   `json:"apartment_number"`
	PostalCode      string   `json:"postal_code"`
	PhoneNumber     string   `json:"phone_number"`
	AdditionalInfo  string   `json:"additional_info"`
	VerificationID  string   `json:"verification_id"`
	EmailContacts   []string `json:"email_contacts"`
}

func (r *CreatePartnerRequest) Normalize() {
	r.Country = strings.TrimSpace(r.Country)
	r.VATNumber = strings.TrimSpace(r.VATNumber)
	r.VerificationID = strings.TrimSpace(r.VerificationID)
}

func (r *CreatePartnerRequest) Validate() error {
	if r.Country == "" {
		return dErrors.New(dErrors.CodeValidation, "country is required")
	}
	if r.VATNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "vat_number is required")
	}
	return nil
}

func (r *CreatePartnerRequest) Command() models.CreateCommand {
	return models.CreateCommand{
		Country:   r.Country,
		VATNumber: r.VATNumber,
		Address: models.Address{
			Name:            r.Name,
			City:            r.City,
			StreetName:      r.StreetName,
			BuildingNumber:  r.BuildingNumber,
			ApartmentNumber: r.ApartmentNumber,
			PostalCode:      r.PostalCode,
			PhoneNumber:     r.PhoneNumber,
			AdditionalInfo:  r.AdditionalInfo,
		},
		NameVerified:   r.NameVerified,
		VerificationID: r.VerificationID,
		Contacts:       r.EmailContacts,
	}
}

// UpdatePartnerRequest is the body of POST /update/{partnerID}. Absent fields
// keep their value; email_contacts always replaces the contact list.
type UpdatePartnerRequest struct {
	Name            *string  `json:"name"`
	City            *string  `json:"city"`
	StreetName      *string  `json:"street_name"`
	BuildingNumber  *string  `json:"building_number"`
	ApartmentNumber *string  `json:"apartment_number"`
	PostalCode      *string  `json:"postal_code"`
	PhoneNumber     *string  `json:"phone_number"`
	AdditionalInfo  *string  `json:"additional_info"`
	EmailContacts   []string `json:"email_contacts"`
}

func (r *UpdatePartnerRequest) Command() models.UpdateCommand {
	return models.UpdateCommand{
		Name:            r.Name,
		City:            r.City,
		StreetName:      r.StreetName,
		BuildingNumber:  r.BuildingNumber,
		ApartmentNumber: r.ApartmentNumber,
		PostalCode:      r.PostalCode,
		PhoneNumber:     r.PhoneNumber,
		AdditionalInfo:  r.AdditionalInfo,
		Contacts:        r.EmailContacts,
	}
}

// UpdateVerificationRequest is the body of POST /update-verification/{partnerID}.
type UpdateVerificationRequest struct {
	IsVerified     bool   `json:"is_verified"`
	VerificationID string `json:"verification_id"`
}

func (r *UpdateVerificationRequest) Validate() error {
	if len(r.VerificationID) > models.MaxVerificationIDSize {
		return dErrors.New(dErrors.CodeValidation, "verification_id is too long")
	}
	return nil
}
