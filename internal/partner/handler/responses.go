package handler

import (
	"time"

	"partnerdesk/internal/partner/models"
	"partnerdesk/internal/vat/domain/history"
	vatmodels "partnerdesk/internal/vat/models"
	"partnerdesk/pkg/platform/audit"
)

// VerifyVATData mirrors what the partner form fills in after a lookup.
type VerifyVATData struct {
	Name                string `json:"name"`
	City                string `json:"city"`
	StreetName          string `json:"street_name"`
	BuildingNumber      string `json:"building_number"`
	ApartmentNumber     string `json:"apartment_number"`
	PostalCode          string `json:"postal_code"`
	ManualInputRequired bool   `json:"manual_input_required"`
	IsVATRegistered     bool   `json:"is_vat_registered"`
}

// VerifyVATResponse always reports success so the form can continue with
// manual entry; vat_verified carries the registry outcome.
type VerifyVATResponse struct {
	Success           bool          `json:"success"`
	VATVerified       bool          `json:"vat_verified"`
	Data              VerifyVATData `json:"data"`
	Message           string        `json:"message"`
	VerificationID    string        `json:"verification_id"`
	StructurallyValid bool          `json:"structurally_valid"`
	Provider          string        `json:"provider,omitempty"`
}

func toVerifyVATResponse(r *vatmodels.VerificationResult) VerifyVATResponse {
	resp := VerifyVATResponse{
		Success:           true,
		VATVerified:       r.Verified,
		Message:           r.Message,
		VerificationID:    r.VerificationID,
		StructurallyValid: r.StructurallyValid,
		Provider:          r.ProviderID,
		Data: VerifyVATData{
			ManualInputRequired: r.ManualInputRequired,
			IsVATRegistered:     r.Verified,
		},
	}
	if r.Company != nil {
		resp.Data.Name = r.Company.Name
		resp.Data.City = r.Company.City
		resp.Data.StreetName = r.Company.StreetName
		resp.Data.BuildingNumber = r.Company.BuildingNumber
		resp.Data.ApartmentNumber = r.Company.ApartmentNumber
		resp.Data.PostalCode = r.Company.PostalCode
	}
	return resp
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type CreatePartnerResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	PartnerID string `json:"partner_id"`
}

type ContactResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// PartnerResponse is the partner record as returned by /get and /list.
type PartnerResponse struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	NameVerified        bool              `json:"name_verified"`
	CountryCode         string            `json:"country_code"`
	VATNumber           string            `json:"vat_number"`
	FullVATNumber       string            `json:"full_vat_number"`
	City                string            `json:"city"`
	StreetName          string            `json:"street_name"`
	BuildingNumber      string            `json:"building_number"`
	ApartmentNumber     string            `json:"apartment_number"`
	PostalCode          string            `json:"postal_code"`
	PhoneNumber         string            `json:"phone_number"`
	AdditionalInfo      string            `json:"additional_info"`
	IsVerified          bool              `json:"is_verified"`
	VerificationDate    *time.Time        `json:"verification_date"`
	VerificationID      string            `json:"verification_id"`
	VerificationHistory []history.Event   `json:"verification_history,omitempty"`
	Emails              []ContactResponse `json:"emails,omitempty"`
}

func toPartnerResponse(p *models.Partner) PartnerResponse {
	return PartnerResponse{
		ID:               p.ID.String(),
		Name:             p.Name,
		NameVerified:     p.NameVerified,
		CountryCode:      p.Country.String(),
		VATNumber:        p.VATNumber,
		FullVATNumber:    p.FullVATNumber(),
		City:             p.City,
		StreetName:       p.StreetName,
		BuildingNumber:   p.BuildingNumber,
		ApartmentNumber:  p.ApartmentNumber,
		PostalCode:       p.PostalCode,
		PhoneNumber:      p.PhoneNumber,
		AdditionalInfo:   p.AdditionalInfo,
		IsVerified:       p.IsVerified,
		VerificationDate: p.VerificationDate,
		VerificationID:   p.VerificationID,
	}
}

type GetPartnerResponse struct {
	Success bool            `json:"success"`
	Data    PartnerResponse `json:"data"`
}

func toGetPartnerResponse(v *models.View) GetPartnerResponse {
	data := toPartnerResponse(v.Partner)
	data.VerificationHistory = nonNilEvents(v.History)
	data.Emails = make([]ContactResponse, 0, len(v.Contacts))
	for _, c := range v.Contacts {
		data.Emails = append(data.Emails, ContactResponse{ID: c.SubscriberID.String(), Email: c.Email})
	}
	return GetPartnerResponse{Success: true, Data: data}
}

type UpdateVerificationResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Event   history.Event   `json:"event"`
	History []history.Event `json:"history"`
}

type ListPartnersResponse struct {
	Results     []PartnerResponse `json:"results"`
	CurrentPage int               `json:"current_page"`
	TotalPages  int               `json:"total_pages"`
	TotalCount  int               `json:"total_count"`
}

func toListResponse(page *models.ListPage) ListPartnersResponse {
	resp := ListPartnersResponse{
		Results:     make([]PartnerResponse, 0, len(page.Partners)),
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		TotalCount:  page.TotalCount,
	}
	for _, p := range page.Partners {
		resp.Results = append(resp.Results, toPartnerResponse(p))
	}
	return resp
}

func nonNilEvents(events []history.Event) []history.Event {
	if events == nil {
		return []history.Event{}
	}
	return events
}

type AuditTrailResponse struct {
	PartnerID string        `json:"partner_id"`
	Events    []audit.Event `json:"events"`
}
