// Package handler exposes partner management and VAT lookup over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"partnerdesk/internal/partner/models"
	"partnerdesk/internal/vat/domain/history"
	vatmodels "partnerdesk/internal/vat/models"
	id "partnerdesk/pkg/domain"
	dErrors "partnerdesk/pkg/domain-errors"
	"partnerdesk/pkg/platform/audit"
	"partnerdesk/pkg/platform/httputil"
	"partnerdesk/pkg/requestcontext"
)

// Service defines the partner operations used by the handler.
type Service interface {
	Create(ctx context.Context, cmd models.CreateCommand) (*models.Partner, error)
	Update(ctx context.Context, partnerID id.PartnerID, cmd models.UpdateCommand) (*models.Partner, error)
	Get(ctx context.Context, partnerID id.PartnerID) (*models.View, error)
	RecentHistory(ctx context.Context, partnerID id.PartnerID) ([]history.Event, error)
	RecordVerification(ctx context.Context, partnerID id.PartnerID, isVerified bool, verificationID string) (history.Event, error)
	List(ctx context.Context, filter models.Filter, page int) (*models.ListPage, error)
	Delete(ctx context.Context, partnerID id.PartnerID) error
	AuditTrail(ctx context.Context, partnerID id.PartnerID) ([]audit.Event, error)
}

// Verifier runs a cached VAT registry check.
type Verifier interface {
	Verify(ctx context.Context, country, rawVAT string) (*vatmodels.VerificationResult, error)
}

type Handler struct {
	service  Service
	verifier Verifier
	logger   *slog.Logger
	// registryLimit guards routes that call out to the VAT registries.
	registryLimit []func(http.Handler) http.Handler
}

type Option func(*Handler)

func WithRegistryLimit(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) { h.registryLimit = append(h.registryLimit, mw) }
}

func New(service Service, verifier Verifier, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, verifier: verifier, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts partner endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.With(h.registryLimit...).Get("/verify-vat", h.HandleVerifyVAT)
	r.Post("/create", h.HandleCreate)
	r.Get("/get/{partnerID}", h.HandleGet)
	r.Post("/update/{partnerID}", h.HandleUpdate)
	r.Post("/update-verification/{partnerID}", h.HandleUpdateVerification)
	r.Delete("/delete/{partnerID}", h.HandleDelete)
	r.Get("/list", h.HandleList)
	r.Get("/audit/{partnerID}", h.HandleAuditTrail)
}

// HandleVerifyVAT handles GET /verify-vat?country=&vat_number=.
func (h *Handler) HandleVerifyVAT(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	result, err := h.verifier.Verify(ctx, q.Get("country"), q.Get("vat_number"))
	if err != nil {
		h.fail(ctx, w, "vat verification failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toVerifyVATResponse(result))
}

// HandleCreate handles POST /create.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreatePartnerRequest](w, r)
	if !ok {
		return
	}

	partner, err := h.service.Create(ctx, req.Command())
	if err != nil {
		h.fail(ctx, w, "create partner failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, CreatePartnerResponse{
		Success:   true,
		Message:   "Partner created",
		PartnerID: partner.ID.String(),
	})
}

// HandleGet handles GET /get/{partnerID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	partnerID, err := id.ParsePartnerID(chi.URLParam(r, "partnerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, err := h.service.Get(ctx, partnerID)
	if err != nil {
		h.fail(ctx, w, "get partner failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toGetPartnerResponse(view))
}

// HandleUpdate handles POST /update/{partnerID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	partnerID, err := id.ParsePartnerID(chi.URLParam(r, "partnerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdatePartnerRequest](w, r)
	if !ok {
		return
	}

	if _, err := h.service.Update(ctx, partnerID, req.Command()); err != nil {
		h.fail(ctx, w, "update partner failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Partner updated"})
}

// HandleUpdateVerification handles POST /update-verification/{partnerID}.
// The response carries the new event and the refreshed recent history.
func (h *Handler) HandleUpdateVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	partnerID, err := id.ParsePartnerID(chi.URLParam(r, "partnerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateVerificationRequest](w, r)
	if !ok {
		return
	}

	event, err := h.service.RecordVerification(ctx, partnerID, req.IsVerified, req.VerificationID)
	if err != nil {
		h.fail(ctx, w, "record verification failed", err)
		return
	}
	recent, err := h.service.RecentHistory(ctx, partnerID)
	if err != nil {
		h.fail(ctx, w, "load verification history failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, UpdateVerificationResponse{
		Success: true,
		Message: "Verification status updated",
		Event:   event,
		History: nonNilEvents(recent),
	})
}

// HandleDelete handles DELETE /delete/{partnerID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	partnerID, err := id.ParsePartnerID(chi.URLParam(r, "partnerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(ctx, partnerID); err != nil {
		h.fail(ctx, w, "delete partner failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Partner deleted"})
}

// HandleList handles GET /list?search=&country=&status=&page=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := filterFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	page, err := httputil.PageParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.List(ctx, filter, page)
	if err != nil {
		h.fail(ctx, w, "list partners failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(result))
}

// HandleAuditTrail handles GET /audit/{partnerID}. The trail outlives the
// partner, so a deleted partner still returns its events.
func (h *Handler) HandleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	partnerID, err := id.ParsePartnerID(chi.URLParam(r, "partnerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.service.AuditTrail(ctx, partnerID)
	if err != nil {
		h.fail(ctx, w, "load audit trail failed", err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, AuditTrailResponse{PartnerID: partnerID.String(), Events: events})
}

func filterFromQuery(r *http.Request) (models.Filter, error) {
	q := r.URL.Query()
	filter := models.Filter{Search: strings.TrimSpace(q.Get("search"))}
	if raw := strings.TrimSpace(q.Get("country")); raw != "" {
		country, err := id.ParseCountryCode(raw)
		if err != nil {
			return models.Filter{}, err
		}
		filter.Country = country
	}
	status, err := id.ParseVerificationStatus(strings.TrimSpace(q.Get("status")))
	if err != nil {
		return models.Filter{}, err
	}
	filter.Status = status
	return filter, nil
}

// fail logs unexpected errors and writes the error response. Client errors are
// not logged.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
