package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"partnerdesk/internal/subscriber/models"
	"partnerdesk/pkg/platform/httputil"
	"partnerdesk/pkg/requestcontext"
)

// Service defines the subscriber operations exposed over HTTP.
type Service interface {
	Lookup(ctx context.Context, search string, page int) (*models.LookupPage, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts subscriber endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/subscribers/lookup", h.HandleLookup)
}

type lookupResult struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type lookupResponse struct {
	Results []lookupResult `json:"results"`
	HasMore bool           `json:"has_more"`
}

// HandleLookup handles GET /subscribers/lookup?search=&page=.
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := httputil.PageParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Lookup(ctx, r.URL.Query().Get("search"), page)
	if err != nil {
		h.logger.ErrorContext(ctx, "subscriber lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := lookupResponse{Results: make([]lookupResult, 0, len(result.Results)), HasMore: result.HasMore}
	for _, s := range result.Results {
		resp.Results = append(resp.Results, lookupResult{
			ID:        s.ID.String(),
			Email:     s.Email,
			FirstName: s.FirstName,
			LastName:  s.LastName,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
