// Package handler exposes edit sessions over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"partnerdesk/internal/editsession"
	"partnerdesk/internal/vat/domain/history"
	id "partnerdesk/pkg/domain"
	dErrors "partnerdesk/pkg/domain-errors"
	"partnerdesk/pkg/platform/httputil"
	"partnerdesk/pkg/requestcontext"
)

// Service defines the edit session operations used by the handler.
type Service interface {
	Open(ctx context.Context, partnerID id.PartnerID) (*editsession.Window, error)
	Page(ctx context.Context, sessionID id.SessionID, n int) (*editsession.Window, error)
	Reverify(ctx context.Context, sessionID id.SessionID) (*editsession.ReverifyOutcome, error)
	Close(ctx context.Context, sessionID id.SessionID) error
}

type Handler struct {
	service       Service
	logger        *slog.Logger
	registryLimit []func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithRegistryLimit wraps the reverify route, which calls the VAT registry.
func WithRegistryLimit(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) { h.registryLimit = append(h.registryLimit, mw) }
}

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/sessions", h.HandleOpen)
	r.Get("/sessions/{sessionID}/history", h.HandlePage)
	r.With(h.registryLimit...).Post("/sessions/{sessionID}/verify", h.HandleReverify)
	r.Delete("/sessions/{sessionID}", h.HandleClose)
}

type OpenSessionRequest struct {
	PartnerID string `json:"partner_id"`
}

func (r *OpenSessionRequest) Normalize() {
	r.PartnerID = strings.TrimSpace(r.PartnerID)
}

func (r *OpenSessionRequest) Validate() error {
	_, err := id.ParsePartnerID(r.PartnerID)
	return err
}

type OpenSessionResponse struct {
	Success   bool                `json:"success"`
	SessionID string              `json:"session_id"`
	History   *editsession.Window `json:"history"`
}

type ReverifyResponse struct {
	Success             bool                `json:"success"`
	VATVerified         bool                `json:"vat_verified"`
	Message             string              `json:"message"`
	ManualInputRequired bool                `json:"manual_input_required"`
	VerificationID      string              `json:"verification_id"`
	Event               *history.Event      `json:"event"`
	History             *editsession.Window `json:"history"`
}

// HandleOpen handles POST /sessions.
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[OpenSessionRequest](w, r)
	if !ok {
		return
	}
	partnerID, err := id.ParsePartnerID(req.PartnerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	window, err := h.service.Open(ctx, partnerID)
	if err != nil {
		h.fail(ctx, w, "open edit session failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, OpenSessionResponse{
		Success:   true,
		SessionID: window.SessionID.String(),
		History:   window,
	})
}

// HandlePage handles GET /sessions/{sessionID}/history?page=.
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	page, err := httputil.PageParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	window, err := h.service.Page(ctx, sessionID, page)
	if err != nil {
		h.fail(ctx, w, "history page failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, window)
}

// HandleReverify handles POST /sessions/{sessionID}/verify.
func (h *Handler) HandleReverify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	outcome, err := h.service.Reverify(ctx, sessionID)
	if err != nil {
		h.fail(ctx, w, "re-verification failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ReverifyResponse{
		Success:             true,
		VATVerified:         outcome.Result.Verified,
		Message:             outcome.Result.Message,
		ManualInputRequired: outcome.Result.ManualInputRequired,
		VerificationID:      outcome.Result.VerificationID,
		Event:               outcome.Event,
		History:             outcome.Window,
	})
}

// HandleClose handles DELETE /sessions/{sessionID}.
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Close(ctx, sessionID); err != nil {
		h.fail(ctx, w, "close edit session failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
