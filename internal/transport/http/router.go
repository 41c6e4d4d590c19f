// Package httptransport assembles the HTTP surface: middleware, the
// authenticated partner API and the operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	authmw "partnerdesk/pkg/platform/middleware/auth"
	"partnerdesk/pkg/platform/middleware/request"
)

// APIPrefix is where every authenticated route is mounted.
const APIPrefix = "/partner/api"

// Registrar mounts a group of routes.
type Registrar interface {
	Register(r chi.Router)
}

type RouterConfig struct {
	Logger    *slog.Logger
	Validator authmw.JWTValidator
	// Handlers are mounted under APIPrefix behind bearer authentication.
	Handlers []Registrar
	Health   *Health
	Metrics  http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Metadata)
	r.Use(request.Logger(cfg.Logger))
	r.Use(middleware.Recoverer)

	if cfg.Health != nil {
		r.Get("/healthz", cfg.Health.ServeHTTP)
	}
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	r.Route(APIPrefix, func(api chi.Router) {
		api.Use(authmw.RequireAuth(cfg.Validator, cfg.Logger))
		for _, h := range cfg.Handlers {
			h.Register(api)
		}
	})
	return r
}
