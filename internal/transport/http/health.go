package httptransport

import (
	"context"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"partnerdesk/pkg/platform/httputil"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// Health serves /healthz. Failing core checks make the service unavailable;
// failing registries only degrade it, since the form falls back to manual
// input.
type Health struct {
	core       map[string]Check
	registries func(ctx context.Context) map[string]error
	timeout    time.Duration
}

func NewHealth(core map[string]Check, registries func(ctx context.Context) map[string]error) *Health {
	return &Health{core: core, registries: registries, timeout: 3 * time.Second}
}

type healthResponse struct {
	Status     string            `json:"status"`
	Checks     map[string]string `json:"checks"`
	Registries map[string]string `json:"registries,omitempty"`
}

func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: h.runCore(ctx)}
	status := http.StatusOK
	for _, v := range resp.Checks {
		if v != "ok" {
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	if h.registries != nil {
		resp.Registries = make(map[string]string)
		for name, err := range h.registries(ctx) {
			resp.Registries[name] = describe(err)
			if err != nil && resp.Status == "ok" {
				resp.Status = "degraded"
			}
		}
	}
	httputil.WriteJSON(w, status, resp)
}

func (h *Health) runCore(ctx context.Context) map[string]string {
	names := make([]string, 0, len(h.core))
	for name := range h.core {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]error, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i := i
		check := h.core[name]
		g.Go(func() error {
			results[i] = check(gctx)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]string, len(names))
	for i, name := range names {
		out[name] = describe(results[i])
	}
	return out
}

func describe(err error) string {
	if err == nil {
		return "ok"
	}
	return err.Error()
}
