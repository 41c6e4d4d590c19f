package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"partnerdesk/internal/platform/metrics"
	"partnerdesk/pkg/platform/httputil"
	"partnerdesk/pkg/requestcontext"
)

// ExceededResponse is the 429 body.
type ExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// Middleware limits requests per caller. The caller is the authenticated
// user when there is one and the client IP otherwise.
type Middleware struct {
	store   Store
	scope   string
	limit   int
	window  time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Middleware)

func WithLogger(l *slog.Logger) Option {
	return func(m *Middleware) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) { m.metrics = mt }
}

// New returns a limiter admitting limit requests per window for each caller
// within scope. A non-positive limit disables it.
func New(store Store, scope string, limit int, window time.Duration, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		scope:  scope,
		limit:  limit,
		window: window,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	if m == nil || m.limit <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := m.scope + ":" + caller(r)

		result, err := m.store.Allow(ctx, key, m.limit, m.window)
		if err != nil {
			// Registry calls are still guarded by the circuit breaker.
			m.logger.WarnContext(ctx, "rate limit check failed, admitting request",
				"scope", m.scope,
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			m.metrics.IncrementRateLimited(m.scope)
			retryAfter := result.RetryAfter(requestcontext.Now(ctx))
			h.Set("Retry-After", strconv.Itoa(retryAfter))
			httputil.WriteJSON(w, http.StatusTooManyRequests, ExceededResponse{
				Error:      "rate_limit_exceeded",
				Message:    "Too many registry lookups. Please try again later.",
				RetryAfter: retryAfter,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func caller(r *http.Request) string {
	ctx := r.Context()
	if userID := requestcontext.UserID(ctx); !userID.IsNil() {
		return "user:" + userID.String()
	}
	if ip := requestcontext.ClientIP(ctx); ip != "" {
		return "ip:" + ip
	}
	return "ip:" + r.RemoteAddr
}
