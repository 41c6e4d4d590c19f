package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partnerdesk/internal/platform/config"
	"partnerdesk/internal/staffauth"
	subscriberhandler "partnerdesk/internal/subscriber/handler"
	subscriberservice "partnerdesk/internal/subscriber/service"
	subscriberstore "partnerdesk/internal/subscriber/store"
	id "partnerdesk/pkg/domain"
	"partnerdesk/pkg/platform/middleware/request"
	"partnerdesk/pkg/testutil"
)

func newTestRouter(t *testing.T, health *Health) (http.Handler, *staffauth.Tokens) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := staffauth.New(config.AuthConfig{JWTSigningKey: "test-signing-key", Issuer: "admin-app", Audience: "partnerdesk"})
	subscribers := subscriberservice.New(subscriberstore.NewInMemoryStore())
	_, err := subscribers.FindOrCreate(context.Background(), "anna@firma.pl")
	require.NoError(t, err)

	return NewRouter(RouterConfig{
		Logger:    logger,
		Validator: tokens,
		Handlers:  []Registrar{subscriberhandler.New(subscribers, logger)},
		Health:    health,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		}),
	}), tokens
}

func TestAPIRequiresBearerToken(t *testing.T) {
	router, tokens := newTestRouter(t, nil)
	path := APIPrefix + "/subscribers/lookup?search=anna"

	t.Run("missing token", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, path))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
		assert.NotEmpty(t, rr.Header().Get(request.HeaderRequestID))
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := tokens.Issue(id.NewUserID(), "", time.Minute)
		require.NoError(t, err)
		req := testutil.NewRequest(t, http.MethodGet, path)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set(request.HeaderRequestID, "req-42")

		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, "req-42", rr.Header().Get(request.HeaderRequestID))
		assert.Contains(t, rr.Body.String(), "anna@firma.pl")
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := tokens.Issue(id.NewUserID(), "", -time.Minute)
		require.NoError(t, err)
		req := testutil.NewRequest(t, http.MethodGet, path)
		req.Header.Set("Authorization", "Bearer "+token)

		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})
}

func TestOperationalEndpointsArePublic(t *testing.T) {
	router, _ := newTestRouter(t, NewHealth(nil, nil))

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr, "status", "ok")
}

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }
	registries := func(context.Context) map[string]error {
		return map[string]error{"mf": nil, "vies": errors.New("vies returned 503")}
	}

	t.Run("registry outage degrades", func(t *testing.T) {
		router, _ := newTestRouter(t, NewHealth(map[string]Check{"postgres": ok}, registries))
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "status", "degraded")
		testutil.AssertJSONPath(t, rr, "vies returned 503", "registries", "vies")
		testutil.AssertJSONPath(t, rr, "ok", "checks", "postgres")
	})

	t.Run("core outage is unavailable", func(t *testing.T) {
		router, _ := newTestRouter(t, NewHealth(map[string]Check{"postgres": ok, "redis": down}, registries))
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		testutil.AssertJSONContains(t, rr, "status", "unavailable")
		testutil.AssertJSONPath(t, rr, "connection refused", "checks", "redis")
	})
}
