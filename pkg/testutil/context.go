package testutil

import (
	"net/http"
	"time"

	id "partnerdesk/pkg/domain"
	"partnerdesk/pkg/requestcontext"
)

// WithUser adds an authenticated user to the request context, as the auth
// middleware would.
func WithUser(req *http.Request, userID id.UserID) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithTime pins the request-scoped clock.
func WithTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
