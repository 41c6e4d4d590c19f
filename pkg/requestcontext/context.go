// Package requestcontext carries request-scoped values (caller, request ID,
// client address and a pinned clock) without depending on net/http.
// Services read them; the HTTP middleware and tests set them.
package requestcontext

import (
	"context"
	"time"

	id "partnerdesk/pkg/domain"
)

type key int

const (
	userKey key = iota
	clientIPKey
	requestIDKey
	nowKey
)

func value[T any](ctx context.Context, k key) (T, bool) {
	v, ok := ctx.Value(k).(T)
	return v, ok
}

// UserID is the authenticated staff member, or the nil ID.
func UserID(ctx context.Context) id.UserID {
	userID, _ := value[id.UserID](ctx, userKey)
	return userID
}

func WithUserID(ctx context.Context, userID id.UserID) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

func ClientIP(ctx context.Context) string {
	ip, _ := value[string](ctx, clientIPKey)
	return ip
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

func RequestID(ctx context.Context) string {
	reqID, _ := value[string](ctx, requestIDKey)
	return reqID
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// Now is the pinned request time, or the wall clock outside a request
// (sweepers, background jobs).
func Now(ctx context.Context) time.Time {
	if t, ok := PinnedTime(ctx); ok {
		return t
	}
	return time.Now()
}

// PinnedTime reports the time set with WithTime, if any.
func PinnedTime(ctx context.Context) (time.Time, bool) {
	return value[time.Time](ctx, nowKey)
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, nowKey, t)
}
