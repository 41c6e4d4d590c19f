package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	id "partnerdesk/pkg/domain"
)

func TestAccessors(t *testing.T) {
	ctx := context.Background()
	assert.True(t, UserID(ctx).IsNil())
	assert.Empty(t, RequestID(ctx))
	assert.Empty(t, ClientIP(ctx))
	_, pinned := PinnedTime(ctx)
	assert.False(t, pinned)
	assert.WithinDuration(t, time.Now(), Now(ctx), time.Second)

	userID := id.NewUserID()
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx = WithUserID(ctx, userID)
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithClientIP(ctx, "10.0.0.1")
	ctx = WithTime(ctx, fixed)

	assert.Equal(t, userID, UserID(ctx))
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "10.0.0.1", ClientIP(ctx))
	assert.Equal(t, fixed, Now(ctx))
	got, pinned := PinnedTime(ctx)
	assert.True(t, pinned)
	assert.Equal(t, fixed, got)
}

func TestValuesDoNotLeakBetweenKeys(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Empty(t, ClientIP(ctx))

	type foreignKey int
	ctx = context.WithValue(ctx, foreignKey(requestIDKey), "spoofed")
	assert.Equal(t, "req-1", RequestID(ctx))
}
