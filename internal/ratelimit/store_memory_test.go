package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partnerdesk/pkg/requestcontext"
)

func TestInMemoryStoreSlidingWindow(t *testing.T) {
	store := NewInMemoryStore()
	start := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	at := func(d time.Duration) context.Context {
		return requestcontext.WithTime(context.Background(), start.Add(d))
	}

	for i, offset := range []time.Duration{0, 10 * time.Second, 20 * time.Second} {
		result, err := store.Allow(at(offset), "k", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 2-i, result.Remaining)
		assert.Equal(t, start.Add(time.Minute), result.ResetAt)
	}

	denied, err := store.Allow(at(30*time.Second), "k", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, denied.Allowed)
	assert.Zero(t, denied.Remaining)
	assert.Equal(t, start.Add(time.Minute), denied.ResetAt, "first slot frees when the oldest request ages out")
	assert.Equal(t, 30, denied.RetryAfter(start.Add(30*time.Second)))

	// The first request has left the window; the other two still count.
	admitted, err := store.Allow(at(time.Minute), "k", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, admitted.Allowed)
	assert.Zero(t, admitted.Remaining)
	assert.Equal(t, start.Add(70*time.Second), admitted.ResetAt)

	other, err := store.Allow(at(30*time.Second), "other", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys are independent")
}

func TestRetryAfterIsAtLeastOneSecond(t *testing.T) {
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	r := &Result{ResetAt: now.Add(200 * time.Millisecond)}
	assert.Equal(t, 1, r.RetryAfter(now))

	r.ResetAt = now.Add(-time.Second)
	assert.Equal(t, 1, r.RetryAfter(now))

	r.ResetAt = now.Add(2500 * time.Millisecond)
	assert.Equal(t, 3, r.RetryAfter(now))
}
