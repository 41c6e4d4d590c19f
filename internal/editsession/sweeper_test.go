package editsession

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "partnerdesk/pkg/domain"
)

func TestNewSweeperRejectsBadSchedule(t *testing.T) {
	_, err := NewSweeper(NewManager(nil, nil), "every minute", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "every minute")
}

func TestSweeperRunUsesClock(t *testing.T) {
	manager := NewManager(nil, nil, WithIdleTTL(time.Minute))
	opened := time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC)
	manager.sessions[id.NewSessionID()] = &Session{lastUsed: opened}

	sweeper, err := NewSweeper(manager, "@every 1m", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	sweeper.now = func() time.Time { return opened.Add(2 * time.Minute) }

	sweeper.run()
	assert.Zero(t, manager.Len())

	sweeper.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sweeper.Stop(ctx)
}

func TestSweeperRunsPurges(t *testing.T) {
	manager := NewManager(nil, nil)
	now := time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC)

	var purgedAt time.Time
	sweeper, err := NewSweeper(manager, "@every 1m", slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithPurge("vat_cache", func(at time.Time) int {
			purgedAt = at
			return 2
		}),
		WithPurge("ignored", nil),
	)
	require.NoError(t, err)
	sweeper.now = func() time.Time { return now }

	sweeper.run()
	assert.Equal(t, now, purgedAt)
	assert.Len(t, sweeper.purges, 1)
}
