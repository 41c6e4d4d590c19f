package editsession

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// PurgeFunc drops entries that expired before now and returns how many.
type PurgeFunc func(now time.Time) int

// Sweeper runs Manager.Sweep on a cron schedule such as "@every 1m", along
// with any extra purges registered through WithPurge.
type Sweeper struct {
	cron    *cron.Cron
	manager *Manager
	purges  map[string]PurgeFunc
	logger  *slog.Logger
	now     func() time.Time
}

type SweeperOption func(*Sweeper)

// WithPurge adds an expiry purge that runs on the same schedule. A nil fn is
// ignored.
func WithPurge(name string, fn PurgeFunc) SweeperOption {
	return func(s *Sweeper) {
		if fn != nil {
			s.purges[name] = fn
		}
	}
}

func NewSweeper(manager *Manager, schedule string, logger *slog.Logger, opts ...SweeperOption) (*Sweeper, error) {
	s := &Sweeper{
		cron:    cron.New(),
		manager: manager,
		purges:  make(map[string]PurgeFunc),
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep, or for ctx.
func (s *Sweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Sweeper) run() {
	now := s.now()
	if n := s.manager.Sweep(now); n > 0 {
		s.logger.Info("expired edit sessions removed",
			"count", n,
			"open", s.manager.Len(),
		)
	}
	for name, purge := range s.purges {
		if n := purge(now); n > 0 {
			s.logger.Info("expired entries purged", "target", name, "count", n)
		}
	}
}
