//go:build integration

package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"partnerdesk/internal/ratelimit"
	"partnerdesk/pkg/requestcontext"
	"partnerdesk/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *ratelimit.RedisStore
	start time.Time
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = ratelimit.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.start = time.Now().UTC().Truncate(time.Second)
}

func (s *RedisStoreSuite) at(d time.Duration) context.Context {
	return requestcontext.WithTime(context.Background(), s.start.Add(d))
}

func (s *RedisStoreSuite) TestSlidingWindow() {
	for i, offset := range []time.Duration{0, time.Second} {
		result, err := s.store.Allow(s.at(offset), "user:a", 2, time.Minute)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(1-i, result.Remaining)
		s.True(result.ResetAt.Equal(s.start.Add(time.Minute)))
	}

	denied, err := s.store.Allow(s.at(2*time.Second), "user:a", 2, time.Minute)
	s.Require().NoError(err)
	s.False(denied.Allowed)
	s.True(denied.ResetAt.Equal(s.start.Add(time.Minute)))

	admitted, err := s.store.Allow(s.at(time.Minute), "user:a", 2, time.Minute)
	s.Require().NoError(err)
	s.True(admitted.Allowed, "the first request aged out")
	s.True(admitted.ResetAt.Equal(s.start.Add(time.Minute+time.Second)))
}

func (s *RedisStoreSuite) TestKeysExpire() {
	_, err := s.store.Allow(context.Background(), "user:b", 1, 200*time.Millisecond)
	s.Require().NoError(err)
	s.Eventually(func() bool {
		n, err := s.redis.Client.Exists(context.Background(), "partnerdesk:ratelimit:user:b").Result()
		return err == nil && n == 0
	}, 5*time.Second, 50*time.Millisecond)
}
