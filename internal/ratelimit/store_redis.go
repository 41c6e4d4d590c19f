package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"partnerdesk/pkg/requestcontext"
)

const redisKeyPrefix = "partnerdesk:ratelimit:"

// slidingWindow trims, counts and admits in one step so instances sharing
// the key cannot overshoot the limit. Scores are unix microseconds.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  return {0, count, oldest[2]}
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, math.ceil(window / 1000))
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
return {1, count + 1, oldest[2]}
`)

// RedisStore shares windows between instances.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := requestcontext.Now(ctx).UnixMicro()
	reply, err := slidingWindow.Run(ctx, s.client, []string{redisKeyPrefix + key},
		now, window.Microseconds(), limit, uuid.NewString(),
	).Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if len(reply) != 3 {
		return nil, fmt.Errorf("rate limit %s: unexpected reply %v", key, reply)
	}

	allowed, _ := reply[0].(int64)
	count, _ := reply[1].(int64)
	oldestRaw, _ := reply[2].(string)
	oldest, err := strconv.ParseFloat(oldestRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("rate limit %s: parse oldest score: %w", key, err)
	}

	result := &Result{
		Allowed: allowed == 1,
		Limit:   limit,
		ResetAt: time.UnixMicro(int64(oldest)).Add(window),
	}
	if result.Allowed {
		result.Remaining = limit - int(count)
	}
	return result, nil
}
