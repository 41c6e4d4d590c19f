package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"partnerdesk/internal/vat/metrics"
	"partnerdesk/internal/vat/models"
	"partnerdesk/pkg/platform/sentinel"
)

const redisKeyPrefix = "partnerdesk:vat:"

// RedisCache shares verification results between instances. Expiry is left
// to Redis.
type RedisCache struct {
	client   redis.UniversalClient
	cacheTTL time.Duration
	metrics  *metrics.Metrics
}

func NewRedisCache(client redis.UniversalClient, cacheTTL time.Duration, m *metrics.Metrics) *RedisCache {
	return &RedisCache{client: client, cacheTTL: cacheTTL, metrics: m}
}

func redisKey(country, vatNumber string) string {
	return redisKeyPrefix + models.CacheKey(country, vatNumber)
}

func (c *RedisCache) Save(ctx context.Context, result *models.VerificationResult) error {
	if result == nil {
		return nil
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode verification result: %w", err)
	}
	if err := c.client.Set(ctx, redisKey(result.CountryCode, result.VATNumber), payload, c.cacheTTL).Err(); err != nil {
		return fmt.Errorf("save verification result: %w", err)
	}
	return nil
}

func (c *RedisCache) Find(ctx context.Context, country, vatNumber string) (*models.VerificationResult, error) {
	raw, err := c.client.Get(ctx, redisKey(country, vatNumber)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.metrics.RecordCacheMiss("redis")
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verification result: %w", err)
	}
	var result models.VerificationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		// A record we cannot read is as good as absent.
		c.metrics.RecordCacheMiss("redis")
		return nil, sentinel.ErrNotFound
	}
	c.metrics.RecordCacheHit("redis")
	return &result, nil
}
