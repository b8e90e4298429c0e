package httpx

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisLimiter counts fixed windows in redis so every replica shares the
// same budget per key.
type RedisLimiter struct {
	client *redis.Client
	config RateLimitConfig
	prefix string
}

// NewRedisLimiter namespaces keys as "<prefix>:<key>".
func NewRedisLimiter(client *redis.Client, config RateLimitConfig, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisLimiter{client: client, config: config, prefix: prefix}
}

func (l *RedisLimiter) Config() RateLimitConfig { return l.config }

func (l *RedisLimiter) redisKey(key string) string {
	return fmt.Sprintf("%s:%s", l.prefix, key)
}

// Allow increments the window counter. Only the request that opens the
// window sets its expiry, so the window does not slide.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	k := l.redisKey(key)

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return Decision{Allowed: true}, fmt.Errorf("redis: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, k, l.config.Window).Err(); err != nil {
			return Decision{Allowed: true}, fmt.Errorf("redis: %w", err)
		}
	}

	limit := int64(l.config.RequestsPerWindow)
	if count <= limit {
		return Decision{Allowed: true, Remaining: int(limit - count)}, nil
	}

	retry, err := l.client.PTTL(ctx, k).Result()
	if err != nil || retry <= 0 {
		retry = l.config.Window
	}
	return Decision{Allowed: false, RetryAfter: retry}, nil
}

// Reset clears the counter for key.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.redisKey(key)).Err()
}

// Ping reports redis reachability for readiness checks.
func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// TTL reports how long until key's window resets.
func (l *RedisLimiter) TTL(ctx context.Context, key string) (time.Duration, error) {
	return l.client.TTL(ctx, l.redisKey(key)).Result()
}
