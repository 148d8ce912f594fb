package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "ratelimit:"

// counterStore is the slice of redis commands the limiter needs.
type counterStore interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	PExpire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	PTTL(ctx context.Context, key string) *redis.DurationCmd
}

// RedisLimiter enforces a fixed-window quota shared across instances using an
// atomic counter per key. Store failures are logged and the request is allowed
// through: rate limiting degrades open rather than taking traffic down with it.
type RedisLimiter struct {
	client counterStore
	logger *zap.Logger
}

// NewRedisLimiter builds a limiter over an existing client.
func NewRedisLimiter(client *redis.Client, logger *zap.Logger) *RedisLimiter {
	return &RedisLimiter{client: client, logger: logger}
}

// Check increments the window counter for key, creating the window on first
// observation. The window boundary is owned by the key's TTL; a counter found
// without one gets its TTL re-armed so no key can stay capped forever.
func (l *RedisLimiter) Check(ctx context.Context, key string, cfg Config) Result {
	redisKey := redisKeyPrefix + key
	now := time.Now()

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		l.logger.Warn("rate limit counter unavailable", zap.String("key", key), zap.Error(err))
		return Result{Allowed: true, Remaining: cfg.MaxRequests - 1, ResetAt: now.Add(cfg.Window)}
	}

	if count == 1 {
		if err := l.client.PExpire(ctx, redisKey, cfg.Window).Err(); err != nil {
			l.logger.Warn("rate limit expiry not set", zap.String("key", key), zap.Error(err))
		}
		return Result{Allowed: true, Remaining: cfg.MaxRequests - 1, ResetAt: now.Add(cfg.Window)}
	}

	resetAt := now.Add(cfg.Window)
	ttl, err := l.client.PTTL(ctx, redisKey).Result()
	switch {
	case err != nil:
		l.logger.Warn("rate limit expiry unknown", zap.String("key", key), zap.Error(err))
	case ttl > 0:
		resetAt = now.Add(ttl)
	default:
		// The counter has no expiry, meaning the PExpire on window creation
		// failed. Re-arm it so the counter cannot become a permanent cap.
		if err := l.client.PExpire(ctx, redisKey, cfg.Window).Err(); err != nil {
			l.logger.Warn("rate limit expiry not set", zap.String("key", key), zap.Error(err))
		}
	}

	if count > int64(cfg.MaxRequests) {
		return Result{Allowed: false, Remaining: 0, ResetAt: resetAt}
	}

	return Result{Allowed: true, Remaining: cfg.MaxRequests - int(count), ResetAt: resetAt}
}
