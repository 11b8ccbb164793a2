package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisLimiter enforces the request window through a shared Redis counter so
// the limit holds across multiple instances. The counter key is scoped to the
// current window slot; INCR plus a one-shot EXPIRE gives atomic
// increment-and-expire semantics.
type RedisLimiter struct {
	rdb    *redis.Client
	per    time.Duration
	max    int
	logger zerolog.Logger
}

// NewRedisLimiter builds a limiter over an existing Redis client.
func NewRedisLimiter(rdb *redis.Client, max int, per time.Duration, logger zerolog.Logger) *RedisLimiter {
	if max <= 0 {
		max = DefaultMax
	}
	if per <= 0 {
		per = DefaultWindow
	}
	return &RedisLimiter{rdb: rdb, per: per, max: max, logger: logger}
}

// Allow consumes one slot from the shared window. Redis failures log a
// warning and allow the request: the limit is a soft control and the
// pipeline must not become unavailable when the counter store is.
func (l *RedisLimiter) Allow(ctx context.Context, identity string, bypass bool) bool {
	if bypass {
		return true
	}

	slot := time.Now().UnixMilli() / l.per.Milliseconds()
	key := fmt.Sprintf("ratelimit:%s:%d", identity, slot)

	pipe := l.rdb.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.per)
	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Warn().Err(err).Str("identity", identity).Msg("ratelimit: redis unavailable, allowing request")
		return true
	}

	return incr.Val() <= int64(l.max)
}

var _ Limiter = (*RedisLimiter)(nil)
