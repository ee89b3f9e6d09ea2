package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// counter is the part of *redis.Client the checker uses.
type counter interface {
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
}

// RedisChecker allows at most Max attempts per (action, IP) within Window,
// using a fixed window counter shared by every TaskHub instance.
type RedisChecker struct {
	Client counter
	Max    int
	Window time.Duration
	Prefix string
}

// NewRedisChecker returns a checker on client. Zero values fall back to 5
// attempts per hour.
func NewRedisChecker(client *redis.Client, limit int, window time.Duration) *RedisChecker {
	if limit <= 0 {
		limit = 5
	}
	if window <= 0 {
		window = time.Hour
	}
	return &RedisChecker{Client: client, Max: limit, Window: window, Prefix: "taskhub:risk"}
}

// Allow counts the attempt and reports whether it is within budget. INCR and
// EXPIRE NX run in one MULTI/EXEC, so every counter carries a TTL even when
// an earlier call failed halfway. EXPIRE NX needs Redis 7.
func (c *RedisChecker) Allow(ctx context.Context, req Request) (bool, error) {
	key := fmt.Sprintf("%s:%s:%s", c.Prefix, req.Action, req.IP)

	var incr *redis.IntCmd
	_, err := c.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, c.Window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("risk: count %s: %w", key, err)
	}
	return incr.Val() <= int64(c.Max), nil
}

// Ping reports whether Redis is reachable, for readiness checks.
func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}
