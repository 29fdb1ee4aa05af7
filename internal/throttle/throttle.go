// Package throttle caps anonymous submissions per caller with fixed-window
// counters in Redis.
package throttle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter counts hits per key. A nil *Limiter allows everything.
type Limiter struct {
	client *redis.Client
	prefix string
	max    int64
	window time.Duration
}

func New(client *redis.Client, prefix string, max int, window time.Duration) *Limiter {
	return &Limiter{client: client, prefix: prefix, max: int64(max), window: window}
}

// Connect opens a Redis client and checks it is reachable.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	slog.Info("connected to redis", "addr", addr)
	return client, nil
}

// Allow records one hit for key and reports whether it is within the limit.
// Redis failures fail open: a throttle outage must not block reporting.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if l == nil || l.client == nil || l.max <= 0 {
		return true, nil
	}

	k := fmt.Sprintf("%s:%s", l.prefix, key)
	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return true, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return true, err
		}
	}
	return count <= l.max, nil
}

// Remaining returns how many hits key has left in the current window.
func (l *Limiter) Remaining(ctx context.Context, key string) (int64, error) {
	if l == nil || l.client == nil {
		return 0, nil
	}
	count, err := l.client.Get(ctx, fmt.Sprintf("%s:%s", l.prefix, key)).Int64()
	if err == redis.Nil {
		return l.max, nil
	}
	if err != nil {
		return 0, err
	}
	if count >= l.max {
		return 0, nil
	}
	return l.max - count, nil
}
