package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return s, client
}

func TestAllow_BlocksAfterMax(t *testing.T) {
	_, client := setupTestRedis(t)
	l := New(client, "reports", 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "fp-1")
		require.NoError(t, err)
		assert.True(t, ok, "hit %d should be allowed", i+1)
	}

	ok, err := l.Allow(ctx, "fp-1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Allow(ctx, "fp-2")
	require.NoError(t, err)
	assert.True(t, ok, "other keys have their own budget")
}

func TestAllow_WindowResets(t *testing.T) {
	s, client := setupTestRedis(t)
	l := New(client, "reports", 1, time.Minute)
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "fp")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "fp")
	assert.False(t, ok)

	assert.Equal(t, time.Minute, s.TTL("reports:fp"))
	s.FastForward(time.Minute + time.Second)

	ok, err := l.Allow(ctx, "fp")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAllow_FailsOpen(t *testing.T) {
	s, client := setupTestRedis(t)
	l := New(client, "reports", 1, time.Minute)
	s.Close()

	ok, err := l.Allow(context.Background(), "fp")
	assert.Error(t, err)
	assert.True(t, ok)
}

func TestNilLimiterAllows(t *testing.T) {
	var l *Limiter
	ok, err := l.Allow(context.Background(), "fp")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRemaining(t *testing.T) {
	_, client := setupTestRedis(t)
	l := New(client, "reports", 2, time.Minute)
	ctx := context.Background()

	n, err := l.Remaining(ctx, "fp")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, _ = l.Allow(ctx, "fp")
	n, _ = l.Remaining(ctx, "fp")
	assert.Equal(t, int64(1), n)

	_, _ = l.Allow(ctx, "fp")
	_, _ = l.Allow(ctx, "fp")
	n, _ = l.Remaining(ctx, "fp")
	assert.Equal(t, int64(0), n)
}
