package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryExpiresEntries(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory(WithClock(func() time.Time { return now }))
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "company", []byte(`{"site_name":"AB"}`), time.Minute))

	value, ok, err := c.Get(ctx, "company")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"site_name":"AB"}`, string(value))

	value[0] = 'x'
	again, _, _ := c.Get(ctx, "company")
	require.Equal(t, byte('{'), again[0], "cached bytes must not alias caller slices")

	now = now.Add(time.Minute)
	_, ok, err = c.Get(ctx, "company")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryDeleteAndNoTTL(t *testing.T) {
	t.Parallel()

	c := NewMemory()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	_, ok, _ := c.Get(ctx, "k")
	require.True(t, ok)

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, _ = c.Get(ctx, "k")
	require.False(t, ok)
}

func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("STOREFRONT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("STOREFRONT_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewRedis(ctx, RedisOptions{Addr: addr, KeyPrefix: "test:" + t.Name() + ":"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "seo:about", []byte("null"), time.Minute))
	value, ok, err := c.Get(ctx, "seo:about")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "null", string(value))

	require.NoError(t, c.Delete(ctx, "seo:about"))
}
