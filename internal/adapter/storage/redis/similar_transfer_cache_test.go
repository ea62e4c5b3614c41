package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func TestSimilarTransferCache_RememberAndLookup(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewSimilarTransferCache(client)
	ctx := context.Background()

	key := "a:b:50"

	_, ok, err := cache.LastTransferAt(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2026, 10, 17, 9, 30, 0, 123456789, time.UTC)
	require.NoError(t, cache.Remember(ctx, key, at, 10*time.Minute))

	got, ok, err := cache.LastTransferAt(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, at.Equal(got))
	assert.Equal(t, 10*time.Minute, s.TTL("similar_transfer:"+key))
}

func TestSimilarTransferCache_ExpiresWithWindow(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewSimilarTransferCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Remember(ctx, "a:b:50", time.Now(), time.Minute))
	s.FastForward(61 * time.Second)

	_, ok, err := cache.LastTransferAt(ctx, "a:b:50")
	require.NoError(t, err)
	assert.False(t, ok, "expired key should be a miss")
}

func TestSimilarTransferCache_DisabledWindow(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewSimilarTransferCache(client)

	require.NoError(t, cache.Remember(context.Background(), "a:b:50", time.Now(), 0))
	assert.False(t, s.Exists("similar_transfer:a:b:50"))
}

func TestSimilarTransferCache_CorruptValue(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewSimilarTransferCache(client)

	require.NoError(t, s.Set("similar_transfer:a:b:50", "not-a-time"))

	_, ok, err := cache.LastTransferAt(context.Background(), "a:b:50")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestSimilarTransferCache_HealthCheck(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	h := NewHealthCheck(client)

	assert.Equal(t, "redis", h.Name())
	assert.NoError(t, h.Ping(context.Background()))

	s.Close()
	assert.Error(t, h.Ping(context.Background()))
}
