package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// SimilarTransferCache implements ports.SimilarTransferCache. Each key holds
// the commit time of the latest transfer for a (from, to, amount) tuple and
// expires together with the similar-transfer window.
type SimilarTransferCache struct {
	client goredis.Cmdable
	prefix string
}

// NewSimilarTransferCache creates a Redis-backed similar-transfer cache.
func NewSimilarTransferCache(client goredis.Cmdable) *SimilarTransferCache {
	return &SimilarTransferCache{
		client: client,
		prefix: "similar_transfer:",
	}
}

// LastTransferAt returns ok=false when no live entry exists.
func (c *SimilarTransferCache) LastTransferAt(ctx context.Context, key string) (time.Time, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("redis similar transfer get: %w", err)
	}

	nanos, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redis similar transfer decode %q: %w", val, err)
	}
	return time.Unix(0, nanos).UTC(), true, nil
}

// Remember records at for key. A non-positive ttl is a no-op since the
// window is disabled.
func (c *SimilarTransferCache) Remember(ctx context.Context, key string, at time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	err := c.client.Set(ctx, c.prefix+key, strconv.FormatInt(at.UnixNano(), 10), ttl).Err()
	if err != nil {
		return fmt.Errorf("redis similar transfer set: %w", err)
	}
	return nil
}
