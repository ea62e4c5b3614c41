package redis

import (
	"context"
	"fmt"

	"coins-wallet/config"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewClient connects to Redis and fails fast when the server does not answer
// a bounded ping.
func NewClient(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := NewHealthCheck(client).Ping(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Addr(), err)
	}

	log.Info().
		Str("addr", cfg.Addr()).
		Int("db", cfg.DB).
		Msg("Redis ready for similar-transfer cache and rate limits")

	return client, nil
}
