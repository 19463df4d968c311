// Package redis holds the client constructor for the rate-limit store.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/writediary/writediary/internal/config"
)

const pingTimeout = 5 * time.Second

// NewClient connects to Redis and verifies the connection. Redis only backs
// the per-IP rate limiter here; the usage ledger lives in Postgres.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	slog.Info("redis ready", "addr", cfg.Addr())
	return client, nil
}
