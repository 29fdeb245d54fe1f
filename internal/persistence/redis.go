package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ops-desk/internal/config"
)

// cacheTimeout caps every Redis round trip; cache errors fall back to Postgres.
const cacheTimeout = 250 * time.Millisecond

// Redis holds the client backing the dashboard summary cache.
type Redis struct {
	Client *redis.Client
}

// NewRedis opens the summary cache connection. An unreachable server is
// logged and reported by the readiness check; the service still starts.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cacheTimeout,
		ReadTimeout:  cacheTimeout,
		WriteTimeout: cacheTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("summary cache unreachable", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("summary cache connected", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	}

	return &Redis{Client: client}
}

// Close releases the connection pool.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping backs the readiness check.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("summary cache not configured")
	}
	return r.Client.Ping(ctx).Err()
}
