package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/enosefelix/job-finder-sub000/internal/config"
)

const redisStartupPing = 3 * time.Second

// Redis holds the client behind the mail queue.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds the client and checks it once, bounded by ctx and a short
// timeout. An unreachable server is logged, not fatal: mail jobs fail to
// enqueue until it comes back and the health endpoint reports it.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisStartupPing)
	defer cancel()

	fields := []zap.Field{zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB)}
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("mail queue redis unreachable", append(fields, zap.Error(err))...)
	} else {
		logger.Info("mail queue redis connected", fields...)
	}
	return &Redis{Client: client}
}

// Close releases the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping backs the redis entry of the health endpoint.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
