package persistence

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/citycare/issue-service/internal/config"
)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
	logger *zap.Logger
}

// NewRedis builds a client from the configuration. An empty address disables
// Redis and yields a nil client.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Warn("REDIS_ADDR not provided; revocations stay in memory and issue reports are not limited")
		return &Redis{logger: logger}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Redis{Client: client, logger: logger}
}

// DisableIfUnreachable pings the server. On failure the client is closed and
// dropped, so later callers and readiness see Redis as disabled.
func (r *Redis) DisableIfUnreachable(ctx context.Context) error {
	if err := r.Ping(ctx); err != nil {
		if r.Enabled() {
			r.logger.Warn("unable to reach redis; falling back to in-memory stores", zap.Error(err))
			_ = r.Client.Close()
			r.Client = nil
		}
		return err
	}
	r.logger.Info("connected to redis")
	return nil
}

// Enabled reports whether a client was configured.
func (r *Redis) Enabled() bool {
	return r != nil && r.Client != nil
}

// Close closes the client.
func (r *Redis) Close() {
	if r.Enabled() {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if !r.Enabled() {
		return ErrNotConfigured
	}
	return r.Client.Ping(ctx).Err()
}
