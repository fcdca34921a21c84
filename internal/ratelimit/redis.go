package ratelimit

import (
	"context"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/roomledger/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// RedisClient wraps an optional client. Client is nil when REDIS_ADDR is
// empty.
type RedisClient struct {
	Client *redis.Client
}

func NewRedisClient(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) RedisClient {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		log.Info("redis not configured, login throttling is process local")
		return RedisClient{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("redis ping failed", zap.String("addr", addr), zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return RedisClient{Client: client}
}
