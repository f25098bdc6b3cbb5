package dispatch

import (
	"github.com/ratewatchlabs/ratewatch/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

func NewRedisClient(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}

func provideQueue(client *redis.Client, cfg config.Config) WorkQueue {
	return NewRedisQueue(client, cfg.QueueKey)
}

var Module = fx.Module("dispatch",
	fx.Provide(NewRedisClient),
	fx.Provide(provideQueue),
	fx.Provide(NewDispatcher),
)
