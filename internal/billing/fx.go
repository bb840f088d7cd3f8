package billing

import (
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/ytza/ytza/internal/config"
	"go.uber.org/fx"
)

func newRedisClient(cfg config.Config) *redis.Client {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}

var Module = fx.Module("billing",
	fx.Provide(newRedisClient),
	fx.Provide(New),
)
