package ratelimit

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/sableworks/guildgate/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Callback abuse budget: OAuth exchanges are slow and codes are
// single-use, so anything past a small burst is noise.
var callbackRate = Rate{PerSecond: 1, Burst: 5}

var Module = fx.Module("rate.limit",
	fx.Provide(NewCallbackLimiter),
)

// NewCallbackLimiter picks redis when configured, otherwise the
// in-process bucket.
func NewCallbackLimiter(cfg config.Config, log *zap.Logger) Limiter {
	if cfg.RedisAddr == "" {
		return NewMemoryLimiter(callbackRate)
	}
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	return NewRedisLimiter(client, callbackRate, log)
}
