package ratelimit

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Atomic token-bucket refill and take. Keyed per caller; TTL keeps
// idle buckets from accumulating.
const tokenBucketScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local nowData = redis.call("TIME")
local now = (nowData[1] * 1000) + math.floor(nowData[2] / 1000)

local data = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(data[1])
local ts = tonumber(data[2])

if tokens == nil then
  tokens = burst
  ts = now
else
  local delta = now - ts
  if delta < 0 then
    delta = 0
  end
  tokens = math.min(burst, tokens + (delta / 1000) * rate)
  ts = now
end

local allowed = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
end

redis.call("HMSET", KEYS[1], "tokens", tokens, "ts", ts)
redis.call("PEXPIRE", KEYS[1], ttl)
return allowed
`

// RedisLimiter shares one token bucket per key across instances.
type RedisLimiter struct {
	client *redis.Client
	script *redis.Script
	rate   Rate
	ttl    time.Duration
	prefix string
	log    *zap.Logger
}

func NewRedisLimiter(client *redis.Client, rate Rate, log *zap.Logger) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		script: redis.NewScript(tokenBucketScript),
		rate:   rate,
		ttl:    time.Minute,
		prefix: "guildgate:ratelimit:",
		log:    log.Named("ratelimit"),
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	result, err := l.script.Run(ctx, l.client,
		[]string{l.prefix + key},
		l.rate.PerSecond,
		l.rate.Burst,
		l.ttl.Milliseconds(),
	).Int64()
	if err != nil {
		l.log.Warn("rate limit check failed, allowing request", zap.Error(err))
		return true
	}
	return result == 1
}
