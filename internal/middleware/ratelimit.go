package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/eventboard/backend/config"
	"github.com/eventboard/backend/pkg/response"
)

// token bucket per key: refills one token every interval, capped at capacity.
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local interval_ms = tonumber(ARGV[3])
local ttl_seconds = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
    tokens = capacity
    last_refill = now_ms
end

local elapsed = math.max(0, now_ms - last_refill)
local refilled = math.floor(elapsed / interval_ms)
if refilled > 0 then
    tokens = math.min(capacity, tokens + refilled)
    last_refill = last_refill + refilled * interval_ms
end

local allowed = 0
if tokens > 0 then
    allowed = 1
    tokens = tokens - 1
end

redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)
return allowed
`)

// RateLimit returns a redis-backed token bucket limiter keyed by client IP.
// It fails open: if redis is unreachable the request goes through.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	if !cfg.Enabled || rdb == nil {
		return func(c *gin.Context) { c.Next() }
	}
	intervalMs := int64(cfg.RefillSecs) * 1000
	ttlSeconds := cfg.RefillSecs * cfg.Capacity * 2

	return func(c *gin.Context) {
		key := "ratelimit:login:" + c.ClientIP()
		allowed, err := rateLimitScript.Run(c.Request.Context(), rdb, []string{key},
			time.Now().UnixMilli(), cfg.Capacity, intervalMs, ttlSeconds).Int()
		if err != nil {
			logger.Warn("rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if allowed != 1 {
			response.TooManyRequests(c, "too many attempts, slow down")
			c.Abort()
			return
		}
		c.Next()
	}
}
