package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/yitocode/members-api/internal/config"
)

// Counting and expiry happen in one script so two concurrent requests
// cannot both create the window key without a TTL.
var rateWindowScript = redis.NewScript(`
	local hits = redis.call('INCR', KEYS[1])
	if hits == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	local ttl = redis.call('PTTL', KEYS[1])
	return { hits, ttl }
`)

// RateLimit returns a fixed-window per-IP limiter used on the auth
// endpoints to slow down credential stuffing.  When Redis is absent
// or errors, requests pass through so a cache outage never locks the
// API (teacher-style graceful degradation).
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			key := cfg.Prefix + ":" + ip + ":" + c.Path()

			vals, err := rateWindowScript.Run(c.Request().Context(), rdb,
				[]string{key}, cfg.Window.Milliseconds()).Result()
			if err != nil {
				return next(c)
			}
			arr, ok := vals.([]interface{})
			if !ok || len(arr) != 2 {
				return next(c)
			}
			hits, _ := arr[0].(int64)
			ttlMs, _ := arr[1].(int64)

			remaining := int64(cfg.Limit) - hits
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if hits > int64(cfg.Limit) {
				secs := int((time.Duration(ttlMs) * time.Millisecond).Round(time.Second) / time.Second)
				if secs < 1 {
					secs = 1
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many requests"})
			}
			return next(c)
		}
	}
}
