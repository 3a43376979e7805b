package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// KeyFunc builds a rate-limit key from the request
type KeyFunc func(c echo.Context) string

// KeyByUserID limits per authenticated user, falling back to the client IP
func KeyByUserID(scope string) KeyFunc {
	return func(c echo.Context) string {
		if user := CurrentUser(c); user != nil {
			return "rl:" + scope + ":user:" + user.ID.Hex()
		}
		ip := c.RealIP()
		if ip == "" {
			ip = "unknown"
		}
		return "rl:" + scope + ":ip:" + ip
	}
}

// atomic INCR, with the window set on the first hit
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RateLimit allows max requests per key within window. It is a no-op without a client
// and fails open when Redis is unreachable.
func RateLimit(rdb *redis.Client, max int, window time.Duration, keyFn KeyFunc, logger logrus.FieldLogger) echo.MiddlewareFunc {
	if rdb == nil || max <= 0 || window <= 0 || keyFn == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method == http.MethodOptions {
				return next(c)
			}
			ctx := c.Request().Context()
			key := keyFn(c)

			count, err := incrExpireScript.Run(ctx, rdb, []string{key}, window.Milliseconds()).Int()
			if err != nil {
				logger.WithError(err).Warn("rate limiter unavailable")
				return next(c)
			}

			resetSec := 0
			if ttl, err := rdb.PTTL(ctx, key).Result(); err == nil && ttl > 0 {
				resetSec = int((ttl + time.Second - 1) / time.Second)
			}
			remaining := max - count
			if remaining < 0 {
				remaining = 0
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(max))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.Itoa(resetSec))

			if count > max {
				if resetSec > 0 {
					h.Set("Retry-After", strconv.Itoa(resetSec))
				}
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please slow down")
			}
			return next(c)
		}
	}
}
