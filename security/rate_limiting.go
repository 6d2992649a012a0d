package security

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis     *redis.Client
	perMinute int
}

func NewRateLimiter(redisClient *redis.Client, perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	return &RateLimiter{redis: redisClient, perMinute: perMinute}
}

// WriteRateLimit throttles write endpoints per client IP using a fixed
// one-minute window in Redis. If Redis is down the request passes through,
// availability of the sale flow matters more than the throttle.
func (r *RateLimiter) WriteRateLimit() func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ip := clientIP(e.Request)
		key := fmt.Sprintf("ratelimit:%s", ip)

		count, err := r.redis.Incr(e.Request.Context(), key).Result()
		if err != nil {
			log.Printf("rate limit: redis unavailable, allowing %s: %v", ip, err)
			return e.Next()
		}
		if count == 1 {
			r.redis.Expire(e.Request.Context(), key, time.Minute)
		}
		if count > int64(r.perMinute) {
			return e.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "too many requests, slow down",
			})
		}

		return e.Next()
	}
}

// AntiBot rejects obvious scripted clients before they reach the handlers.
func (r *RateLimiter) AntiBot() func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if isSuspiciousUserAgent(e.Request.Header.Get("User-Agent")) {
			return e.JSON(http.StatusForbidden, map[string]string{
				"error": "access denied",
			})
		}
		return e.Next()
	}
}

func clientIP(req *http.Request) string {
	if fwd := req.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}

func isSuspiciousUserAgent(ua string) bool {
	suspicious := []string{"bot", "crawler", "spider", "scraper"}
	for _, pattern := range suspicious {
		if strings.Contains(strings.ToLower(ua), pattern) {
			return true
		}
	}
	return false
}
