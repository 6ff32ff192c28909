package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"userapp/internal/adapter/logger"
	"userapp/internal/core/telemetry"
	"userapp/pkg/config"
)

const defaultRateLimitKey = "default"

type RateLimiter struct {
	cache   *cache.Cache
	config  map[string]config.RateLimitConfig
	logger  *logger.Logger
	metrics *telemetry.AppMetrics
	mutex   sync.Mutex
}

type rateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

// NewRateLimiter counts requests per client IP in fixed windows. Limits are
// looked up by "METHOD /route/:param", then by route, then by "default".
func NewRateLimiter(configs map[string]config.RateLimitConfig, log *logger.Logger, metrics *telemetry.AppMetrics) *RateLimiter {
	limits := make(map[string]config.RateLimitConfig, len(configs))

	for key, limit := range configs {
		limits[key] = limit
	}

	return &RateLimiter{
		cache:   cache.New(5*time.Minute, 10*time.Minute),
		config:  limits,
		logger:  log,
		metrics: metrics,
	}
}

func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()

		if path == "" {
			path = c.Request.URL.Path
		}

		methodPath := c.Request.Method + " " + path

		limit, found := rl.lookup(methodPath, path)

		if !found {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", methodPath, c.ClientIP())

		allowed, remaining, resetTime := rl.checkRateLimit(key, limit)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(c.Request.Context(), path)
			}

			rl.logger.Warn(c.Request.Context(), "Rate limit exceeded",
				zap.String("key", key),
				zap.String("path", path),
				zap.Int("limit", limit.Requests),
				zap.Duration("window", limit.Window))

			retryAfter := int(time.Until(resetTime).Seconds()) + 1

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"message":     fmt.Sprintf("Too many requests. Limit: %d per %v", limit.Requests, limit.Window),
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) lookup(methodPath, path string) (config.RateLimitConfig, bool) {
	for _, key := range []string{methodPath, path, defaultRateLimitKey} {
		if limit, ok := rl.config[key]; ok && limit.Requests > 0 {
			return limit, true
		}
	}

	return config.RateLimitConfig{}, false
}

func (rl *RateLimiter) checkRateLimit(key string, limit config.RateLimitConfig) (bool, int, time.Time) {
	now := time.Now()

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if item, found := rl.cache.Get(key); found {
		entry := item.(rateLimitEntry)

		if now.Before(entry.ResetTime) {
			if entry.Count >= limit.Requests {
				return false, 0, entry.ResetTime
			}

			entry.Count++
			rl.cache.Set(key, entry, time.Until(entry.ResetTime))

			return true, limit.Requests - entry.Count, entry.ResetTime
		}
	}

	resetTime := now.Add(limit.Window)
	rl.cache.Set(key, rateLimitEntry{Count: 1, ResetTime: resetTime}, limit.Window)

	return true, limit.Requests - 1, resetTime
}

func (rl *RateLimiter) ActiveEntries() int {
	return rl.cache.ItemCount()
}
