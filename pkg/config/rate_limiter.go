package config

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"todosync/internal/core/telemetry"
	. "todosync/pkg"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

type RateLimitEndpointConfig struct {
	Requests int
	Window   time.Duration
	KeyFunc  func(*gin.Context) string
}

// RateLimiter is a fixed-window limiter keyed by "METHOD route" and caller.
type RateLimiter struct {
	cache   *cache.Cache
	config  map[string]RateLimitEndpointConfig
	logger  *zap.Logger
	metrics *telemetry.AppMetrics
	mutex   sync.Mutex
}

type RateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

var defaultRateLimit = RateLimitEndpointConfig{
	Requests: 60,
	Window:   time.Minute,
	KeyFunc:  getUserID,
}

func NewRateLimiter(logger *zap.Logger, metrics *telemetry.AppMetrics, configs map[string]RateLimitConfig) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}

	rl := &RateLimiter{
		cache:   cache.New(5*time.Minute, 10*time.Minute),
		config:  map[string]RateLimitEndpointConfig{"default": defaultRateLimit},
		logger:  logger,
		metrics: metrics,
	}

	for methodPath, cfg := range configs {
		rl.SetConfig(methodPath, RateLimitEndpointConfig{Requests: cfg.Requests, Window: cfg.Window})
	}

	return rl
}

func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		methodPath := c.Request.Method + " " + path

		rl.mutex.Lock()
		config, exists := rl.config[methodPath]
		if !exists {
			config = rl.config["default"]
		}
		rl.mutex.Unlock()

		identifier := config.KeyFunc(c)
		key := fmt.Sprintf("rate_limit:%s:%s", methodPath, identifier)

		allowed, remaining, resetTime := rl.checkRateLimit(key, config)

		keyType := "ip"
		if _, ok := c.Get("x-user-id"); ok {
			keyType = "user"
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(c.Request.Context(), path, keyType)
			}

			rl.logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.Int("limit", config.Requests),
				zap.Duration("window", config.Window))

			c.Header("Retry-After", strconv.Itoa(int(time.Until(resetTime).Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("Too many requests. Limit: %d per %v.", config.Requests, config.Window),
			})
			return
		}

		if rl.metrics != nil {
			rl.metrics.RecordRateLimitAllowed(c.Request.Context(), path, keyType)
		}

		c.Next()
	}
}

func (rl *RateLimiter) checkRateLimit(key string, config RateLimitEndpointConfig) (bool, int, time.Time) {
	now := time.Now()

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if found, ok := rl.cache.Get(key); ok {
		entry := found.(RateLimitEntry)

		if now.Before(entry.ResetTime) {
			if entry.Count >= config.Requests {
				return false, 0, entry.ResetTime
			}

			entry.Count++
			rl.cache.Set(key, entry, time.Until(entry.ResetTime))

			return true, config.Requests - entry.Count, entry.ResetTime
		}
	}

	resetTime := now.Add(config.Window)
	rl.cache.Set(key, RateLimitEntry{Count: 1, ResetTime: resetTime}, config.Window)

	return true, config.Requests - 1, resetTime
}

func getUserID(c *gin.Context) string {
	if userID := c.GetString("x-user-id"); userID != "" {
		return "user_" + userID
	}

	return "ip_" + GetClientIP(c)
}

func (rl *RateLimiter) SetConfig(methodPath string, config RateLimitEndpointConfig) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if config.KeyFunc == nil {
		config.KeyFunc = getUserID
	}

	rl.config[methodPath] = config
}
