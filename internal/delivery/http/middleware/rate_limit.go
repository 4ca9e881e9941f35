package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"trujobs-api/internal/delivery/http/response"
	"trujobs-api/pkg/logger"
	"trujobs-api/pkg/metrics"
	"trujobs-api/pkg/security"
)

// RateLimitConfig holds configuration for one limited scope.
type RateLimitConfig struct {
	Scope  string
	Limit  int
	Window time.Duration
	// KeyFunc defaults to the client IP.
	KeyFunc func(*gin.Context) string
	// FailClosed rejects requests when Redis errors instead of using the in-memory counter.
	FailClosed bool
}

func GlobalRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{Scope: "global", Limit: limit, Window: window}
}

func UploadRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{Scope: "upload", Limit: limit, Window: window}
}

// Returns {count, ttl}; the TTL is set only on the first increment of a window.
var rateLimitScript = goredis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`)

type rateLimitEntry struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

// RateLimiter counts requests in fixed windows, in Redis when a client is
// configured and in process memory otherwise.
type RateLimiter struct {
	redis   *goredis.Client
	metrics *metrics.Metrics
	audit   *security.AuditLogger
	entries sync.Map
	now     func() time.Time
}

// NewRateLimiter starts a sweeper for expired in-memory entries that stops with ctx.
func NewRateLimiter(ctx context.Context, client *goredis.Client, m *metrics.Metrics, audit *security.AuditLogger) *RateLimiter {
	rl := &RateLimiter{redis: client, metrics: m, audit: audit, now: time.Now}
	go rl.sweep(ctx, 5*time.Minute)
	return rl
}

func (rl *RateLimiter) sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := rl.now()
			rl.entries.Range(func(key, value any) bool {
				entry := value.(*rateLimitEntry)
				entry.mu.Lock()
				if now.After(entry.resetAt) {
					rl.entries.Delete(key)
				}
				entry.mu.Unlock()
				return true
			})
		}
	}
}

func (rl *RateLimiter) Limit(cfg RateLimitConfig) gin.HandlerFunc {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	prefix := "rl:" + cfg.Scope + ":"

	return func(c *gin.Context) {
		key := prefix + keyFunc(c)

		var (
			count   int
			resetAt time.Time
		)
		if rl.redis != nil {
			var err error
			count, resetAt, err = rl.checkRedis(c.Request.Context(), key, cfg)
			if err != nil {
				logger.Log.Warn("rate limit store unavailable", "scope", cfg.Scope, "error", err)
				if cfg.FailClosed {
					response.Abort(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.")
					return
				}
				count, resetAt = rl.checkMemory(key, cfg)
			}
		} else {
			count, resetAt = rl.checkMemory(key, cfg)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Header("X-RateLimit-Reset", resetAt.UTC().Format(time.RFC3339))

		if count > cfg.Limit {
			retryAfter := int(resetAt.Sub(rl.now()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			rl.metrics.Limited(cfg.Scope)
			recordEvent(c, rl.audit, security.EventRateLimitTriggered, "", map[string]string{"scope": cfg.Scope})

			response.Abort(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(cfg.Limit-count))
		c.Next()
	}
}

func (rl *RateLimiter) checkRedis(ctx context.Context, key string, cfg RateLimitConfig) (int, time.Time, error) {
	ttlSeconds := int(cfg.Window.Seconds())
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}

	res, err := rateLimitScript.Run(ctx, rl.redis, []string{key}, ttlSeconds).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}
	if len(res) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result %v", res)
	}

	return int(res[0]), rl.now().Add(time.Duration(res[1]) * time.Second), nil
}

func (rl *RateLimiter) checkMemory(key string, cfg RateLimitConfig) (int, time.Time) {
	now := rl.now()
	value, _ := rl.entries.LoadOrStore(key, &rateLimitEntry{resetAt: now.Add(cfg.Window)})
	entry := value.(*rateLimitEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if now.After(entry.resetAt) {
		entry.count = 0
		entry.resetAt = now.Add(cfg.Window)
	}
	entry.count++
	return entry.count, entry.resetAt
}
