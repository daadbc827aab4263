package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"agrisense-http-service/internal/error/code"
	"agrisense-http-service/internal/error/response"
)

// TokenBucket is a simple token-bucket limiter. Tokens refill at a fixed
// rate up to the bucket capacity.
type TokenBucket struct {
	rate       float64
	capacity   float64
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

func NewTokenBucket(rate, capacity float64) *TokenBucket {
	return &TokenBucket{
		rate:       rate,
		capacity:   capacity,
		tokens:     capacity,
		lastRefill: time.Now(),
	}
}

// Allow takes one token from the bucket, refilling first.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens += elapsed * tb.rate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

type limiterEntry struct {
	bucket   *TokenBucket
	lastSeen time.Time
}

var (
	ipLimiters   = make(map[string]*limiterEntry)
	pathLimiters = make(map[string]*limiterEntry)
	limiterMu    sync.RWMutex
)

func init() {
	go cleanupLimiters()
}

// cleanupLimiters drops buckets that have been idle for over an hour.
func cleanupLimiters() {
	for {
		time.Sleep(time.Hour)
		limiterMu.Lock()
		cutoff := time.Now().Add(-time.Hour)
		for key, entry := range ipLimiters {
			if entry.lastSeen.Before(cutoff) {
				delete(ipLimiters, key)
			}
		}
		for key, entry := range pathLimiters {
			if entry.lastSeen.Before(cutoff) {
				delete(pathLimiters, key)
			}
		}
		limiterMu.Unlock()
	}
}

func getLimiter(limiters map[string]*limiterEntry, key string, rate, burst float64) *TokenBucket {
	limiterMu.RLock()
	entry, ok := limiters[key]
	limiterMu.RUnlock()
	if ok {
		limiterMu.Lock()
		entry.lastSeen = time.Now()
		limiterMu.Unlock()
		return entry.bucket
	}

	limiterMu.Lock()
	defer limiterMu.Unlock()
	if entry, ok = limiters[key]; ok {
		entry.lastSeen = time.Now()
		return entry.bucket
	}
	entry = &limiterEntry{bucket: NewTokenBucket(rate, burst), lastSeen: time.Now()}
	limiters[key] = entry
	return entry.bucket
}

// RateLimiterConfig controls the per-key limiting behavior.
type RateLimiterConfig struct {
	Rate  float64 // tokens per second
	Burst float64 // bucket capacity
}

// DefaultRateLimiterConfig allows short bursts while keeping the
// sustained rate low enough to protect the upstream AI quota.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{Rate: 1, Burst: 5}
}

// IPRateLimiter limits requests per client IP.
func IPRateLimiter(cfg RateLimiterConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket := getLimiter(ipLimiters, c.ClientIP(), cfg.Rate, cfg.Burst)
		if !bucket.Allow() {
			response.FailWithMessage(c, code.ErrTooManyRequests, "too many requests, slow down", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// PathRateLimiter limits requests per IP and path combination. Used on
// the advisory endpoints that fan out to external AI providers.
func PathRateLimiter(cfg RateLimiterConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP() + ":" + c.FullPath()
		bucket := getLimiter(pathLimiters, key, cfg.Rate, cfg.Burst)
		if !bucket.Allow() {
			response.FailWithMessage(c, code.ErrTooManyRequests, "too many requests for this endpoint", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
