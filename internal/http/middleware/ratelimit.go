// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements an in-memory token-bucket rate limiter with per-client
// buckets and opportunistic eviction of idle buckets. It targets edge-level
// abuse control for a single-process deployment; horizontally scaled setups
// should front the service with a shared limiter instead.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc selects the identity used to key a rate-limit bucket. It must
// return a stable string for the duration of a request.
type KeyFunc func(*gin.Context) string

// KeyByUserOrIP prefers an authenticated user identity (Gin context key
// "userID", set by auth middleware) and falls back to the client IP. Keys are
// namespaced so a user ID can never collide with an address.
func KeyByUserOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if v, ok := c.Get("userID"); ok {
			if s, ok := v.(string); ok && s != "" {
				return "user:" + s
			}
		}
		return "ip:" + c.ClientIP()
	}
}

// bucket pairs a limiter with its last-use timestamp for idle eviction.
type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces per-key token-bucket limits. Buckets are created on
// demand in a mutex-guarded map; idle buckets are swept during lookups so the
// map stays bounded. Safe for concurrent use.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn KeyFunc

	mu      sync.Mutex
	buckets map[string]*bucket
	ttl     time.Duration
	lookups uint64
}

// NewRateLimiter builds a limiter replenishing rps tokens per second with the
// given burst capacity (coerced to at least 1), keyed by keyFn.
func NewRateLimiter(rps float64, burst int, keyFn KeyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		keyFn:   keyFn,
		buckets: make(map[string]*bucket),
		ttl:     10 * time.Minute,
	}
}

// getBucket fetches or creates the limiter for key. Every ~5000 lookups it
// sweeps entries idle for at least the TTL. The sweep runs before the fetch
// so a stale bucket can be evicted even when it is the one being looked up.
func (rl *RateLimiter) getBucket(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= 5000 {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= rl.ttl {
				delete(rl.buckets, k)
			}
		}
		rl.lookups = 0
	}

	if b, ok := rl.buckets[key]; ok {
		b.lastSeen = now
		return b.lim
	}

	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.buckets[key] = &bucket{lim: lim, lastSeen: now}
	return lim
}

// Handler returns the Gin middleware. Requests over the limit are answered
// with 429 and a Retry-After hint; the JSON body carries the request's
// correlation ID so throttled clients can still be traced in logs.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.getBucket(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}

		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get("X-Request-ID"),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}
