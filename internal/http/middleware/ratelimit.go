// Package middleware contains shared Gin middleware used by the admin API.
//
// This file implements a per-client token-bucket rate limiter backed by
// golang.org/x/time/rate, with opportunistic eviction of idle buckets. It is
// process-local, which is enough for a single-instance bot daemon.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// visitor holds a single bucket and the last time it was used.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-IP token-bucket limiter, safe for concurrent use.
type RateLimiter struct {
	rps   rate.Limit
	burst int

	mu       sync.Mutex
	visitors map[string]*visitor
	ttl      time.Duration
	lookups  uint64
}

// NewRateLimiter constructs a limiter with the given tokens-per-second and
// burst size. rps <= 0 disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
	}
}

// Handler returns the Gin middleware enforcing the limit per client IP.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.rps <= 0 {
			c.Next()
			return
		}
		if !rl.take("ip:" + c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    "too_many_requests",
				"message": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

// take reserves one token for key, creating the bucket on first sight.
func (rl *RateLimiter) take(key string) bool {
	rl.mu.Lock()
	v := rl.visitors[key]
	if v == nil {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()

	// Every 64 lookups, sweep idle buckets to bound memory.
	rl.lookups++
	if rl.lookups%64 == 0 {
		cutoff := time.Now().Add(-rl.ttl)
		for k, vv := range rl.visitors {
			if vv.lastSeen.Before(cutoff) {
				delete(rl.visitors, k)
			}
		}
	}
	rl.mu.Unlock()

	return v.limiter.Allow()
}
