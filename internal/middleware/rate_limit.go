package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/kataras/iris/v12"
	radix "github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"
)

// TokenBucket is an in-process limiter used when Redis is absent.
type TokenBucket struct {
	capacity   int64
	tokens     int64
	refillRate int64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

func NewTokenBucket(capacity, refillRate int64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow reports whether a request may pass.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)
	tokensToAdd := int64(elapsed.Seconds()) * tb.refillRate
	if tokensToAdd > 0 {
		tb.tokens = tb.tokens + tokensToAdd
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

const checkoutLimitKey = "ratelimit:checkout:%s" // remote addr

// CheckoutRateLimit limits payment-intent creation per client IP:
// a Redis fixed window (INCR + EXPIRE) when a pool is available,
// falling back to one shared in-process token bucket.
func CheckoutRateLimit(redis radix.Client, perMinute int) iris.Handler {
	fallback := NewTokenBucket(int64(perMinute), int64(perMinute)/60+1)

	return func(ctx iris.Context) {
		allowed := true
		if redis != nil {
			key := fmt.Sprintf(checkoutLimitKey, ctx.RemoteAddr())
			var used int
			if err := redis.Do(radix.Cmd(&used, "INCR", key)); err != nil {
				zap.L().Warn("rate limit redis error", zap.Error(err))
				allowed = fallback.Allow()
			} else {
				if used == 1 {
					_ = redis.Do(radix.Cmd(nil, "EXPIRE", key, "60"))
				}
				allowed = used <= perMinute
			}
		} else {
			allowed = fallback.Allow()
		}

		if !allowed {
			ctx.StopWithJSON(429, iris.Map{
				"success": false,
				"error":   "too many requests, please retry shortly",
			})
			return
		}
		ctx.Next()
	}
}
