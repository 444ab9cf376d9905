package endpointfetcher

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// rateLimiter is a lock-free token bucket. Tokens refill at one per
// refillRate, up to maxTokens.
type rateLimiter struct {
	tokens     int64
	maxTokens  int64
	refillRate time.Duration
	lastRefill int64
}

func newRateLimiter(maxTokens int, refillRate time.Duration) *rateLimiter {
	return &rateLimiter{
		tokens:     int64(maxTokens),
		maxTokens:  int64(maxTokens),
		refillRate: refillRate,
		lastRefill: time.Now().UnixNano(),
	}
}

func (rl *rateLimiter) allow() bool {
	rl.refill()
	for {
		current := atomic.LoadInt64(&rl.tokens)
		if current <= 0 {
			return false
		}
		if atomic.CompareAndSwapInt64(&rl.tokens, current, current-1) {
			return true
		}
	}
}

func (rl *rateLimiter) refill() {
	if rl.refillRate <= 0 {
		return
	}
	now := time.Now().UnixNano()
	for {
		last := atomic.LoadInt64(&rl.lastRefill)
		toAdd := (now - last) / int64(rl.refillRate)
		if toAdd == 0 {
			return
		}
		// Claim the elapsed interval first so concurrent refills cannot
		// mint the same tokens twice.
		if !atomic.CompareAndSwapInt64(&rl.lastRefill, last, last+toAdd*int64(rl.refillRate)) {
			continue
		}
		for {
			current := atomic.LoadInt64(&rl.tokens)
			next := current + toAdd
			if next > rl.maxTokens {
				next = rl.maxTokens
			}
			if atomic.CompareAndSwapInt64(&rl.tokens, current, next) {
				return
			}
		}
	}
}

func (rl *rateLimiter) available() int64 {
	rl.refill()
	return atomic.LoadInt64(&rl.tokens)
}

// RateLimitPlugin returns a plugin whose handler wrapper denies calls with
// ErrRateLimited once a token bucket of maxTokens, refilled at one token
// per refillRate, is exhausted. The current token count is exposed as the
// "tokens" method under identity "ratelimit".
func RateLimitPlugin(maxTokens int, refillRate time.Duration) *Plugin {
	rl := newRateLimiter(maxTokens, refillRate)

	return &Plugin{
		Identity: "ratelimit",
		HandlerWrapper: func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, call *CallContext) (any, error) {
				if !rl.allow() {
					return nil, fmt.Errorf("%w: %s %s", ErrRateLimited, call.Method, call.Path)
				}
				return next(ctx, call)
			}
		},
		Methods: MethodMap{
			"tokens": func(ctx context.Context, args ...any) (any, error) {
				return int(rl.available()), nil
			},
		},
	}
}
