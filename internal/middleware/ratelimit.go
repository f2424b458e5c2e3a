package middleware

import (
	"sync"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"

	"github.com/fastygo/habits/pkg/httpcontext"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per user (or client IP when anonymous).
// A janitor drops buckets that have been idle for staleAfter.
type RateLimiter struct {
	limit      rate.Limit
	burst      int
	staleAfter time.Duration

	mu      sync.Mutex
	entries map[string]*limiterEntry

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter starts the janitor; call Stop to release it.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 20
	}
	rl := &RateLimiter{
		limit:      rate.Limit(rps),
		burst:      burst,
		staleAfter: 10 * time.Minute,
		entries:    make(map[string]*limiterEntry),
		stopCh:     make(chan struct{}),
	}
	go rl.janitor()
	return rl
}

// Middleware rejects requests over budget with 429 and Retry-After: 1.
// It must run after JWTAuth so the user id header is trustworthy.
func (rl *RateLimiter) Middleware(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Method()) == fasthttp.MethodOptions {
			next(ctx)
			return
		}
		if !rl.Allow(key(ctx)) {
			ctx.Response.Header.Set("Retry-After", "1")
			writeError(ctx, fasthttp.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "too many requests")
			return
		}
		next(ctx)
	}
}

// Allow consumes one token from the bucket of key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getOrCreate(key).Allow()
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) getOrCreate(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if e, ok := rl.entries[key]; ok {
		e.lastSeen = time.Now()
		return e.limiter
	}
	lim := rate.NewLimiter(rl.limit, rl.burst)
	rl.entries[key] = &limiterEntry{limiter: lim, lastSeen: time.Now()}
	return lim
}

func (rl *RateLimiter) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := now.Add(-rl.staleAfter)
	for k, e := range rl.entries {
		if e.lastSeen.Before(cutoff) {
			delete(rl.entries, k)
		}
	}
}

func key(ctx *fasthttp.RequestCtx) string {
	if userID := string(ctx.Request.Header.Peek(httpcontext.UserIDHeader)); userID != "" {
		return "uid:" + userID
	}
	return "ip:" + ctx.RemoteIP().String()
}
