package httpx

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type rateLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimitMiddleware struct {
	limiters map[string]*rateLimiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
	cleanup  time.Duration
	done     chan struct{}
	// trustProxy keys clients by X-Forwarded-For. Only set it when a proxy
	// in front of the server overwrites that header.
	trustProxy bool
}

func NewRateLimitMiddleware(rps float64, burst int, trustProxy bool) *RateLimitMiddleware {
	rl := &RateLimitMiddleware{
		limiters:   make(map[string]*rateLimiter),
		rate:       rate.Limit(rps),
		burst:      burst,
		cleanup:    5 * time.Minute,
		done:       make(chan struct{}),
		trustProxy: trustProxy,
	}

	go rl.cleanupLimiters()
	return rl
}

func (rl *RateLimitMiddleware) cleanupLimiters() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for key, limiter := range rl.limiters {
				if time.Since(limiter.lastSeen) > rl.cleanup {
					delete(rl.limiters, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Stop ends the background cleanup of idle limiters.
func (rl *RateLimitMiddleware) Stop() {
	close(rl.done)
}

func (rl *RateLimitMiddleware) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = &rateLimiter{
			limiter:  rate.NewLimiter(rl.rate, rl.burst),
			lastSeen: time.Now(),
		}
		rl.limiters[key] = limiter
	} else {
		limiter.lastSeen = time.Now()
	}

	return limiter.limiter
}

func (rl *RateLimitMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := rl.getLimiter(rl.clientKey(r))
		if !limiter.Allow() {
			WriteError(w, r, http.StatusTooManyRequests, "Too Many Requests", "Too many requests", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientKey is the peer host, or the address the trusted proxy appended last
// to X-Forwarded-For.
func (rl *RateLimitMiddleware) clientKey(r *http.Request) string {
	if rl.trustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			hops := strings.Split(forwarded, ",")
			if last := strings.TrimSpace(hops[len(hops)-1]); last != "" {
				return last
			}
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
