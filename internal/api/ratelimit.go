package api

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter applies a per-client token bucket keyed by tenant when
// known, else by remote IP. Configured via RATE_RPS and RATE_BURST;
// RATE_RPS=0 disables limiting.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rps     float64
	burst   int
}

type clientLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

func NewRateLimiterFromEnv() *RateLimiter {
	rps := 50.0
	burst := 100
	if v := os.Getenv("RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			rps = f
		}
	}
	if v := os.Getenv("RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			burst = n
		}
	}
	return &RateLimiter{clients: map[string]*clientLimiter{}, rps: rps, burst: burst}
}

func (rl *RateLimiter) allow(key string) bool {
	if rl.rps == 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	c, ok := rl.clients[key]
	if !ok {
		c = &clientLimiter{lim: rate.NewLimiter(rate.Limit(rl.rps), rl.burst)}
		rl.clients[key] = c
	}
	c.seen = time.Now()
	if len(rl.clients) > 10000 {
		rl.evictStale()
	}
	return c.lim.Allow()
}

// evictStale drops limiters idle for more than ten minutes. Caller
// holds the lock.
func (rl *RateLimiter) evictStale() {
	cutoff := time.Now().Add(-10 * time.Minute)
	for k, c := range rl.clients {
		if c.seen.Before(cutoff) {
			delete(rl.clients, k)
		}
	}
}

// Middleware wraps next with the rate limit, keyed by tenant header or
// remote address.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Tenant-Id")
		if key == "" {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			key = host
		}
		if !rl.allow(key) {
			w.Header().Set("Retry-After", "1")
			writeProblem(w, http.StatusTooManyRequests, "Too Many Requests", "rate limit exceeded", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}
