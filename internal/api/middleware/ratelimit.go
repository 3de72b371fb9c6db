package middleware

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimiter is a token bucket per remote address. Idle buckets are dropped
// after a few minutes so the map stays bounded.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	refill  float64 // tokens per second
	cap     float64
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		refill:  rps,
		cap:     float64(burst),
	}
	go rl.evictIdle()
	return rl
}

func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.RemoteAddr) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(addr string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[addr]
	if !ok {
		b = &bucket{tokens: rl.cap, lastSeen: time.Now()}
		rl.buckets[addr] = b
	}

	b.tokens += time.Since(b.lastSeen).Seconds() * rl.refill
	if b.tokens > rl.cap {
		b.tokens = rl.cap
	}
	b.lastSeen = time.Now()

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) evictIdle() {
	ticker := time.NewTicker(time.Minute)
	for range ticker.C {
		rl.mu.Lock()
		for addr, b := range rl.buckets {
			if time.Since(b.lastSeen) > 3*time.Minute {
				delete(rl.buckets, addr)
			}
		}
		rl.mu.Unlock()
	}
}
