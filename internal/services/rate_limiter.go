package services

import (
	"net"
	"net/http"
	"sync"
	"time"

	"cinelist/internal/utils"
)

// RateLimiter applies a per-client token bucket to a group of routes. Each
// client starts with a full bucket of maxRequests tokens; the bucket refills
// over windowDuration. A request without an available token is rejected.
type RateLimiter struct {
	maxRequests    int
	windowDuration time.Duration
	refillRate     time.Duration

	mutex   sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// NewRateLimiter builds a limiter allowing maxRequests per window per client.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRequests:    maxRequests,
		windowDuration: window,
		refillRate:     window / time.Duration(maxRequests),
		buckets:        make(map[string]*bucket),
	}
}

// Allow consumes a token for the given client key, refilling the bucket for
// the time elapsed since the last request.
func (r *RateLimiter) Allow(key string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := time.Now()
	b, ok := r.buckets[key]
	if !ok {
		b = &bucket{tokens: r.maxRequests, lastRefill: now}
		r.buckets[key] = b
	}

	tokensToAdd := int(now.Sub(b.lastRefill) / r.refillRate)
	if tokensToAdd > 0 {
		b.tokens = min(r.maxRequests, b.tokens+tokensToAdd)
		b.lastRefill = now
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// Limit wraps a handler, keying buckets by client IP.
func (r *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !r.Allow(clientIP(req)) {
			utils.RespondError(w, "Too many requests, please try again later.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, req)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
