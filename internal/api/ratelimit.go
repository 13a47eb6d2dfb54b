package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/juju/ratelimit"
)

const (
	bucketRate     = 5
	bucketCapacity = 20
)

// rateLimiter keeps one token bucket per client IP for the NLP routes. The
// LLM endpoints are expensive upstream, so bursts are capped well below the
// rest of the API.
type rateLimiter struct {
	mu      sync.RWMutex
	clients map[string]*ratelimit.Bucket
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{clients: make(map[string]*ratelimit.Bucket)}
	go rl.cleanup()
	return rl
}

func (rl *rateLimiter) bucket(clientIP string) *ratelimit.Bucket {
	rl.mu.RLock()
	bucket, exists := rl.clients[clientIP]
	rl.mu.RUnlock()
	if exists {
		return bucket
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if bucket, exists = rl.clients[clientIP]; !exists {
		bucket = ratelimit.NewBucketWithRate(bucketRate, bucketCapacity)
		rl.clients[clientIP] = bucket
	}
	return bucket
}

// cleanup drops buckets that refilled completely, i.e. clients idle long
// enough to not matter anymore.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		rl.mu.Lock()
		for ip, bucket := range rl.clients {
			if bucket.Available() == bucket.Capacity() {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			clientIP = host
		}
		if rl.bucket(clientIP).TakeAvailable(1) == 0 {
			w.Header().Set("Retry-After", "1")
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
