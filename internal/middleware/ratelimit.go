package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiterConfig tunes a token-bucket limiter.
type RateLimiterConfig struct {
	// RefillPerSecond is how many tokens each client regains per second.
	RefillPerSecond float64

	// Burst is the bucket capacity, the number of back-to-back requests
	// a quiet client may spend at once.
	Burst int

	// SweepInterval is how often idle client buckets are dropped.
	SweepInterval time.Duration

	// KeyFunc derives the limiting key, client IP when nil.
	KeyFunc func(r *http.Request) string
}

// DefaultRateLimiterConfig suits the general API surface.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RefillPerSecond: 10,
		Burst:           20,
		SweepInterval:   time.Minute,
	}
}

// StrictRateLimiterConfig suits abuse-prone endpoints such as proof
// uploads.
func StrictRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RefillPerSecond: 1,
		Burst:           5,
		SweepInterval:   time.Minute,
	}
}

type bucket struct {
	mu     sync.Mutex
	tokens float64
	last   time.Time
}

// take refills by elapsed time, then spends one token if available.
func (b *bucket) take(rate float64, burst int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens = min(b.tokens+now.Sub(b.last).Seconds()*rate, float64(burst))
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// RateLimiter keeps one token bucket per client key in memory. State is
// per process; a multi-instance deployment limits per instance.
type RateLimiter struct {
	config  RateLimiterConfig
	mu      sync.Mutex
	buckets map[string]*bucket
	stop    chan struct{}
}

// NewRateLimiter starts a limiter and its idle-bucket sweeper. Call Stop
// when done.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = GetClientIP
	}

	rl := &RateLimiter{
		config:  config,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Allow reports whether the key may proceed right now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(rl.config.Burst), last: time.Now()}
		rl.buckets[key] = b
	}
	rl.mu.Unlock()

	return b.take(rl.config.RefillPerSecond, rl.config.Burst)
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			rl.mu.Lock()
			for key, b := range rl.buckets {
				b.mu.Lock()
				idle := b.tokens >= float64(rl.config.Burst) &&
					now.Sub(b.last) > rl.config.SweepInterval
				b.mu.Unlock()
				if idle {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stop:
			return
		}
	}
}

// Stop ends the sweeper goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stop)
}

// Middleware answers 429 with a Retry-After hint when the client is over
// its budget.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(rl.config.KeyFunc(r)) {
			w.Header().Set("Retry-After", "1")
			respondTooManyRequests(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetClientIP resolves the caller's IP, trusting the proxy headers set by
// the gateway before falling back to the socket address.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
