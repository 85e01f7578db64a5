package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"sitetrack/internal/pkg/errors"
)

type RateLimiter struct {
	store *sync.Map // map[string]*Bucket
	limit int
	now   func() time.Time
}

type Bucket struct {
	tokens     int
	lastRefill time.Time
	mu         sync.Mutex
	// We need to know when it was last accessed to clean it up
	lastAccess time.Time
}

// NewRateLimiter allows limit requests per minute per client IP.
func NewRateLimiter(limit int) *RateLimiter {
	if limit <= 0 {
		limit = 10
	}
	return &RateLimiter{
		store: &sync.Map{},
		limit: limit,
		now:   time.Now,
	}
}

// Cleanup drops buckets idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	now := rl.now()
	rl.store.Range(func(key, value interface{}) bool {
		bucket := value.(*Bucket)
		bucket.mu.Lock()
		if now.Sub(bucket.lastAccess) > maxIdle {
			rl.store.Delete(key)
		}
		bucket.mu.Unlock()
		return true
	})
}

func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()

	val, _ := rl.store.LoadOrStore(key, &Bucket{
		tokens:     rl.limit,
		lastRefill: now,
		lastAccess: now,
	})

	bucket := val.(*Bucket)
	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	bucket.lastAccess = now

	// Rate is limit / 60 seconds
	elapsed := now.Sub(bucket.lastRefill)
	refillRate := float64(rl.limit) / 60.0
	refillTokens := int(elapsed.Seconds() * refillRate)

	if refillTokens > 0 {
		if bucket.tokens+refillTokens > rl.limit {
			bucket.tokens = rl.limit
		} else {
			bucket.tokens += refillTokens
		}
		bucket.lastRefill = now
	}

	if bucket.tokens > 0 {
		bucket.tokens--
		return true
	}

	return false
}

func (rl *RateLimiter) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !rl.Allow(ip) {
			w.Header().Set("Retry-After", strconv.Itoa(60))
			errors.WriteError(w, http.StatusTooManyRequests, errors.ErrCodeRateLimitExceeded, "Rate limit exceeded", nil)
			return
		}

		next(w, r)
	}
}
