package httpx

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// maxTrackedClients bounds the in-memory limiter; the least recently seen
// clients are forgotten first.
const maxTrackedClients = 10_000

// RateLimiter is a per-client fixed-window limiter for a single replica.
type RateLimiter struct {
	limit   int
	window  time.Duration
	mu      sync.Mutex
	clients *expirable.LRU[string, *fixedWindow]
	now     func() time.Time
}

type fixedWindow struct {
	count   int
	resetAt time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	limit, window = limitDefaults(limit, window)
	return &RateLimiter{
		limit:   limit,
		window:  window,
		clients: expirable.NewLRU[string, *fixedWindow](maxTrackedClients, nil, window),
		now:     time.Now,
	}
}

func (rl *RateLimiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			count, resetIn := rl.hit(clientKey(r))
			if !admit(w, rl.limit, count, resetIn) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// hit counts one request for key and returns the count within the current
// window and the time until it resets.
func (rl *RateLimiter) hit(key string) (int64, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	fw, ok := rl.clients.Get(key)
	if !ok || !now.Before(fw.resetAt) {
		fw = &fixedWindow{resetAt: now.Add(rl.window)}
		rl.clients.Add(key, fw)
	}
	fw.count++
	return int64(fw.count), fw.resetAt.Sub(now)
}

func limitDefaults(limit int, window time.Duration) (int, time.Duration) {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return limit, window
}

// admit sets the rate limit headers and writes a 429 once count exceeds
// limit. It reports whether the request may proceed.
func admit(w http.ResponseWriter, limit int, count int64, resetIn time.Duration) bool {
	remaining := int64(limit) - count
	if remaining < 0 {
		remaining = 0
	}
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	if count <= int64(limit) {
		return true
	}
	secs := int(resetIn.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	h.Set("Retry-After", strconv.Itoa(secs))
	WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many requests, try again later")
	return false
}

// clientKey prefers the first X-Forwarded-For hop; the site runs behind a
// proxy that sets it.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
