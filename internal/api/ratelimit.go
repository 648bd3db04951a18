package api

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter counts requests per key over a sliding window
type RateLimiter struct {
	mu       sync.RWMutex
	clients  map[string]*clientWindow
	limit    int
	window   time.Duration
	keyFunc  func(r *http.Request) string
	scope    string
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

// clientWindow tracks requests in a sliding time window
type clientWindow struct {
	timestamps []time.Time
	mu         sync.Mutex
}

// RateLimitConfig defines rate limit parameters
type RateLimitConfig struct {
	Limit   int
	Window  time.Duration
	KeyFunc func(r *http.Request) string // defaults to GetClientIP
	// Scope names the limiter in logs, e.g. "global" or "summaries"
	Scope string
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = GetClientIP
	}

	rl := &RateLimiter{
		clients: make(map[string]*clientWindow),
		limit:   cfg.Limit,
		window:  cfg.Window,
		keyFunc: cfg.KeyFunc,
		scope:   cfg.Scope,
		done:    make(chan struct{}),
	}

	rl.ticker = time.NewTicker(cfg.Window)
	go rl.cleanup()

	return rl
}

// cleanup periodically removes expired entries
func (rl *RateLimiter) cleanup() {
	for {
		select {
		case <-rl.ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for key, sw := range rl.clients {
				sw.mu.Lock()
				sw.expire(now, rl.window)
				if len(sw.timestamps) == 0 {
					delete(rl.clients, key)
				}
				sw.mu.Unlock()
			}
			rl.mu.Unlock()
		case <-rl.done:
			rl.ticker.Stop()
			return
		}
	}
}

// Stop stops the cleanup goroutine. Safe to call multiple times.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.done)
	})
}

// Allow checks if a request should be allowed
func (rl *RateLimiter) Allow(r *http.Request) bool {
	key := rl.keyFunc(r)
	now := time.Now()

	rl.mu.Lock()
	sw, exists := rl.clients[key]
	if !exists {
		sw = &clientWindow{}
		rl.clients[key] = sw
	}
	rl.mu.Unlock()

	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.expire(now, rl.window)
	if len(sw.timestamps) >= rl.limit {
		return false
	}
	sw.timestamps = append(sw.timestamps, now)
	return true
}

// expire removes timestamps older than the window
func (sw *clientWindow) expire(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	i := 0
	for i < len(sw.timestamps) && sw.timestamps[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		sw.timestamps = sw.timestamps[i:]
	}
}

// Middleware returns HTTP middleware for rate limiting
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(r) {
			slog.Warn("Rate limit exceeded", "scope", rl.scope, "client", rl.keyFunc(r), "path", r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			respondJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "Rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetClientIP returns the client host without the port. RealIP has already
// rewritten RemoteAddr from the proxy headers, so they are not read again.
func GetClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimiters holds the global limiter and the stricter one in front of the
// summary endpoints, which re-read every source per request
type RateLimiters struct {
	Global    *RateLimiter
	Summaries *RateLimiter
}

// NewRateLimiters creates both limiters with per-minute windows
func NewRateLimiters(globalPerMinute, summariesPerMinute int) *RateLimiters {
	return &RateLimiters{
		Global: NewRateLimiter(RateLimitConfig{
			Limit:  globalPerMinute,
			Window: time.Minute,
			Scope:  "global",
		}),
		Summaries: NewRateLimiter(RateLimitConfig{
			Limit:  summariesPerMinute,
			Window: time.Minute,
			Scope:  "summaries",
		}),
	}
}

// Stop stops the cleanup goroutines of both limiters
func (rls *RateLimiters) Stop() {
	rls.Global.Stop()
	rls.Summaries.Stop()
}
