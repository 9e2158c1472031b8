package middleware

import (
	"sync"
	"time"

	"contentengine/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// RateLimiter limits requests per client IP
type RateLimiter struct {
	requests int
	duration time.Duration

	mu      sync.Mutex
	clients map[string]*client
	stop    chan struct{}
	once    sync.Once
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows requests per duration for each IP, with bursts up to requests.
// A non-positive requests or duration disables limiting.
// Idle clients are forgotten after ten minutes; call Stop to end the sweep.
func NewRateLimiter(requests int, duration time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: requests,
		duration: duration,
		clients:  make(map[string]*client),
		stop:     make(chan struct{}),
	}
	go rl.cleanupLoop(5 * time.Minute)
	return rl
}

// Stop ends the background sweep
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for ip, c := range rl.clients {
				if time.Since(c.lastSeen) > 10*time.Minute {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		case <-rl.stop:
			return
		}
	}
}

// Disabled reports whether every request is let through
func (rl *RateLimiter) Disabled() bool {
	return rl.requests <= 0 || rl.duration <= 0
}

// Allow reports whether a request from ip may proceed
func (rl *RateLimiter) Allow(ip string) bool {
	if rl.Disabled() {
		return true
	}

	rl.mu.Lock()
	cl, exists := rl.clients[ip]
	if !exists {
		// Create new limiter: requests per duration
		limiter := rate.NewLimiter(rate.Every(rl.duration/time.Duration(rl.requests)), rl.requests)
		cl = &client{limiter: limiter}
		rl.clients[ip] = cl
	}
	cl.lastSeen = time.Now()
	rl.mu.Unlock()

	return cl.limiter.Allow()
}

// Handler returns the fiber middleware
func (rl *RateLimiter) Handler() fiber.Handler {
	if rl.Disabled() {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return func(c *fiber.Ctx) error {
		if !rl.Allow(c.IP()) {
			return utils.RateLimitedError("Rate limit exceeded. Please try again later.", nil).Localized("error_rate_limited")
		}
		return c.Next()
	}
}
