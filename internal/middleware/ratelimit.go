package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/portfolio/internal/apperror"
)

// rateWindow counts one client's requests in the current fixed window.
type rateWindow struct {
	count int
	start time.Time
}

// rateLimiter keeps per-IP windows in memory.
type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string]*rateWindow
	now     func() time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*rateWindow),
		now:     time.Now,
	}
}

// allow records a request from ip and reports whether it is within limit.
// Expired windows are swept lazily so no background goroutine is needed.
func (l *rateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.clients) > 1024 {
		for k, w := range l.clients {
			if now.Sub(w.start) > l.window {
				delete(l.clients, k)
			}
		}
	}

	w, ok := l.clients[ip]
	if !ok || now.Sub(w.start) > l.window {
		l.clients[ip] = &rateWindow{count: 1, start: now}
		return true
	}
	w.count++
	return w.count <= l.limit
}

// RateLimit allows limit requests per client IP within each window and
// answers the rest with 429.
func RateLimit(limit int, window time.Duration) echo.MiddlewareFunc {
	l := newRateLimiter(limit, window)
	message := fmt.Sprintf("too many requests; try again in %s", window)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.allow(c.RealIP()) {
				return apperror.NewTooManyRequests(message)
			}
			return next(c)
		}
	}
}
