package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"taskboard/config"
	domainerrors "taskboard/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// errTooManyRequests is what the error handler renders on a tripped limit.
var errTooManyRequests = domainerrors.NewBaseError(
	http.StatusTooManyRequests,
	"RATE_LIMIT_EXCEEDED",
	"Too many requests. Please try again later.",
	"",
)

// RateLimitMiddleware throttles the credential-bearing auth endpoints per
// client IP, to slow down password and refresh-token guessing.
type RateLimitMiddleware struct {
	enabled bool
	rate    rate.Limit
	burst   int
	logger  *slog.Logger

	limiters    sync.Map // map[string]*rate.Limiter keyed by client IP
	mu          sync.Mutex
	lastCleanup time.Time
}

// NewRateLimitMiddleware is the constructor for RateLimitMiddleware.
func NewRateLimitMiddleware(cfg *config.Config, logger *slog.Logger) *RateLimitMiddleware {
	m := &RateLimitMiddleware{logger: logger, lastCleanup: time.Now()}
	if cfg.RateLimit == nil || !cfg.RateLimit.Enabled {
		return m
	}

	m.enabled = true
	m.rate = rate.Limit(cfg.RateLimit.RPS)
	m.burst = cfg.RateLimit.Burst
	if m.burst < 1 {
		m.burst = 1
	}

	return m
}

// Limit is the middleware function. With rate limiting disabled it passes
// requests straight through.
func (m *RateLimitMiddleware) Limit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !m.enabled {
			return next(c)
		}

		limiter := m.getLimiter(c.RealIP())
		if !limiter.Allow() {
			// Tell well-behaved clients when the next token frees up.
			reservation := limiter.Reserve()
			delay := reservation.Delay()
			reservation.Cancel()

			retryAfter := int(delay.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))

			m.logger.Warn("Rate limit exceeded",
				slog.String("ip", c.RealIP()),
				slog.String("path", c.Request().URL.Path),
			)

			return errTooManyRequests
		}

		return next(c)
	}
}

// getLimiter retrieves or creates a rate limiter for the given key.
func (m *RateLimitMiddleware) getLimiter(key string) *rate.Limiter {
	if limiter, ok := m.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(m.rate, m.burst)
	actual, _ := m.limiters.LoadOrStore(key, limiter)

	m.maybeCleanup()

	return actual.(*rate.Limiter)
}

// maybeCleanup drops limiters whose buckets are full again, so ephemeral
// client IPs do not accumulate forever.
func (m *RateLimitMiddleware) maybeCleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.lastCleanup) < 5*time.Minute {
		return
	}
	m.lastCleanup = time.Now()

	m.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(m.burst) {
			m.limiters.Delete(key)
		}

		return true
	})
}
