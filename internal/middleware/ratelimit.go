package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fashionai/stylist-service/internal/core/ports"
)

// RateLimitMiddleware enforces per-client request limits using a
// RateLimitService backend. The backend may be Redis-based or in-memory
// depending on deployment.
type RateLimitMiddleware struct {
	limiter ports.RateLimitService
	limit   int
	window  time.Duration
	logger  *zap.Logger
}

// NewRateLimitMiddleware creates the rate limiting middleware.
//
// Parameters:
//   - limiter: Backend tracking request counts per identifier
//   - limit: Maximum requests allowed per window
//   - window: Sliding window duration
//   - logger: Zap logger for limit events
//
// Returns:
//   - *RateLimitMiddleware: Configured middleware instance
func NewRateLimitMiddleware(limiter ports.RateLimitService, limit int, window time.Duration, logger *zap.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		limit:   limit,
		window:  window,
		logger:  logger,
	}
}

// Middleware applies the rate limit keyed by client IP. Backend errors
// fail open; an unreachable limiter must not take the API down with it.
func (m *RateLimitMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := GetClientIP(r)

		allowed, err := m.limiter.Allow(r.Context(), clientIP, m.limit, m.window)

		if err != nil {
			m.logger.Warn("rate limiter unavailable, allowing request",
				zap.String("client_ip", clientIP),
				zap.Error(err))

			next.ServeHTTP(w, r)

			return
		}

		if !allowed {
			m.logger.Debug("rate limit exceeded",
				zap.String("client_ip", clientIP))

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", m.window.String())
			w.WriteHeader(http.StatusTooManyRequests)

			body := map[string]interface{}{
				"success": false,
				"error":   "Too many requests",
			}

			if err := json.NewEncoder(w).Encode(body); err != nil {
				m.logger.Error("failed to encode response", zap.Error(err))
			}

			return
		}

		next.ServeHTTP(w, r)
	})
}
