package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/tendant/simple-admin-console/internal/config"
)

// RateLimitConfig holds rate limiting configuration for a specific endpoint type.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Logger   *slog.Logger
}

// RateLimit creates an IP-based rate limiter middleware with logging.
// Only POSTs count; rendering the form is never limited.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	limiter := httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Logger != nil {
				cfg.Logger.Warn("rate limit exceeded",
					"ip", r.RemoteAddr,
					"path", r.URL.Path,
					"method", r.Method,
					"user_agent", r.UserAgent(),
				)
			}
			http.Error(w, "Too many attempts. Please try again later.", http.StatusTooManyRequests)
		}),
	)
	return func(next http.Handler) http.Handler {
		limited := limiter(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

// NoRateLimit returns a no-op middleware when rate limiting is disabled.
func NoRateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return next
	}
}

// CreateRateLimiters creates rate limiting middleware functions based on configuration.
// Keys: "auth" (login), "reset" (forgot password), "signup" (invite acceptance).
func CreateRateLimiters(cfg config.RateLimitConfig, logger *slog.Logger) map[string]func(http.Handler) http.Handler {
	if !cfg.Enabled {
		noOp := NoRateLimit()
		return map[string]func(http.Handler) http.Handler{
			"auth":   noOp,
			"reset":  noOp,
			"signup": noOp,
		}
	}

	return map[string]func(http.Handler) http.Handler{
		"auth": RateLimit(RateLimitConfig{
			Requests: cfg.AuthRequestsPerMinute,
			Window:   time.Duration(cfg.AuthWindowMinutes) * time.Minute,
			Logger:   logger,
		}),
		"reset": RateLimit(RateLimitConfig{
			Requests: cfg.ResetRequestsPerWindow,
			Window:   time.Duration(cfg.ResetWindowMinutes) * time.Minute,
			Logger:   logger,
		}),
		"signup": RateLimit(RateLimitConfig{
			Requests: cfg.SignupRequestsPerWindow,
			Window:   time.Duration(cfg.SignupWindowMinutes) * time.Minute,
			Logger:   logger,
		}),
	}
}
