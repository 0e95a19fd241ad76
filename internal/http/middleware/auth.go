package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tendant/simple-admin-console/internal/httputil"
	"github.com/tendant/simple-admin-console/internal/session"
	"github.com/tendant/simple-admin-console/pkg/domain"
)

// TokenChecker asks the backend whether a token is still valid.
type TokenChecker interface {
	CheckToken(ctx context.Context, token string) error
}

// SessionResolver turns a valid token into the signed-in user's session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) *domain.Session
}

// LoginPath is where unauthenticated requests are sent.
const LoginPath = "/login"

// RequireSession gates a route on a valid token cookie. The token is checked
// with the backend on every request. A token the backend rejects is cleared
// and the browser is sent to the login page. When the check itself fails the
// cookie is kept and the request gets a 503. On success the resolved session
// is stored in the request context.
func RequireSession(checker TokenChecker, resolver SessionResolver, cookies httputil.CookieConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := httputil.GetTokenFromCookie(r)
			if !ok {
				redirectToLogin(w, r)
				return
			}

			if err := checker.CheckToken(r.Context(), token); err != nil {
				switch {
				case errors.Is(err, context.Canceled):
				case tokenRejected(err):
					logger.Info("token rejected", "path", r.URL.Path, "error", err)
					httputil.ClearTokenCookie(w, cookies)
					redirectToLogin(w, r)
				default:
					logger.Error("token check failed", "path", r.URL.Path, "error", err)
					http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
				}
				return
			}

			s := resolver.Resolve(r.Context(), token)
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
		})
	}
}

// RequireRoles lets a request through only when the session's role is one of
// roles. Everyone else is sent to the home page.
func RequireRoles(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := session.FromContext(r.Context())
			if !ok || !s.Authorized() || !s.Role.HasAnyRole(roles...) {
				httputil.Redirect(w, r, "/")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenRejected(err error) bool {
	return errors.Is(err, domain.ErrInvalidToken) ||
		errors.Is(err, domain.ErrUnauthorized) ||
		errors.Is(err, domain.ErrMissingToken)
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := LoginPath
	if r.Method == http.MethodGet && r.URL.Path != "/" {
		target += "?next=" + url.QueryEscape(r.URL.RequestURI())
	}
	httputil.Redirect(w, r, target)
}
