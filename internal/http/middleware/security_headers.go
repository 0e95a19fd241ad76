package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tendant/simple-admin-console/internal/config"
)

// ConsoleCSP builds the default Content-Security-Policy for the console's
// pages. Post images are served by the backend, so its origin is allowed as
// an image source; previews of chosen files use blob: URLs.
func ConsoleCSP(imageOrigin string) string {
	img := []string{"'self'", "blob:", "data:"}
	if imageOrigin != "" {
		img = append(img, imageOrigin)
	}
	return strings.Join([]string{
		"default-src 'self'",
		"img-src " + strings.Join(img, " "),
		"script-src 'self' 'unsafe-inline'",
		"style-src 'self' 'unsafe-inline'",
		"form-action 'self'",
		"frame-ancestors 'none'",
	}, "; ")
}

// SecurityHeaders creates middleware that applies security headers. When the
// configuration has no CSP, ConsoleCSP(imageOrigin) is used. Authenticated
// pages must not be cached, so every response gets Cache-Control: no-store
// unless the handler sets its own.
func SecurityHeaders(cfg config.SecurityHeadersConfig, imageOrigin string) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	csp := cfg.CSP
	if csp == "" {
		csp = ConsoleCSP(imageOrigin)
	}

	headers := map[string]string{
		"Content-Security-Policy": csp,
		"X-Frame-Options":         cfg.FrameOptions,
		"X-Content-Type-Options":  cfg.ContentTypeOptions,
		"X-XSS-Protection":        cfg.XSSProtection,
		"Referrer-Policy":         cfg.ReferrerPolicy,
		"Permissions-Policy":      cfg.PermissionsPolicy,
		"Cache-Control":           "no-store",
	}
	if cfg.HSTSMaxAge > 0 {
		headers["Strict-Transport-Security"] = fmt.Sprintf("max-age=%d; includeSubDomains", cfg.HSTSMaxAge)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for k, v := range headers {
				if v != "" {
					h.Set(k, v)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
