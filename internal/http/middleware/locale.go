package middleware

import (
	"net/http"

	"github.com/tendant/simple-admin-console/internal/httputil"
	"github.com/tendant/simple-admin-console/internal/i18n"
)

// Locale stores the request's display language in the context: the language
// cookie wins, then Accept-Language, then the catalog default.
func Locale(catalog *i18n.Catalog) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := catalog.Match(httputil.GetLanguageFromCookie(r), r.Header.Get("Accept-Language"))
			w.Header().Set("Content-Language", code)
			next.ServeHTTP(w, r.WithContext(i18n.WithLanguage(r.Context(), code)))
		})
	}
}
