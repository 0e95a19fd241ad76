// Package pagestest builds the page renderer and requests for handler tests.
package pagestest

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/tendant/simple-admin-console/internal/http/features/pages"
	"github.com/tendant/simple-admin-console/internal/http/features/shell"
	"github.com/tendant/simple-admin-console/internal/httputil"
	"github.com/tendant/simple-admin-console/internal/i18n"
	"github.com/tendant/simple-admin-console/internal/session"
	"github.com/tendant/simple-admin-console/pkg/domain"
	"github.com/tendant/simple-admin-console/web"
)

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Renderer parses the embedded templates with the English catalog.
func Renderer(t testing.TB) (*pages.Renderer, *i18n.Catalog) {
	t.Helper()
	catalog, err := i18n.Load("en")
	if err != nil {
		t.Fatalf("i18n.Load() error = %v", err)
	}
	renderer, err := pages.NewRenderer(web.FS, pages.Options{
		Catalog:  catalog,
		Menu:     shell.VisibleMenu,
		Cookies:  httputil.DefaultCookieConfig(),
		ImageURL: func(name string) string { return "https://api.test/img/posts/" + url.PathEscape(name) },
		Logger:   Logger(),
	})
	if err != nil {
		t.Fatalf("pages.NewRenderer() error = %v", err)
	}
	return renderer, catalog
}

// Request builds a request carrying s and the English language.
// A non-nil form is sent url-encoded.
func Request(method, target string, form url.Values, s *domain.Session) *http.Request {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	r := httptest.NewRequest(method, target, body)
	if form != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	ctx := i18n.WithLanguage(r.Context(), "en")
	if s != nil {
		ctx = session.WithSession(ctx, s)
	}
	return r.WithContext(ctx)
}

// Flash decodes the flash cookie set on rec, or nil.
func Flash(t testing.TB, rec *httptest.ResponseRecorder) *httputil.Flash {
	t.Helper()
	res := rec.Result()
	defer res.Body.Close()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	found := false
	for _, c := range res.Cookies() {
		if c.Name == httputil.FlashCookie && c.Value != "" {
			req.AddCookie(c)
			found = true
		}
	}
	if !found {
		return nil
	}
	return httputil.PopFlash(httptest.NewRecorder(), req, httputil.DefaultCookieConfig())
}
