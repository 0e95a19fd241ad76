package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tendant/simple-admin-console/internal/httputil"
	"github.com/tendant/simple-admin-console/internal/i18n"
)

func TestLocale(t *testing.T) {
	catalog, err := i18n.Load("en")
	if err != nil {
		t.Fatalf("i18n.Load() error = %v", err)
	}

	var got string
	handler := Locale(catalog)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = i18n.LanguageFrom(r.Context())
	}))

	tests := []struct {
		name   string
		cookie string
		accept string
		want   string
	}{
		{name: "default", want: "en"},
		{name: "cookie", cookie: "sk", accept: "cs", want: "sk"},
		{name: "accept language", accept: "cs,en;q=0.5", want: "cs-CZ"},
		{name: "unsupported cookie falls through", cookie: "de", accept: "sk", want: "sk"},
		{name: "unsupported everything", cookie: "de", accept: "fr", want: "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: httputil.LanguageCookie, Value: tt.cookie})
			}
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if got != tt.want {
				t.Errorf("language = %q, want %q", got, tt.want)
			}
			if w.Header().Get("Content-Language") != tt.want {
				t.Errorf("Content-Language = %q, want %q", w.Header().Get("Content-Language"), tt.want)
			}
		})
	}
}
