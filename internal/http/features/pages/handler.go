package pages

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/tendant/simple-admin-console/internal/httputil"
	"github.com/tendant/simple-admin-console/internal/i18n"
	"github.com/tendant/simple-admin-console/internal/session"
	"github.com/tendant/simple-admin-console/pkg/domain"
)

// MenuItem is one entry of the sidebar.
type MenuItem struct {
	Key   string
	Path  string
	Roles []domain.Role
}

// MenuFunc returns the sidebar entries visible to a role.
type MenuFunc func(domain.Role) []MenuItem

// Renderer renders full pages inside the shared layout.
type Renderer struct {
	templates map[string]*template.Template
	catalog   *i18n.Catalog
	menu      MenuFunc
	cookies   httputil.CookieConfig
	logger    *slog.Logger
}

// Options configures a Renderer.
type Options struct {
	Catalog  *i18n.Catalog
	Menu     MenuFunc
	Cookies  httputil.CookieConfig
	ImageURL func(string) string
	Logger   *slog.Logger
}

// NewRenderer parses templates/layout/*.html once and every
// templates/pages/*.html on top of its own copy of the layout.
func NewRenderer(fsys fs.FS, opts Options) (*Renderer, error) {
	imageURL := opts.ImageURL
	if imageURL == nil {
		imageURL = func(string) string { return "" }
	}
	funcs := template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02")
		},
		"datetime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02 15:04")
		},
		"imageURL":  imageURL,
		"hasPrefix": strings.HasPrefix,
	}

	base, err := template.New("layout").Funcs(funcs).ParseFS(fsys, "templates/layout/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(fsys, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	templates := make(map[string]*template.Template, len(files))
	for _, file := range files {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(fsys, file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		templates[strings.TrimSuffix(path.Base(file), ".html")] = t
	}

	menu := opts.Menu
	if menu == nil {
		menu = func(domain.Role) []MenuItem { return nil }
	}

	return &Renderer{
		templates: templates,
		catalog:   opts.Catalog,
		menu:      menu,
		cookies:   opts.Cookies,
		logger:    opts.Logger,
	}, nil
}

// Page holds data for template rendering.
type Page struct {
	Title     string
	Active    string
	Lang      string
	Languages []i18n.Language
	Session   *domain.Session
	Menu      []MenuItem
	Flash     *httputil.Flash
	Path      string
	Data      any

	catalog *i18n.Catalog
}

// T translates key into the page's language.
func (p *Page) T(key string, args ...any) string {
	if p.catalog == nil {
		return key
	}
	return p.catalog.T(p.Lang, key, args...)
}

// Render renders the named page with status 200.
func (h *Renderer) Render(w http.ResponseWriter, r *http.Request, name string, p Page) {
	h.RenderStatus(w, r, http.StatusOK, name, p)
}

// RenderStatus renders the named page inside the layout. The request's
// session, language, menu and pending flash are filled in.
func (h *Renderer) RenderStatus(w http.ResponseWriter, r *http.Request, status int, name string, p Page) {
	t, ok := h.templates[name]
	if !ok {
		h.logger.Error("unknown page template", "template", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.catalog = h.catalog
	p.Lang = i18n.LanguageFrom(r.Context())
	if p.Lang == "" && h.catalog != nil {
		p.Lang = h.catalog.Default()
	}
	p.Languages = i18n.Supported
	p.Path = r.URL.RequestURI()
	if s, ok := session.FromContext(r.Context()); ok {
		p.Session = s
		p.Menu = h.menu(s.Role)
	}
	if p.Flash == nil {
		p.Flash = httputil.PopFlash(w, r, h.cookies)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", &p); err != nil {
		h.logger.Error("failed to render page", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Flash queues a toast for the next page.
func (h *Renderer) Flash(w http.ResponseWriter, kind, message string) {
	httputil.SetFlash(w, httputil.Flash{Kind: kind, Message: message}, h.cookies)
}

// T translates key into the request's language.
func (h *Renderer) T(r *http.Request, key string, args ...any) string {
	lang := i18n.LanguageFrom(r.Context())
	if lang == "" {
		lang = h.catalog.Default()
	}
	return h.catalog.T(lang, key, args...)
}

// FieldErrors translates per-field message keys.
func (h *Renderer) FieldErrors(r *http.Request, fields map[string]string) map[string]string {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(fields))
	for field, key := range fields {
		out[field] = h.T(r, key)
	}
	return out
}

// ErrorFlash is an error toast for the page being rendered.
func (h *Renderer) ErrorFlash(r *http.Request, key string) *httputil.Flash {
	return &httputil.Flash{Kind: httputil.FlashError, Message: h.T(r, key)}
}

// Fail logs err, queues the translated key as an error toast and redirects
// to target. Canceled requests get no response.
func (h *Renderer) Fail(w http.ResponseWriter, r *http.Request, msg string, err error, key, target string) {
	if errors.Is(err, context.Canceled) {
		return
	}
	h.logger.Error(msg, "error", err, "path", r.URL.Path)
	h.Flash(w, httputil.FlashError, h.T(r, key))
	httputil.Redirect(w, r, target)
}
