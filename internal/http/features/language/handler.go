package language

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/simple-admin-console/internal/httputil"
	"github.com/tendant/simple-admin-console/internal/i18n"
)

// Handler switches the display language.
type Handler struct {
	logger  *slog.Logger
	catalog *i18n.Catalog
	cookies httputil.CookieConfig
}

// NewHandler creates a new language handler.
func NewHandler(logger *slog.Logger, catalog *i18n.Catalog, cookies httputil.CookieConfig) *Handler {
	return &Handler{
		logger:  logger,
		catalog: catalog,
		cookies: cookies,
	}
}

// Switch stores the chosen language and returns to the page it came from.
// Unsupported codes leave the cookie untouched.
// POST /language
func (h *Handler) Switch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if code, ok := h.catalog.Lookup(r.PostForm.Get("language")); ok {
		httputil.SetLanguageCookie(w, code, h.cookies)
	} else {
		h.logger.Warn("unsupported language requested", "language", r.PostForm.Get("language"))
	}

	httputil.Redirect(w, r, httputil.SafeReturnPath(r.PostForm.Get("return"), "/"))
}

// RegisterRoutes registers the language route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/language", h.Switch)
}
