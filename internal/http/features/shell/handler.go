package shell

import (
	"net/http"

	"github.com/tendant/simple-admin-console/internal/http/features/pages"
)

// Handler renders the signed-in landing page.
type Handler struct {
	pages *pages.Renderer
}

// NewHandler creates a new shell handler.
func NewHandler(renderer *pages.Renderer) *Handler {
	return &Handler{pages: renderer}
}

// Home renders the landing page. Its content depends only on the sidebar,
// which the layout filters by role.
// GET /
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, "home", pages.Page{Title: "home.title", Active: "home"})
}
