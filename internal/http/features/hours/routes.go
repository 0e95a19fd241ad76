package hours

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the opening hours routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/hours", h.Show)
	r.Post("/hours", h.Save)
}
