package tenants

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the tenants routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/tenants", h.List)
	r.Post("/tenants/new", h.Create)
	r.Post("/tenants/{id}", h.Update)
	r.Post("/tenants/{id}/delete", h.Delete)
}
