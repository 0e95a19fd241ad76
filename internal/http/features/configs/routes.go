package configs

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the configs routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/configs", h.List)
	r.Post("/configs/new", h.Create)
	r.Post("/configs/{id}/delete", h.Delete)
	r.Post("/configs/{tenantId}/{id}", h.Update)
}
