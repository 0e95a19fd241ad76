package users

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the users routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/users", h.List)
	r.Post("/users/invite", h.Invite)
	r.Post("/users/{id}/role", h.ChangeRole)
	r.Post("/users/{id}/delete", h.Delete)
}
