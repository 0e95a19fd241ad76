package posts

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the posts routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/posts", h.List)
	r.Get("/posts/slug", h.Slug)
	r.Post("/posts/new", h.Create)
	r.Post("/posts/{id}", h.Update)
	r.Post("/posts/{id}/delete", h.Delete)
}
