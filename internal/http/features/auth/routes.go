package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the sign-in routes, each form behind its rate limiter.
func (h *Handler) RegisterRoutes(r chi.Router, limiters map[string]func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(limiters["auth"])
		r.Get("/login", h.LoginPage)
		r.Post("/login", h.Login)
	})
	r.Group(func(r chi.Router) {
		r.Use(limiters["signup"])
		r.Get("/signup", h.SignupPage)
		r.Post("/signup", h.Signup)
	})
	r.Group(func(r chi.Router) {
		r.Use(limiters["reset"])
		r.Get("/forgot-password", h.ForgotPage)
		r.Post("/forgot-password", h.ForgotPassword)
	})
	r.Post("/logout", h.Logout)
}
