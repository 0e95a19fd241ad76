package http

import (
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/tendant/simple-admin-console/internal/config"
	"github.com/tendant/simple-admin-console/internal/http/features/auth"
	"github.com/tendant/simple-admin-console/internal/http/features/configs"
	"github.com/tendant/simple-admin-console/internal/http/features/hours"
	"github.com/tendant/simple-admin-console/internal/http/features/language"
	"github.com/tendant/simple-admin-console/internal/http/features/pages"
	"github.com/tendant/simple-admin-console/internal/http/features/posts"
	"github.com/tendant/simple-admin-console/internal/http/features/shell"
	"github.com/tendant/simple-admin-console/internal/http/features/tenants"
	"github.com/tendant/simple-admin-console/internal/http/features/users"
	"github.com/tendant/simple-admin-console/internal/http/middleware"
	"github.com/tendant/simple-admin-console/internal/httputil"
	"github.com/tendant/simple-admin-console/internal/i18n"
	"github.com/tendant/simple-admin-console/internal/session"
	"github.com/tendant/simple-admin-console/pkg/apiclient"
	pkgauth "github.com/tendant/simple-admin-console/pkg/auth"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger          *slog.Logger
	API             *apiclient.Client
	Catalog         *i18n.Catalog
	Pages           *pages.Renderer
	Static          fs.FS
	Cookies         httputil.CookieConfig
	PasswordPolicy  *pkgauth.PasswordPolicy
	APIBaseURL      string
	MaxUploadSize   int64
	RateLimitConfig config.RateLimitConfig
	SecurityHeaders config.SecurityHeadersConfig
	Validation      config.ValidationConfig
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders, origin(cfg.APIBaseURL)))
	r.Use(middleware.Locale(cfg.Catalog))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(cfg.Static))))
	}

	// Create rate limiters for different endpoint types
	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, cfg.Logger)

	authHandler := auth.NewHandler(cfg.Logger, cfg.API, cfg.Pages, cfg.Cookies, cfg.PasswordPolicy)
	languageHandler := language.NewHandler(cfg.Logger, cfg.Catalog, cfg.Cookies)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestSizeLimit(cfg.Validation.MaxRequestBodySize))
		authHandler.RegisterRoutes(r, rateLimiters)
		languageHandler.RegisterRoutes(r)
	})

	// Everything below needs a signed-in user
	sessions := session.NewReader(cfg.API, cfg.Logger)
	shellHandler := shell.NewHandler(cfg.Pages)
	postsHandler := posts.NewHandler(cfg.Logger, cfg.API, cfg.Pages, cfg.Catalog, cfg.MaxUploadSize).
		WithLengthLimits(cfg.Validation.MaxTitleLength, cfg.Validation.MaxFieldLength)
	emailRules := pkgauth.EmailRules{
		Strict:          cfg.Validation.EmailStrict,
		BlockDisposable: cfg.Validation.EmailBlockDisposable,
	}
	tenantsHandler := tenants.NewHandler(cfg.Logger, cfg.API, cfg.Pages, cfg.Catalog).WithEmailRules(emailRules)
	usersHandler := users.NewHandler(cfg.Logger, cfg.API, cfg.Pages, cfg.Catalog).WithEmailRules(emailRules)
	configsHandler := configs.NewHandler(cfg.Logger, cfg.API, cfg.Pages, cfg.Catalog)
	hoursHandler := hours.NewHandler(cfg.Logger, cfg.API, cfg.Pages)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(cfg.API, sessions, cfg.Cookies, cfg.Logger))

		r.Get("/", shellHandler.Home)

		// Post images are uploaded through multipart forms
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequestSizeLimit(cfg.MaxUploadSize))
			r.Use(middleware.RequireRoles(shell.Roles("posts")...))
			postsHandler.RegisterRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequestSizeLimit(cfg.Validation.MaxRequestBodySize))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(shell.Roles("hours")...))
				hoursHandler.RegisterRoutes(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(shell.Roles("users")...))
				usersHandler.RegisterRoutes(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(shell.Roles("configs")...))
				configsHandler.RegisterRoutes(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(shell.Roles("tenants")...))
				tenantsHandler.RegisterRoutes(r)
			})
		})
	})

	return r
}

// origin returns the scheme and host of rawURL, or "" when it has none.
func origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
