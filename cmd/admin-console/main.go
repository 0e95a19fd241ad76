package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tendant/simple-admin-console/internal/config"
	httpserver "github.com/tendant/simple-admin-console/internal/http"
	"github.com/tendant/simple-admin-console/internal/http/features/pages"
	"github.com/tendant/simple-admin-console/internal/http/features/shell"
	"github.com/tendant/simple-admin-console/internal/httputil"
	"github.com/tendant/simple-admin-console/internal/i18n"
	"github.com/tendant/simple-admin-console/internal/telemetry"
	"github.com/tendant/simple-admin-console/pkg/apiclient"
	"github.com/tendant/simple-admin-console/pkg/auth"
	"github.com/tendant/simple-admin-console/web"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	shutdownTracing := telemetry.Setup(context.Background(), cfg, logger)

	// Backend client
	api := apiclient.New(apiclient.Options{
		BaseURL:    cfg.APIBaseURL,
		Timeout:    cfg.APITimeout,
		RetryCount: cfg.APIRetryCount,
		Logger:     logger,
	})
	logger.Info("backend configured", "base_url", cfg.APIBaseURL)

	catalog, err := i18n.Load(cfg.DefaultLanguage)
	if err != nil {
		logger.Error("failed to load translations", "error", err)
		os.Exit(1)
	}

	cookies := httputil.DefaultCookieConfig()
	cookies.Domain = cfg.CookieDomain
	cookies.Secure = cfg.CookieSecure
	cookies.TokenTTL = cfg.TokenCookieTTL

	renderer, err := pages.NewRenderer(web.FS, pages.Options{
		Catalog:  catalog,
		Menu:     shell.VisibleMenu,
		Cookies:  cookies,
		ImageURL: cfg.ImageURL,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to load page templates", "error", err)
		os.Exit(1)
	}

	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		logger.Error("failed to load static assets", "error", err)
		os.Exit(1)
	}

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:          logger,
		API:             api,
		Catalog:         catalog,
		Pages:           renderer,
		Static:          static,
		Cookies:         cookies,
		PasswordPolicy:  auth.NewPasswordPolicy(cfg.PasswordPolicy),
		APIBaseURL:      cfg.APIBaseURL,
		MaxUploadSize:   cfg.MaxUploadSize,
		RateLimitConfig: cfg.RateLimit,
		SecurityHeaders: cfg.SecurityHeaders,
		Validation:      cfg.Validation,
	})

	// Create HTTP server
	addr := cfg.Addr()
	server := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(router, cfg.ServiceName),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Error("tracer shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
