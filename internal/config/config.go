package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	// Server
	ServerAddr string
	ServerPort int

	// Backend API
	APIBaseURL    string
	APITimeout    time.Duration
	APIRetryCount int

	// Cookies
	CookieSecure   bool
	CookieDomain   string
	TokenCookieTTL time.Duration

	DefaultLanguage string
	MaxUploadSize   int64

	// Telemetry
	ServiceName  string
	OTLPEndpoint string
	OTLPInsecure bool

	PasswordPolicy  PasswordPolicyConfig
	RateLimit       RateLimitConfig
	SecurityHeaders SecurityHeadersConfig
	Validation      ValidationConfig
}

// PasswordPolicyConfig configures the signup password policy.
type PasswordPolicyConfig struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumber    bool
	RequireSpecial   bool
	SpecialChars     string
	// AllowedChars defaults to ASCII letters and digits plus SpecialChars.
	AllowedChars string
}

// RateLimitConfig configures per-IP limits on the unauthenticated forms.
type RateLimitConfig struct {
	Enabled bool

	AuthRequestsPerMinute int
	AuthWindowMinutes     int

	ResetRequestsPerWindow int
	ResetWindowMinutes     int

	SignupRequestsPerWindow int
	SignupWindowMinutes     int
}

// SecurityHeadersConfig configures the response security headers.
type SecurityHeadersConfig struct {
	Enabled            bool
	CSP                string
	HSTSMaxAge         int
	FrameOptions       string
	ContentTypeOptions string
	XSSProtection      string
	ReferrerPolicy     string
	PermissionsPolicy  string
}

// ValidationConfig bounds form input.
type ValidationConfig struct {
	MaxRequestBodySize int64
	MaxTitleLength     int
	MaxFieldLength     int

	// EmailStrict limits invited and tenant owner addresses to unquoted ASCII.
	EmailStrict bool
	// EmailBlockDisposable rejects known throwaway mail domains.
	EmailBlockDisposable bool
}

const asciiAlnum = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		// Server defaults
		ServerAddr: getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort: getEnvInt("SERVER_PORT", 8080),

		APIBaseURL:    strings.TrimRight(getEnv("API_BASE_URL", ""), "/"),
		APITimeout:    getEnvDuration("API_TIMEOUT", 15*time.Second),
		APIRetryCount: getEnvInt("API_RETRY_COUNT", 0),

		CookieSecure:   getEnvBool("COOKIE_SECURE", false),
		CookieDomain:   getEnv("COOKIE_DOMAIN", ""),
		TokenCookieTTL: getEnvDuration("TOKEN_COOKIE_TTL", 24*time.Hour),

		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),
		MaxUploadSize:   int64(getEnvInt("MAX_UPLOAD_SIZE", 10<<20)),

		ServiceName:  getEnv("SERVICE_NAME", "admin-console"),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),

		PasswordPolicy: PasswordPolicyConfig{
			MinLength:        getEnvInt("PASSWORD_MIN_LENGTH", 8),
			RequireUppercase: getEnvBool("PASSWORD_REQUIRE_UPPERCASE", true),
			RequireLowercase: getEnvBool("PASSWORD_REQUIRE_LOWERCASE", false),
			RequireNumber:    getEnvBool("PASSWORD_REQUIRE_NUMBER", true),
			RequireSpecial:   getEnvBool("PASSWORD_REQUIRE_SPECIAL", true),
			SpecialChars:     getEnv("PASSWORD_SPECIAL_CHARS", `!@#$%^&*(),.?":{}|<>`),
		},

		RateLimit: RateLimitConfig{
			Enabled:                 getEnvBool("RATE_LIMIT_ENABLED", true),
			AuthRequestsPerMinute:   getEnvInt("RATE_LIMIT_AUTH_REQUESTS", 10),
			AuthWindowMinutes:       getEnvInt("RATE_LIMIT_AUTH_WINDOW_MINUTES", 1),
			ResetRequestsPerWindow:  getEnvInt("RATE_LIMIT_RESET_REQUESTS", 3),
			ResetWindowMinutes:      getEnvInt("RATE_LIMIT_RESET_WINDOW_MINUTES", 60),
			SignupRequestsPerWindow: getEnvInt("RATE_LIMIT_SIGNUP_REQUESTS", 5),
			SignupWindowMinutes:     getEnvInt("RATE_LIMIT_SIGNUP_WINDOW_MINUTES", 60),
		},

		SecurityHeaders: SecurityHeadersConfig{
			Enabled:            getEnvBool("SECURITY_HEADERS_ENABLED", true),
			CSP:                getEnv("SECURITY_HEADERS_CSP", ""),
			HSTSMaxAge:         getEnvInt("SECURITY_HEADERS_HSTS_MAX_AGE", 0),
			FrameOptions:       getEnv("SECURITY_HEADERS_FRAME_OPTIONS", "DENY"),
			ContentTypeOptions: getEnv("SECURITY_HEADERS_CONTENT_TYPE_OPTIONS", "nosniff"),
			XSSProtection:      getEnv("SECURITY_HEADERS_XSS_PROTECTION", "1; mode=block"),
			ReferrerPolicy:     getEnv("SECURITY_HEADERS_REFERRER_POLICY", "strict-origin-when-cross-origin"),
			PermissionsPolicy:  getEnv("SECURITY_HEADERS_PERMISSIONS_POLICY", ""),
		},

		Validation: ValidationConfig{
			MaxRequestBodySize: int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 1<<20)),
			MaxTitleLength:     getEnvInt("MAX_TITLE_LENGTH", 200),
			MaxFieldLength:     getEnvInt("MAX_FIELD_LENGTH", 10000),

			EmailStrict:          getEnvBool("EMAIL_STRICT", false),
			EmailBlockDisposable: getEnvBool("EMAIL_BLOCK_DISPOSABLE", false),
		},
	}
	cfg.PasswordPolicy.AllowedChars = getEnv("PASSWORD_ALLOWED_CHARS", asciiAlnum+cfg.PasswordPolicy.SpecialChars)

	// Validate required fields
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}
	if u, err := url.Parse(cfg.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", cfg.APIBaseURL)
	}
	if cfg.APIRetryCount < 0 {
		return nil, fmt.Errorf("API_RETRY_COUNT must not be negative")
	}

	return cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerAddr, c.ServerPort)
}

// HasTelemetry returns true if an OTLP collector endpoint is configured.
func (c *Config) HasTelemetry() bool {
	return c.OTLPEndpoint != ""
}

// ImageURL returns the public URL of a stored post image.
func (c *Config) ImageURL(imageName string) string {
	if imageName == "" {
		return ""
	}
	return c.APIBaseURL + "/img/posts/" + url.PathEscape(imageName)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
