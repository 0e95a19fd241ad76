package httputil

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"
)

const (
	// TokenCookie holds the backend bearer token.
	TokenCookie = "token"
	// LanguageCookie holds the chosen display language.
	LanguageCookie = "language"
	// FlashCookie carries a one-shot toast to the next page.
	FlashCookie = "flash"

	// LanguageTTL is how long the language choice is remembered.
	LanguageTTL = 365 * 24 * time.Hour
)

// CookieConfig holds cookie configuration.
type CookieConfig struct {
	Domain   string
	Path     string
	Secure   bool // Set to true in production (HTTPS)
	SameSite http.SameSite
	TokenTTL time.Duration
}

// DefaultCookieConfig returns default cookie configuration.
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		Path:     "/",
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
		TokenTTL: 24 * time.Hour,
	}
}

func (cfg CookieConfig) cookie(name, value string, maxAge int, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	}
}

// SetTokenCookie stores the bearer token in an HttpOnly cookie.
func SetTokenCookie(w http.ResponseWriter, token string, cfg CookieConfig) {
	http.SetCookie(w, cfg.cookie(TokenCookie, token, int(cfg.TokenTTL.Seconds()), true))
}

// ClearTokenCookie removes the token cookie.
func ClearTokenCookie(w http.ResponseWriter, cfg CookieConfig) {
	http.SetCookie(w, cfg.cookie(TokenCookie, "", -1, true))
}

// GetTokenFromCookie extracts the bearer token from its cookie.
func GetTokenFromCookie(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(TokenCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// SetLanguageCookie remembers the display language for a year.
func SetLanguageCookie(w http.ResponseWriter, code string, cfg CookieConfig) {
	http.SetCookie(w, cfg.cookie(LanguageCookie, code, int(LanguageTTL.Seconds()), false))
}

// GetLanguageFromCookie returns the stored language code, if any.
func GetLanguageFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(LanguageCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a toast message shown once on the next rendered page.
type Flash struct {
	Kind    string `json:"k"`
	Message string `json:"m"`
}

// SetFlash queues a toast for the next page.
func SetFlash(w http.ResponseWriter, f Flash, cfg CookieConfig) {
	b, err := json.Marshal(f)
	if err != nil {
		return
	}
	http.SetCookie(w, cfg.cookie(FlashCookie, base64.RawURLEncoding.EncodeToString(b), 60, true))
}

// PopFlash reads the queued toast, if any, and clears it.
func PopFlash(w http.ResponseWriter, r *http.Request, cfg CookieConfig) *Flash {
	cookie, err := r.Cookie(FlashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	http.SetCookie(w, cfg.cookie(FlashCookie, "", -1, true))

	b, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(b, &f); err != nil || f.Message == "" {
		return nil
	}
	return &f
}
