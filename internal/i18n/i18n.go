// Package i18n serves the console's UI strings from embedded YAML catalogs
// and picks the display language for a request.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Language is one selectable display language.
type Language struct {
	Code string
	Name string
}

// Supported lists the selectable languages in menu order.
var Supported = []Language{
	{Code: "en", Name: "English"},
	{Code: "cs-CZ", Name: "Čeština"},
	{Code: "sk", Name: "Slovenčina"},
}

// Catalog holds every language's messages.
type Catalog struct {
	def      string
	codes    []string
	tags     []language.Tag
	matcher  language.Matcher
	messages map[string]map[string]string
}

// Load parses the embedded catalogs. defaultCode must be one of Supported;
// otherwise English is used.
func Load(defaultCode string) (*Catalog, error) {
	c := &Catalog{messages: make(map[string]map[string]string, len(Supported))}

	def := "en"
	for _, l := range Supported {
		if strings.EqualFold(l.Code, defaultCode) {
			def = l.Code
		}
	}
	c.def = def

	// The matcher falls back to its first tag.
	c.codes = append(c.codes, def)
	for _, l := range Supported {
		if l.Code != def {
			c.codes = append(c.codes, l.Code)
		}
	}

	for _, code := range c.codes {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("parse language %q: %w", code, err)
		}
		c.tags = append(c.tags, tag)

		data, err := localeFS.ReadFile("locales/" + code + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", code, err)
		}
		msgs := map[string]string{}
		if err := yaml.Unmarshal(data, &msgs); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", code, err)
		}
		c.messages[code] = msgs
	}
	c.matcher = language.NewMatcher(c.tags)

	return c, nil
}

// Default returns the default language code.
func (c *Catalog) Default() string {
	return c.def
}

// Match picks a language code from the language cookie, then the
// Accept-Language header, then the default.
func (c *Catalog) Match(cookie, acceptLanguage string) string {
	if code, ok := c.Lookup(cookie); ok {
		return code
	}
	_, idx := language.MatchStrings(c.matcher, acceptLanguage)
	if idx >= 0 && idx < len(c.codes) {
		return c.codes[idx]
	}
	return c.def
}

// Lookup reports whether code names a supported language and returns its
// canonical spelling.
func (c *Catalog) Lookup(code string) (string, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", false
	}
	for _, known := range c.codes {
		if strings.EqualFold(known, code) {
			return known, true
		}
	}
	return "", false
}

// Tag returns the language tag of code.
func (c *Catalog) Tag(code string) language.Tag {
	for i, known := range c.codes {
		if known == code {
			return c.tags[i]
		}
	}
	return c.tags[0]
}

// T translates key into code's language. Missing keys fall back to the
// default language and then to the key itself. With args the message is
// used as a fmt format.
func (c *Catalog) T(code, key string, args ...any) string {
	msg, ok := c.messages[code][key]
	if !ok {
		msg, ok = c.messages[c.def][key]
	}
	if !ok {
		msg = key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// Keys returns every key of code's catalog.
func (c *Catalog) Keys(code string) []string {
	keys := make([]string, 0, len(c.messages[code]))
	for k := range c.messages[code] {
		keys = append(keys, k)
	}
	return keys
}

type contextKey struct{}

// WithLanguage returns a copy of ctx carrying the language code.
func WithLanguage(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, contextKey{}, code)
}

// LanguageFrom returns the language code stored by WithLanguage, or "".
func LanguageFrom(ctx context.Context) string {
	code, _ := ctx.Value(contextKey{}).(string)
	return code
}
