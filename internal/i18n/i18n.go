// Package i18n provides locale negotiation and the small message catalog the
// handlers need. The supported set is fixed at startup and the negotiator is
// immutable after creation, making it safe for concurrent use.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLocale is used when configuration supplies none.
const DefaultLocale = "pt"

// Config provides environment-based locale configuration.
type Config struct {
	// Locales is the comma-separated supported set; the first entry is
	// implicitly preferred when negotiation is inconclusive.
	Locales string `env:"APP_LOCALES" envDefault:"pt,en"`

	// Default is the fallback locale and must be a member of Locales.
	Default string `env:"APP_DEFAULT_LOCALE" envDefault:"pt"`
}

// Locales negotiates request locales against the supported set.
type Locales struct {
	supported []string
	def       string
	matcher   language.Matcher
}

// New creates a locale set. The default locale must be supported.
func New(cfg Config) (*Locales, error) {
	supported := splitLocales(cfg.Locales)
	if len(supported) == 0 {
		supported = []string{DefaultLocale, "en"}
	}

	def := cfg.Default
	if def == "" {
		def = supported[0]
	}

	tags := make([]language.Tag, 0, len(supported))
	found := false
	for _, loc := range supported {
		tag, err := language.Parse(loc)
		if err != nil {
			return nil, fmt.Errorf("unsupported locale %q: %w", loc, err)
		}
		tags = append(tags, tag)
		if loc == def {
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("default locale %q is not in the supported set", def)
	}

	return &Locales{
		supported: supported,
		def:       def,
		matcher:   language.NewMatcher(tags),
	}, nil
}

// Default returns the fallback locale.
func (l *Locales) Default() string { return l.def }

// Supported returns the supported locale codes in preference order.
func (l *Locales) Supported() []string { return l.supported }

// Contains reports whether loc is a supported locale code.
func (l *Locales) Contains(loc string) bool {
	for _, s := range l.supported {
		if s == loc {
			return true
		}
	}
	return false
}

// Negotiate returns the best supported locale for an Accept-Language header,
// falling back to the default when the header is empty, malformed, or
// matches nothing.
func (l *Locales) Negotiate(acceptLanguage string) string {
	if acceptLanguage == "" {
		return l.def
	}

	desired, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(desired) == 0 {
		return l.def
	}

	_, idx, conf := l.matcher.Match(desired...)
	if conf == language.No {
		return l.def
	}
	return l.supported[idx]
}

// SplitPath splits a request path into its locale prefix and the remainder.
// "/pt/interface/admin" -> ("pt", "/interface/admin", true).
// Paths without a recognized locale prefix return ok=false.
func (l *Locales) SplitPath(path string) (locale, rest string, ok bool) {
	trimmed := strings.TrimPrefix(path, "/")
	seg, remainder, _ := strings.Cut(trimmed, "/")
	if !l.Contains(seg) {
		return "", path, false
	}

	rest = "/" + remainder
	if remainder == "" {
		rest = "/"
	}
	return seg, rest, true
}

// Localize prefixes a path with a locale: ("en", "/auth/sign-in") ->
// "/en/auth/sign-in".
func Localize(locale, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "/" + locale + path
}

func splitLocales(raw string) []string {
	parts := strings.Split(raw, ",")
	locales := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.ToLower(p))
		if p != "" {
			locales = append(locales, p)
		}
	}
	return locales
}
