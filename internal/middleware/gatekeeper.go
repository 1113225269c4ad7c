// Package middleware provides the per-request interception points of the
// application: the route gatekeeper (locale + authentication/authorization),
// request IDs, request logging and Prometheus metrics. All middleware uses
// the standard func(http.Handler) http.Handler shape so it composes with chi.
package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/userdesk/userdesk/internal/i18n"
	"github.com/userdesk/userdesk/internal/session"
	"github.com/userdesk/userdesk/internal/token"
)

// Requirement is the capability a route subtree demands.
type Requirement int

const (
	// RequireNone lets the request through without a session.
	RequireNone Requirement = iota
	// RequireSession demands any authenticated session.
	RequireSession
	// RequireUser demands a session whose role claim is USER.
	RequireUser
	// RequireAdmin demands a session whose role claim is ADMIN.
	RequireAdmin
)

// Policy maps a locale-stripped path prefix to a requirement.
// The most specific (longest) matching prefix wins; evaluation order of the
// configured slice does not matter.
type Policy struct {
	Prefix  string
	Require Requirement
}

// sessionContextKey stores the loaded session in the request context.
type sessionContextKey struct{}

// localeContextKey stores the resolved locale in the request context.
type localeContextKey struct{}

// GatekeeperConfig configures the route gatekeeper.
type GatekeeperConfig struct {
	// Skip marks requests exempt from locale and session logic
	// (static assets, API endpoints, health and metrics).
	Skip func(r *http.Request) bool
	// Sessions reconstructs the session from request cookies (required).
	Sessions *session.Manager
	// Locales negotiates and validates locale prefixes (required).
	Locales *i18n.Locales
	// Policies is the route policy table over locale-stripped paths.
	Policies []Policy
	// SignInPath is the locale-relative sign-in page (default /auth/sign-in).
	SignInPath string
	// ProfilePath is the locale-relative profile page (default /interface/profile).
	ProfilePath string
	// Logger for gate decisions (default: discard).
	Logger *slog.Logger
}

// Gatekeeper creates the middleware that runs once per navigation before any
// page renders. Locale normalization always precedes authentication, so an
// unauthenticated user is redirected to a locale-qualified sign-in path,
// never a bare one.
//
// The role check decodes the access token's role claim without verifying its
// signature. It is a UX redirect only; the upstream API independently
// re-authorizes every mutating action.
func Gatekeeper(cfg GatekeeperConfig) func(http.Handler) http.Handler {
	if cfg.Sessions == nil {
		panic("gatekeeper middleware: session manager is required")
	}
	if cfg.Locales == nil {
		panic("gatekeeper middleware: locales are required")
	}

	if cfg.Skip == nil {
		cfg.Skip = DefaultSkip
	}
	if cfg.SignInPath == "" {
		cfg.SignInPath = "/auth/sign-in"
	}
	if cfg.ProfilePath == "" {
		cfg.ProfilePath = "/interface/profile"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	// Longest prefix first so the first match is the most specific one.
	policies := make([]Policy, len(cfg.Policies))
	copy(policies, cfg.Policies)
	sort.SliceStable(policies, func(i, j int) bool {
		return len(policies[i].Prefix) > len(policies[j].Prefix)
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			locale, rest, ok := cfg.Locales.SplitPath(r.URL.Path)
			if !ok {
				locale = cfg.Locales.Negotiate(r.Header.Get("Accept-Language"))
				target := i18n.Localize(locale, r.URL.Path)
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
				http.Redirect(w, r, target, http.StatusFound)
				return
			}

			r = r.WithContext(context.WithValue(r.Context(), localeContextKey{}, locale))

			requirement := matchPolicy(policies, rest)
			if requirement == RequireNone {
				next.ServeHTTP(w, r)
				return
			}

			signIn := i18n.Localize(locale, cfg.SignInPath)

			sess, err := cfg.Sessions.Get(w, r)
			if err != nil {
				cfg.Logger.InfoContext(r.Context(), "gate: no usable session", "path", rest, "error", err)
				http.Redirect(w, r, signIn, http.StatusFound)
				return
			}

			switch requirement {
			case RequireUser, RequireAdmin:
				claims, err := token.DecodeClaims(sess.AccessToken)
				if err != nil {
					cfg.Logger.WarnContext(r.Context(), "gate: role claim undecodable, destroying session", "error", err)
					cfg.Sessions.Delete(w, r)
					http.Redirect(w, r, signIn, http.StatusFound)
					return
				}

				if requirement == RequireAdmin && claims.Role != token.RoleAdmin {
					http.Redirect(w, r, i18n.Localize(locale, cfg.ProfilePath), http.StatusFound)
					return
				}
				if requirement == RequireUser && claims.Role != token.RoleUser {
					http.Redirect(w, r, signIn, http.StatusFound)
					return
				}
			}

			r = r.WithContext(context.WithValue(r.Context(), sessionContextKey{}, sess))
			next.ServeHTTP(w, r)
		})
	}
}

// DefaultSkip exempts static assets and non-navigational endpoints from
// locale and session handling.
func DefaultSkip(r *http.Request) bool {
	p := r.URL.Path
	switch p {
	case "/favicon.ico", "/robots.txt", "/healthz", "/metrics":
		return true
	}
	return strings.HasPrefix(p, "/static/") ||
		strings.HasPrefix(p, "/assets/") ||
		strings.HasPrefix(p, "/api/")
}

// matchPolicy returns the requirement of the longest matching prefix, or
// RequireNone when nothing matches. Policies must be sorted longest-first.
func matchPolicy(policies []Policy, path string) Requirement {
	for _, p := range policies {
		if strings.HasPrefix(path, p.Prefix) {
			return p.Require
		}
	}
	return RequireNone
}

// GetSession retrieves the session the gatekeeper stored in the context.
func GetSession(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(session.Session)
	return sess, ok
}

// GetLocale retrieves the resolved locale from the context, or the empty
// string when the gatekeeper did not run for this request.
func GetLocale(ctx context.Context) string {
	loc, _ := ctx.Value(localeContextKey{}).(string)
	return loc
}
