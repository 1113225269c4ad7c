package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/userdesk/userdesk/internal/i18n"
	"github.com/userdesk/userdesk/internal/middleware"
	"github.com/userdesk/userdesk/internal/notify"
	"github.com/userdesk/userdesk/internal/session"
	"github.com/userdesk/userdesk/internal/upstream"
)

// RouterDeps carries everything the router needs. All fields except
// Notifier and Logger are required.
type RouterDeps struct {
	API      *upstream.Client
	Sessions *session.Manager
	Locales  *i18n.Locales
	Notifier notify.Notifier
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

// NewRouter assembles the full HTTP surface: health and metrics, the /api
// action endpoints, and the locale-prefixed pages behind the gatekeeper.
func NewRouter(deps RouterDeps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	auth := NewAuthHandler(deps.API, deps.Sessions, deps.Locales, deps.Notifier, deps.Logger)
	profile := NewProfileHandler(deps.API, deps.Sessions, deps.Locales, deps.Logger)
	users := NewUsersHandler(deps.API, deps.Sessions, deps.Locales, deps.Logger)
	pages := NewPagesHandler(deps.Locales, deps.Logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(middleware.LoggingConfig{
		Logger: deps.Logger,
		Skip:   middleware.DefaultSkip,
	}))
	if deps.Registry != nil {
		r.Use(middleware.NewMetrics(deps.Registry).Handler)
	}
	r.Use(middleware.Gatekeeper(middleware.GatekeeperConfig{
		Sessions: deps.Sessions,
		Locales:  deps.Locales,
		Logger:   deps.Logger,
		Policies: []middleware.Policy{
			{Prefix: "/interface", Require: middleware.RequireSession},
			{Prefix: "/interface/profile", Require: middleware.RequireUser},
			{Prefix: "/interface/admin", Require: middleware.RequireAdmin},
		},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok")) //nolint:errcheck
	})
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/sign-in", auth.SignIn)
			r.Post("/sign-up", auth.SignUp)
			r.Post("/sign-out", auth.SignOut)
			r.Post("/forgot-password", auth.ForgotPassword)
			r.Post("/change-password", auth.ChangePassword)
		})

		r.Get("/me", profile.Me)
		r.Patch("/me", profile.Update)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", users.List)
			r.Post("/", users.Create)
			r.Get("/inactive/{days}", users.Inactive)
			r.Get("/{id}", users.Get)
			r.Patch("/{id}", users.Update)
			r.Delete("/{id}", users.Delete)
		})
	})

	// Locale-prefixed pages. The gatekeeper already redirected bare paths
	// to their locale-qualified form before the router sees them.
	r.Route("/{locale}", func(r chi.Router) {
		r.Get("/", pages.Home)
		r.Get("/auth/sign-in", pages.SignIn)
		r.Get("/auth/sign-up", pages.SignUp)
		r.Get("/auth/forgot-password", pages.ForgotPassword)
		r.Get("/interface", pages.Interface)
		r.Get("/interface/profile", pages.Profile)
		r.Get("/interface/admin", pages.Admin)
	})

	return r
}
