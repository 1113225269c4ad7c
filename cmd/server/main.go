// Command server runs the user-management front end: the session subsystem
// over encrypted cookies, the locale-aware route gatekeeper, and the JSON
// action endpoints backed by the upstream auth/users API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/userdesk/userdesk/internal/config"
	"github.com/userdesk/userdesk/internal/cookie"
	"github.com/userdesk/userdesk/internal/handler"
	"github.com/userdesk/userdesk/internal/i18n"
	"github.com/userdesk/userdesk/internal/logger"
	"github.com/userdesk/userdesk/internal/notify"
	"github.com/userdesk/userdesk/internal/server"
	"github.com/userdesk/userdesk/internal/session"
	"github.com/userdesk/userdesk/internal/token"
	"github.com/userdesk/userdesk/internal/upstream"
)

func main() {
	// Local development convenience; absent .env files are fine.
	_ = godotenv.Load()

	var cfg config.Config
	config.MustLoad(&cfg)

	log := logger.New(cfg.Log, cfg.AppName, cfg.Env)

	codec, err := token.NewCodec(cfg.EncryptionKey)
	if err != nil {
		log.Error("token codec init failed", "error", err)
		os.Exit(1)
	}

	locales, err := i18n.New(cfg.I18n)
	if err != nil {
		log.Error("locale configuration invalid", "error", err)
		os.Exit(1)
	}

	cookies := cookie.New(cookie.WithSecure(cfg.IsProduction()))

	api := upstream.New(cfg.Upstream, upstream.WithLogger(log))

	sessions := session.NewManager(cfg.Session, codec, cookies, api,
		session.WithLogger(log))

	// Alerts go to Slack only in production; elsewhere they are dropped.
	slack := notify.NewSlack(cfg.Slack, notify.WithLogger(log))
	var notifier notify.Notifier = notify.Noop{}
	if cfg.IsProduction() && slack.Enabled() {
		notifier = slack
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := handler.NewRouter(handler.RouterDeps{
		API:      api,
		Sessions: sessions,
		Locales:  locales,
		Notifier: notifier,
		Registry: registry,
		Logger:   log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg.Server, server.WithLogger(log))

	log.Info("starting",
		"addr", cfg.Server.Addr,
		"env", cfg.Env,
		"upstream", cfg.Upstream.BaseURL,
		"locales", locales.Supported(),
		"notifications", cfg.IsProduction() && slack.Enabled())

	if err := srv.Run(ctx, mux); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
