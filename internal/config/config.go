// Package config loads the application configuration from environment
// variables into typed structs. Each component owns its sub-config; this
// package only aggregates them and adds the process-wide settings.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/userdesk/userdesk/internal/i18n"
	"github.com/userdesk/userdesk/internal/logger"
	"github.com/userdesk/userdesk/internal/notify"
	"github.com/userdesk/userdesk/internal/server"
	"github.com/userdesk/userdesk/internal/session"
	"github.com/userdesk/userdesk/internal/upstream"
)

// ErrMissingSecret indicates no encryption secret was supplied.
var ErrMissingSecret = errors.New("ENCRYPTION_KEY is required")

// Config is the process-wide configuration, loaded once at startup and
// read-only afterwards.
type Config struct {
	AppName string `env:"APP_NAME" envDefault:"userdesk"`
	Env     string `env:"APP_ENV" envDefault:"development"`

	// EncryptionKey is the process-wide secret keying the token codec.
	// Either a 43-character URL-safe base64 string or an arbitrary string;
	// both are normalized deterministically to a 32-byte key.
	EncryptionKey string `env:"ENCRYPTION_KEY"`

	Log      logger.Config
	Server   server.Config
	Upstream upstream.Config
	Session  session.Config
	I18n     i18n.Config
	Slack    notify.Config
}

// IsProduction reports whether the app runs with production hardening:
// secure cookies and live Slack notifications.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load parses the environment into cfg and validates required settings.
func Load(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	if cfg.EncryptionKey == "" {
		if cfg.IsProduction() {
			return ErrMissingSecret
		}
		// Deterministic fallback so local sessions survive restarts.
		cfg.EncryptionKey = "dev-only-32-byte-encryption-key!"
	}

	return nil
}

// MustLoad is Load for startup paths where failure is fatal.
func MustLoad(cfg *Config) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
