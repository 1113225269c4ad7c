// Package logger builds the application's slog.Logger. The logger is always
// constructed explicitly and passed to components; nothing in this codebase
// reads slog.Default().
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Config provides environment-based logger configuration.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string `env:"LOG_LEVEL" envDefault:"info"`

	// Format is "json" for machine-readable output or "text" for development.
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// New creates a logger writing to stderr with the configured level and
// format, tagged with the application name and environment.
func New(cfg Config, appName, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler).With("app", appName, "env", env)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
