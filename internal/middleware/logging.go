package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// statusWriter captures the response status code for logging and metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wrote {
		w.status = status
		w.wrote = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wrote {
		w.status = http.StatusOK
		w.wrote = true
	}
	return w.ResponseWriter.Write(b)
}

// LoggingConfig configures the request logging middleware.
type LoggingConfig struct {
	// Skip defines requests to leave out of the log (default: health/metrics).
	Skip func(r *http.Request) bool
	// Logger is the slog logger to use (required).
	Logger *slog.Logger
	// SlowRequestThreshold escalates slow requests to warning level (default 5s).
	SlowRequestThreshold time.Duration
}

// Logging logs one line per request with method, path, status, duration and
// the request ID when present.
func Logging(cfg LoggingConfig) func(http.Handler) http.Handler {
	if cfg.Logger == nil {
		panic("logging middleware: logger is required")
	}
	if cfg.Skip == nil {
		cfg.Skip = func(r *http.Request) bool {
			return r.URL.Path == "/healthz" || r.URL.Path == "/metrics"
		}
	}
	if cfg.SlowRequestThreshold <= 0 {
		cfg.SlowRequestThreshold = 5 * time.Second
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			elapsed := time.Since(start)
			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", elapsed,
			}
			if id, ok := GetRequestID(r.Context()); ok {
				attrs = append(attrs, "request_id", id)
			}

			level := slog.LevelInfo
			if elapsed >= cfg.SlowRequestThreshold {
				level = slog.LevelWarn
			}
			cfg.Logger.Log(r.Context(), level, "request", attrs...)
		})
	}
}
