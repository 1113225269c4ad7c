// Package notify delivers operational notifications to a Slack incoming
// webhook. Delivery is best-effort and bounded by a timeout so a slow Slack
// endpoint can never stall a request path.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ErrDisabled is returned when the notifier has no webhook configured.
var ErrDisabled = errors.New("slack notifier is disabled")

// Config provides environment-based configuration for the notifier.
type Config struct {
	// WebhookURL is the Slack incoming-webhook endpoint. Empty disables
	// delivery entirely.
	WebhookURL string `env:"SLACK_WEBHOOK_URL" envDefault:""`

	// Timeout aborts a delivery attempt that takes too long.
	Timeout time.Duration `env:"SLACK_NOTIFY_TIMEOUT" envDefault:"5s"`
}

// Notifier is the delivery interface handlers depend on, so tests can stub it.
type Notifier interface {
	Notify(ctx context.Context, title, message string, fields map[string]string) error
}

// Slack posts formatted messages to an incoming webhook.
type Slack struct {
	webhookURL string
	timeout    time.Duration
	http       *http.Client
	log        *slog.Logger
}

// SlackOption configures the Slack notifier.
type SlackOption func(*Slack)

// WithLogger sets the logger for delivery diagnostics.
func WithLogger(log *slog.Logger) SlackOption {
	return func(s *Slack) {
		if log != nil {
			s.log = log
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client (used by tests).
func WithHTTPClient(hc *http.Client) SlackOption {
	return func(s *Slack) {
		if hc != nil {
			s.http = hc
		}
	}
}

// NewSlack creates a Slack notifier. An empty webhook URL produces a
// disabled notifier whose Notify returns ErrDisabled.
func NewSlack(cfg Config, opts ...SlackOption) *Slack {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	s := &Slack{
		webhookURL: cfg.WebhookURL,
		timeout:    timeout,
		http:       &http.Client{},
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Enabled reports whether a webhook is configured.
func (s *Slack) Enabled() bool { return s.webhookURL != "" }

// Notify posts a message with a title and optional key/value fields.
// The call is aborted when the timeout elapses.
func (s *Slack) Notify(ctx context.Context, title, message string, fields map[string]string) error {
	if !s.Enabled() {
		return ErrDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text := fmt.Sprintf("*%s*\n%s", title, message)
	for k, v := range fields {
		text += fmt.Sprintf("\n• %s: %s", k, v)
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		s.log.WarnContext(ctx, "slack delivery failed", "error", err)
		return fmt.Errorf("deliver slack notification: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.log.WarnContext(ctx, "slack rejected notification", "status", resp.StatusCode)
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}
	return nil
}

// Noop is a Notifier that drops every notification. Used in development and
// tests.
type Noop struct{}

func (Noop) Notify(context.Context, string, string, map[string]string) error { return nil }
