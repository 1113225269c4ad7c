// Package upstream implements the HTTP client for the backend auth/users
// API, the actual source of truth for users, credentials and authorization.
// This application is a thin front end over it: every mutating action is
// re-authorized upstream regardless of what the gatekeeper decided.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client calls the upstream API. All methods apply the configured timeout
// on top of the caller's context.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     *slog.Logger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithLogger sets the logger for request diagnostics.
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client (used by tests).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates an upstream API client from configuration.
func New(cfg Config, opts ...ClientOption) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Tokens is the credential pair issued on successful sign-in.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SignUpParams carries the sign-up payload. Field names follow the upstream
// API contract.
type SignUpParams struct {
	Email    string `json:"Email"`
	Password string `json:"Password"`
	Name     string `json:"Name"`
	LastName string `json:"LastName"`
}

// SignIn authenticates a user and returns the issued token pair.
// Upstream rejections surface as *APIError (401 invalid credentials,
// 404 unknown user, 409 account without a password).
func (c *Client) SignIn(ctx context.Context, email, password string) (Tokens, error) {
	var out struct {
		Data Tokens `json:"data"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/signin", "", map[string]string{
		"Email":    email,
		"Password": password,
	}, &out)
	if err != nil {
		return Tokens{}, err
	}

	if out.Data.AccessToken == "" || out.Data.RefreshToken == "" {
		return Tokens{}, &APIError{Status: http.StatusBadGateway, Message: "sign-in response missing tokens"}
	}
	return out.Data, nil
}

// SignUp registers a new user. No session is created; the caller redirects
// to sign-in on success.
func (c *Client) SignUp(ctx context.Context, params SignUpParams) error {
	return c.do(ctx, http.MethodPost, "/auth/signup", "", params, nil)
}

// Refresh exchanges a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/refresh", "", map[string]string{
		"refresh": refreshToken,
	}, &out)
	if err != nil {
		return "", err
	}

	if out.AccessToken == "" {
		return "", &APIError{Status: http.StatusBadGateway, Message: "refresh response missing access token"}
	}
	return out.AccessToken, nil
}

// SignOut invalidates the session upstream using bearer auth.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/signout", accessToken, nil, nil)
}

// ForgotPassword triggers the password-recovery email. The upstream status
// message is passed through to the caller.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/forgot-password", "", map[string]string{
		"Email": email,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// ChangePassword replaces the user's password after verifying the current one.
func (c *Client) ChangePassword(ctx context.Context, email, password, newPassword string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/change-password", "", map[string]string{
		"Email":       email,
		"Password":    password,
		"NewPassword": newPassword,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// Me returns the profile of the authenticated user.
func (c *Client) Me(ctx context.Context, accessToken string) (User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/auth/me", accessToken, nil, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

// do performs one upstream call: marshals the body, applies bearer auth and
// the bounded timeout, and decodes either the success payload or the error
// message. Network-level failures wrap ErrUnavailable; non-2xx responses
// become *APIError.
func (c *Client) do(ctx context.Context, method, path, accessToken string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WarnContext(ctx, "upstream call failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	c.log.DebugContext(ctx, "upstream call",
		"method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: decodeMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: "undecodable response body"}
	}
	return nil
}

// decodeMessage extracts the "message" field from an error body, if present.
func decodeMessage(body io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return ""
	}
	return payload.Message
}
