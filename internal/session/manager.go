package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/userdesk/userdesk/internal/cookie"
	"github.com/userdesk/userdesk/internal/token"
)

// AuthAPI is the slice of the upstream auth API the manager depends on.
type AuthAPI interface {
	// Refresh exchanges a refresh token for a new access token.
	Refresh(ctx context.Context, refreshToken string) (string, error)
	// SignOut invalidates the session upstream. Best-effort.
	SignOut(ctx context.Context, accessToken string) error
}

// Manager moves a session between its four states:
//
//	NoSession   -> Active      Create (on successful sign-in)
//	Active      -> Active      Get (access token still valid)
//	Refreshable -> Active      Get -> refresh (access expired, refresh valid)
//	any         -> Dead        refresh failure, or Delete (sign-out)
//
// Refresh is eager and synchronous with the request that discovers it is
// needed; there is no background refresh job. At most one refresh attempt is
// made per request.
type Manager struct {
	codec   *token.Codec
	cookies *cookie.Store
	api     AuthAPI
	cfg     Config
	log     *slog.Logger
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used for refresh and sign-out diagnostics.
func WithLogger(log *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager creates a session manager. All collaborators are required
// except options; the default logger discards output.
func NewManager(cfg Config, codec *token.Codec, cookies *cookie.Store, api AuthAPI, opts ...ManagerOption) *Manager {
	if codec == nil {
		panic("session manager: token codec is required")
	}
	if cookies == nil {
		panic("session manager: cookie store is required")
	}
	if api == nil {
		panic("session manager: auth api is required")
	}

	if cfg.AccessCookie == "" || cfg.RefreshCookie == "" {
		cfg = DefaultConfig()
	}

	m := &Manager{
		codec:   codec,
		cookies: cookies,
		api:     api,
		cfg:     cfg,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Create stores a freshly issued token pair as two encrypted cookies.
// Each cookie expires exactly when the token it carries expires.
// Fails with ErrInvalidToken if either token lacks a decodable exp claim;
// in that case no cookie is written.
func (m *Manager) Create(w http.ResponseWriter, accessToken, refreshToken string) error {
	accessExp, err := token.DecodeExpiry(accessToken)
	if err != nil {
		return fmt.Errorf("%w: access token: %w", ErrInvalidToken, err)
	}
	refreshExp, err := token.DecodeExpiry(refreshToken)
	if err != nil {
		return fmt.Errorf("%w: refresh token: %w", ErrInvalidToken, err)
	}

	accessBlob, err := m.codec.Encrypt(accessToken, accessExp)
	if err != nil {
		return err
	}
	refreshBlob, err := m.codec.Encrypt(refreshToken, refreshExp)
	if err != nil {
		return err
	}

	if err := m.cookies.Write(w, m.cfg.AccessCookie, accessBlob, accessExp,
		cookie.WithSameSite(http.SameSiteLaxMode)); err != nil {
		return err
	}
	return m.cookies.Write(w, m.cfg.RefreshCookie, refreshBlob, refreshExp,
		cookie.WithSameSite(http.SameSiteStrictMode))
}

// Get reconstructs the session from the request cookies.
//
// If the access token is present and its envelope has not expired, the
// session is returned as-is. If it is absent or expired but a valid refresh
// token exists, Get refreshes synchronously and returns the session with the
// new access token. A dead session (no valid refresh token) fails with
// ErrUnauthorized without any network call.
func (m *Manager) Get(w http.ResponseWriter, r *http.Request) (Session, error) {
	refreshTok := m.readToken(r, m.cfg.RefreshCookie)

	if accessTok := m.readToken(r, m.cfg.AccessCookie); accessTok != "" {
		return Session{AccessToken: accessTok, RefreshToken: refreshTok}, nil
	}

	if refreshTok == "" {
		return Session{}, ErrUnauthorized
	}

	accessTok, err := m.Refresh(r.Context(), w, refreshTok)
	if err != nil {
		return Session{}, err
	}

	return Session{AccessToken: accessTok, RefreshToken: refreshTok}, nil
}

// Refresh exchanges the refresh token for a new access token and writes the
// new access-token cookie. On any failure the session is destroyed and the
// call fails with ErrUnauthorized; a session that cannot refresh is unusable.
func (m *Manager) Refresh(ctx context.Context, w http.ResponseWriter, refreshToken string) (string, error) {
	accessTok, err := m.api.Refresh(ctx, refreshToken)
	if err != nil {
		m.log.WarnContext(ctx, "token refresh rejected by upstream", "error", err)
		m.destroy(ctx, w, "")
		return "", fmt.Errorf("%w: refresh failed: %w", ErrUnauthorized, err)
	}

	exp, err := token.DecodeExpiry(accessTok)
	if err != nil {
		m.log.ErrorContext(ctx, "upstream returned access token without expiry", "error", err)
		m.destroy(ctx, w, "")
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	blob, err := m.codec.Encrypt(accessTok, exp)
	if err != nil {
		m.destroy(ctx, w, "")
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	if err := m.cookies.Write(w, m.cfg.AccessCookie, blob, exp,
		cookie.WithSameSite(http.SameSiteLaxMode)); err != nil {
		m.destroy(ctx, w, "")
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	return accessTok, nil
}

// Delete destroys the session: a best-effort upstream sign-out with the
// current access token, then unconditional removal of both cookies.
// Logout never fails the user-visible flow.
func (m *Manager) Delete(w http.ResponseWriter, r *http.Request) {
	m.destroy(r.Context(), w, m.readToken(r, m.cfg.AccessCookie))
}

// destroy notifies upstream when an access token is available, then deletes
// both cookies regardless of the sign-out outcome.
func (m *Manager) destroy(ctx context.Context, w http.ResponseWriter, accessToken string) {
	if accessToken != "" {
		if err := m.api.SignOut(ctx, accessToken); err != nil {
			m.log.WarnContext(ctx, "upstream sign-out failed", "error", err)
		}
	}

	m.cookies.Delete(w, m.cfg.AccessCookie)
	m.cookies.Delete(w, m.cfg.RefreshCookie)
}

// readToken reads and decrypts one token cookie. Every failure mode
// (absent cookie, storage error, decrypt failure, expired envelope)
// collapses to "" so callers can treat the token as absent.
func (m *Manager) readToken(r *http.Request, name string) string {
	blob, err := m.cookies.Read(r, name)
	if err != nil {
		if !errors.Is(err, cookie.ErrNotFound) {
			m.log.Warn("cookie read failed, treating as absent", "cookie", name, "error", err)
		}
		return ""
	}

	tok, err := m.codec.Decrypt(blob)
	if err != nil {
		return ""
	}
	return tok
}
