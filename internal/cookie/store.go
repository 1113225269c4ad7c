// Package cookie implements the store adapter for the session cookies.
// It is the only package allowed to touch the named token cookies; every
// other component goes through it. The adapter carries no business logic:
// it sets, reads and deletes cookies and reports storage failures.
package cookie

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// MaxCookieSize is the maximum serialized size for a cookie (4KB).
const MaxCookieSize = 4096

// Store handles HTTP cookie operations for token blobs.
// The expiry of each written cookie is supplied by the caller and must match
// the expiry of the token the blob carries; the cookie never outlives its token.
type Store struct {
	defaults Options
	maxSize  int
}

// New creates a cookie store with secure defaults: path=/, httpOnly,
// SameSite=Lax. Options override the defaults for every subsequent write.
func New(opts ...Option) *Store {
	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Store{
		defaults: applyOptions(defaults, opts),
		maxSize:  MaxCookieSize,
	}
}

// Write sets a cookie holding the given blob, expiring at expiresAt.
// Per-call options override the store defaults.
func (s *Store) Write(w http.ResponseWriter, name, blob string, expiresAt time.Time, opts ...Option) error {
	options := applyOptions(s.defaults, opts)

	c := &http.Cookie{
		Name:     name,
		Value:    blob,
		Path:     options.Path,
		Domain:   options.Domain,
		Expires:  expiresAt,
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	}

	if err := c.Valid(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	header := c.String()
	if len(header) > s.maxSize {
		return ErrTooLarge{
			Name: name,
			Size: len(header),
			Max:  s.maxSize,
		}
	}

	http.SetCookie(w, c)
	return nil
}

// Read retrieves a cookie value. Returns ErrNotFound when absent.
func (s *Store) Read(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return c.Value, nil
}

// Delete removes a cookie by writing an expired tombstone.
func (s *Store) Delete(w http.ResponseWriter, name string) {
	c := &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     s.defaults.Path,
		Domain:   s.defaults.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   s.defaults.Secure,
		HttpOnly: s.defaults.HttpOnly,
		SameSite: s.defaults.SameSite,
	}
	http.SetCookie(w, c)
}
