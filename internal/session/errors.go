package session

import "errors"

var (
	// ErrUnauthorized is returned when no usable session can be reconstructed
	// from the request: both tokens absent, the refresh token invalid, or the
	// upstream API rejected the refresh. Callers must treat this as "not
	// authenticated".
	ErrUnauthorized = errors.New("session is not authorized")

	// ErrInvalidToken is returned by Create when a token lacks a decodable
	// expiry claim and cannot be stored.
	ErrInvalidToken = errors.New("token has no decodable expiry")
)
