package token

import "errors"

var (
	// ErrNoSecret indicates no encryption secret was provided for the codec.
	ErrNoSecret = errors.New("no secret provided for token codec")

	// ErrMalformedToken indicates the bearer token could not be parsed or
	// lacks a required claim such as exp.
	ErrMalformedToken = errors.New("malformed bearer token")

	// ErrInvalidToken indicates a stored blob could not be decrypted or its
	// envelope has expired. Callers treat this the same as "no token".
	ErrInvalidToken = errors.New("invalid or expired token blob")
)
