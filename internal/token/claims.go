package token

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// Role is the role claim carried by upstream-issued access tokens.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Claims holds the subset of JWT payload claims this application reads.
// The upstream auth API is the issuer; claims are decoded WITHOUT signature
// verification and must only be used as UI routing hints, never as the sole
// authorization boundary. The upstream API re-authorizes every call.
type Claims struct {
	Subject   string `json:"sub"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	ExpiresAt int64  `json:"exp"`
	IssuedAt  int64  `json:"iat"`
}

// Expiry returns the exp claim as a time.Time.
// The zero time is returned when the claim is absent.
func (c Claims) Expiry() time.Time {
	if c.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(c.ExpiresAt, 0)
}

// DecodeClaims parses the payload section of a compact JWT without verifying
// its signature. Returns ErrMalformedToken if the token does not have three
// segments or the payload is not valid base64url-encoded JSON.
func DecodeClaims(tok string) (Claims, error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return Claims{}, ErrMalformedToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return Claims{}, ErrMalformedToken
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Claims{}, ErrMalformedToken
	}

	return claims, nil
}

// DecodeExpiry extracts the exp claim from a bearer token.
// Returns ErrMalformedToken if the token cannot be parsed or has no exp claim.
func DecodeExpiry(tok string) (time.Time, error) {
	claims, err := DecodeClaims(tok)
	if err != nil {
		return time.Time{}, err
	}

	if claims.ExpiresAt == 0 {
		return time.Time{}, ErrMalformedToken
	}

	return claims.Expiry(), nil
}
