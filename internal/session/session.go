// Package session orchestrates the session lifecycle: creation on login,
// reconstruction on every protected request, transparent refresh when the
// access token has expired, and destruction on logout or irrecoverable
// failure.
//
// A session is never persisted server-side. It is reconstructed per request
// from the two encrypted cookies, so there is no cross-request state to race
// on: the encrypted cookie IS the session. The manager is a pure
// (cookies) -> (session, error) function plus the cookie writes that refresh
// and logout require.
package session

// Session is the in-memory authentication state for one request.
// Both tokens are opaque bearer credentials issued by the upstream API.
type Session struct {
	AccessToken  string
	RefreshToken string
}
