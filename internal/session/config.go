package session

// Config holds session cookie naming with environment variable support.
// The two names are a fixed contract between the session manager and the
// browser; changing them invalidates every session in flight.
type Config struct {
	// AccessCookie is the name of the cookie carrying the access-token blob.
	AccessCookie string `env:"SESSION_ACCESS_COOKIE" envDefault:"access_token"`

	// RefreshCookie is the name of the cookie carrying the refresh-token blob.
	RefreshCookie string `env:"SESSION_REFRESH_COOKIE" envDefault:"refresh_token"`
}

// DefaultConfig returns a Config with the default cookie names.
func DefaultConfig() Config {
	return Config{
		AccessCookie:  "access_token",
		RefreshCookie: "refresh_token",
	}
}
