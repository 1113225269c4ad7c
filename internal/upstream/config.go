package upstream

import "time"

// Config provides environment-based configuration for the upstream API client.
type Config struct {
	// BaseURL is the root of the backend API.
	BaseURL string `env:"BACKEND_URL" envDefault:"http://localhost:3005"`

	// Timeout bounds every upstream call so a hung backend cannot hang the
	// gatekeeper indefinitely.
	Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
}

// DefaultConfig returns a Config with local-development defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:3005",
		Timeout: 10 * time.Second,
	}
}
