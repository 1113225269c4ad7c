package upstream

import (
	"errors"
	"fmt"
)

// ErrUnavailable indicates the upstream API could not be reached at all:
// connection failure, DNS error, or the bounded per-call timeout elapsing.
// It is distinct from an API rejection, which carries an *APIError.
var ErrUnavailable = errors.New("upstream api unavailable")

// APIError is a non-2xx response from the upstream API with its decoded
// message, when one was present in the body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream api returned status %d", e.Status)
	}
	return fmt.Sprintf("upstream api returned status %d: %s", e.Status, e.Message)
}

// AsAPIError unwraps an *APIError from err, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
