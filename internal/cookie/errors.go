package cookie

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested cookie doesn't exist in the request.
	ErrNotFound = errors.New("cookie not found in request")

	// ErrStorage indicates the cookie could not be read or written.
	// Callers treat this as "cookie absent", never as a valid value.
	ErrStorage = errors.New("cookie storage failed")
)

// ErrTooLarge indicates the cookie exceeds the maximum allowed size.
type ErrTooLarge struct {
	Name string
	Size int
	Max  int
}

func (e ErrTooLarge) Error() string {
	return fmt.Sprintf("cookie %q size %d exceeds maximum %d bytes", e.Name, e.Size, e.Max)
}

func (e ErrTooLarge) Unwrap() error { return ErrStorage }
