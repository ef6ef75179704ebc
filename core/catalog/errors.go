package catalog

import (
	"errors"
	"fmt"
)

// ErrAuthExpired means the session could not be renewed; the user has to
// log in again.
var ErrAuthExpired = errors.New("catalog authorization expired")

// APIError is a non-2xx response from the catalog.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("catalog API error (status %d): %s", e.StatusCode, e.Message)
}

// AuthExpiredError wraps the refresh failure that ended the session.
type AuthExpiredError struct {
	Err error
}

func (e *AuthExpiredError) Error() string {
	return fmt.Sprintf("%v: %v", ErrAuthExpired, e.Err)
}

func (e *AuthExpiredError) Unwrap() error { return e.Err }

func (e *AuthExpiredError) Is(target error) bool { return target == ErrAuthExpired }
