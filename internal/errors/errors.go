package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types for the portal
var (
	// Login errors
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Backend transport errors
	ErrUnreachable = errors.New("backend unreachable")
	ErrTimeout     = errors.New("backend request timed out")

	// Session errors
	ErrMalformedSession = errors.New("malformed persisted session")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExpired   = errors.New("session expired")

	// General errors
	ErrNotFound = errors.New("not found")
)

// ServerError is a non-2xx response reported by the backend API.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend responded %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("backend responded %d %s: %s", e.Status, http.StatusText(e.Status), e.Body)
}

// IsUnauthorized reports whether the backend rejected the session token.
func (e *ServerError) IsUnauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// IsUnauthorized reports whether any error in err's chain is a 401 ServerError
func IsUnauthorized(err error) bool {
	var se *ServerError
	return errors.As(err, &se) && se.IsUnauthorized()
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
