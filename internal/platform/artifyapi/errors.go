package artifyapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport wraps failures where no HTTP response was received.
	ErrTransport = errors.New("artifyapi: transport failure")
	// ErrRejected is returned when the server answered 2xx but reported that
	// the operation did not happen (success=false, no insertedId, ...).
	ErrRejected = errors.New("artifyapi: rejected by server")
)

// StatusError is a non-2xx response.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string // the server's own message, when the body carried one
	Body    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("artifyapi: %s %s: %d: %s", e.Method, e.Path, e.Code, e.Message)
	}
	if e.Body == "" {
		return fmt.Sprintf("artifyapi: %s %s: unexpected status code: %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("artifyapi: %s %s: unexpected status code: %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsServerFailure reports whether err came from the server side: a non-2xx
// status or an explicit rejection.
func IsServerFailure(err error) bool {
	return StatusCode(err) != 0 || errors.Is(err, ErrRejected)
}
