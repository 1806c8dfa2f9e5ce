package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound matches any *StatusError carrying HTTP 404
	ErrNotFound = errors.New("not found")

	// ErrCircuitOpen is returned without calling the backend while it is failing
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// StatusError is a non-2xx response from a backend
type StatusError struct {
	Body       []byte
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Reason())
}

// Reason is the standard reason phrase for the status code
func (e *StatusError) Reason() string {
	return http.StatusText(e.StatusCode)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// DecodeBody unmarshals the error response body into v
func (e *StatusError) DecodeBody(v any) error {
	return json.Unmarshal(e.Body, v)
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
