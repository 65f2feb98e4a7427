package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// Sentinel errors surfaced by the gateway. Callers match with errors.Is.
var (
	// ErrUnauthorized is returned for 401-class responses after the single
	// refresh attempt (if any) failed. Stored credentials are purged before
	// this error is returned.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable is returned for transport failures and timeouts.
	// Cached data, where present, stays usable.
	ErrUnavailable = errors.New("server unavailable")

	// ErrConflict is returned for 409-class responses. Callers absorb it
	// with an idempotent re-read rather than surfacing it.
	ErrConflict = errors.New("conflict")

	// ErrValidation marks client-side validation failures that never reach
	// the network.
	ErrValidation = errors.New("validation error")
)

// Error is the normalized API error produced once at the gateway boundary.
type Error struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`

	sentinel error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %s (code %s)", e.Message, e.Code)
	}
	return "api: " + e.Message
}

// Unwrap lets errors.Is match the sentinel classifying this error.
func (e *Error) Unwrap() error { return e.sentinel }

// newStatusError classifies an HTTP status into a typed Error.
func newStatusError(status int, message string, details any) *Error {
	if message == "" {
		message = http.StatusText(status)
	}
	e := &Error{Message: message, Code: strconv.Itoa(status), Details: details}
	switch {
	case status == http.StatusUnauthorized:
		e.sentinel = ErrUnauthorized
	case status == http.StatusConflict:
		e.sentinel = ErrConflict
	case status >= 500:
		e.sentinel = ErrUnavailable
	}
	return e
}

// newTransportError wraps a network-level failure as a retryable Error.
func newTransportError(err error) *Error {
	return &Error{Message: err.Error(), sentinel: ErrUnavailable}
}

// newValidationError reports a client-side validation failure for a field.
func newValidationError(field, msg string) *Error {
	return &Error{
		Message:  fmt.Sprintf("%s: %s", field, msg),
		Details:  map[string]string{"field": field},
		sentinel: ErrValidation,
	}
}
