package drata

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotFound            = errors.New("not found")
	ErrBadRequest          = errors.New("bad request")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// APIError describes a non-2xx answer from the Drata API. It unwraps to one of
// the sentinel errors above so callers can classify it with errors.Is.
type APIError struct {
	StatusCode int
	Path       string
	Message    string
	kind       error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("drata %s: %d %s: %s", e.Path, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("drata %s: %d %s", e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *APIError) Unwrap() error { return e.kind }

func newAPIError(status int, path, message string) *APIError {
	return &APIError{StatusCode: status, Path: path, Message: message, kind: classifyStatus(status)}
}

// classifyStatus maps HTTP status codes onto sentinel errors. Rate limiting is
// reported as an unavailable upstream; nothing is retried.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return ErrBadRequest
	default:
		return ErrUpstreamUnavailable
	}
}

// unavailable wraps transport and decoding failures.
func unavailable(path string, err error) error {
	return fmt.Errorf("drata %s: %w: %w", path, ErrUpstreamUnavailable, err)
}
