package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roivaz/drata-compliance-mcp/internal/drata"
)

// Kind is the error code reported to callers.
type Kind string

const (
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindUpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"
	KindNotFound            Kind = "NOT_FOUND"
	KindInvalidArgument     Kind = "INVALID_ARGUMENT"
	KindUnknownTool         Kind = "UNKNOWN_TOOL"
)

// ErrInvalidArgument is wrapped by handlers rejecting argument combinations
// the parameter schema cannot express.
var ErrInvalidArgument = errors.New("invalid argument")

// Error is returned by Dispatch for every failed call.
type Error struct {
	Kind Kind
	Tool string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Tool, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Tool, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the human readable part of the error, without the tool and kind.
func (e *Error) Message() string {
	var apiErr *drata.APIError
	switch {
	case e.Err == nil:
		return string(e.Kind)
	case errors.As(e.Err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	default:
		return e.Err.Error()
	}
}

// MarshalJSON renders the error body returned to assistants.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code  Kind   `json:"error_code"`
		Error string `json:"error"`
		Tool  string `json:"tool"`
	}{e.Kind, e.Message(), e.Tool})
}

func newError(kind Kind, tool string, format string, args ...any) *Error {
	return &Error{Kind: kind, Tool: tool, Err: fmt.Errorf(format, args...)}
}

// Classify maps an error onto the taxonomy. Errors that carry no known
// sentinel are treated as an unavailable upstream.
func Classify(tool string, err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	kind := KindUpstreamUnavailable
	switch {
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, drata.ErrBadRequest):
		kind = KindInvalidArgument
	case errors.Is(err, drata.ErrUnauthorized):
		kind = KindUnauthorized
	case errors.Is(err, drata.ErrNotFound):
		kind = KindNotFound
	case errors.Is(err, drata.ErrUpstreamUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		kind = KindUpstreamUnavailable
	}
	return &Error{Kind: kind, Tool: tool, Err: err}
}

// KindOf returns the kind of a dispatch error, or "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return Classify("", err).Kind
}
