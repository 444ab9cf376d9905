package endpointfetcher

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios
var (
	// ErrDuplicateIdentity is returned from New when two registered plugins
	// share one identity.
	ErrDuplicateIdentity = errors.New("endpointfetcher: duplicate plugin identity")

	// ErrUnknownEndpoint is returned when calling an endpoint name that the
	// definitions tree does not contain.
	ErrUnknownEndpoint = errors.New("endpointfetcher: unknown endpoint")

	// ErrUnknownGroup is returned when navigating to a group name that the
	// definitions tree does not contain.
	ErrUnknownGroup = errors.New("endpointfetcher: unknown group")

	// ErrRateLimited is returned by the rate limit plugin when the token
	// bucket is exhausted.
	ErrRateLimited = errors.New("endpointfetcher: rate limited")

	// ErrCircuitOpen is returned by the circuit breaker plugin while the
	// circuit is open.
	ErrCircuitOpen = errors.New("endpointfetcher: circuit open")
)

// RequestError is the request failure raised by the default executor for a
// non-2xx response. Err holds the decoded error body, or an empty
// map[string]any{} when the body could not be decoded.
type RequestError struct {
	Status     int
	StatusText string
	Err        any
}

// Error implements error interface.
func (e *RequestError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("endpointfetcher: request failed: %d %s", e.Status, e.StatusText)
}

// Is matches any *RequestError, or one with the same status when the target
// carries a non-zero status.
func (e *RequestError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*RequestError)
	if !ok {
		return false
	}
	return t.Status == 0 || t.Status == e.Status
}

// DebugInfo renders a multi-line string with diagnostic context.
func (e *RequestError) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}
	info := fmt.Sprintf("Status: %d\n", e.Status)
	info += fmt.Sprintf("Status Text: %s\n", e.StatusText)
	if e.Err != nil {
		if b, err := json.Marshal(e.Err); err == nil {
			info += fmt.Sprintf("Error Body: %s\n", b)
		} else {
			info += fmt.Sprintf("Error Body: %v\n", e.Err)
		}
	}
	return info
}

// IsRequestFailure reports whether err is (or wraps) a RequestError and, if
// so, returns it.
func IsRequestFailure(err error) (*RequestError, bool) {
	var re *RequestError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// BuildError is returned from New when the definitions tree or the client
// configuration is invalid. Construction fails before any call is possible.
type BuildError struct {
	Message string
	Cause   error
}

// Error implements error interface.
func (e *BuildError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return fmt.Sprintf("endpointfetcher: build failed: %s (%v)", e.Message, e.Cause)
	}
	return fmt.Sprintf("endpointfetcher: build failed: %s", e.Message)
}

// Unwrap returns the underlying cause.
func (e *BuildError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
