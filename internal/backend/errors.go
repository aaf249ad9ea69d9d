package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork reports that the request never produced an HTTP response.
	ErrNetwork = errors.New("backend unreachable")

	// ErrHTTPStatus reports a non-2xx response. Use errors.As with
	// *StatusError to get the status code.
	ErrHTTPStatus = errors.New("backend returned an error status")

	// ErrDecode reports a 2xx response whose body is not the expected JSON.
	ErrDecode = errors.New("malformed backend response")

	// ErrUnexpectedResult reports a 2xx action result whose status field is
	// neither the expected success value nor a known alternate.
	ErrUnexpectedResult = errors.New("unexpected backend result")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int

	// Message is the backend's error text when the body carried one
	// ({"error": ...} or {"detail": ...}), otherwise the raw body.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrHTTPStatus) match any *StatusError.
func (e *StatusError) Is(target error) bool {
	return target == ErrHTTPStatus
}
