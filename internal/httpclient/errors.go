package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// ErrInvalidArgument is returned when a request cannot be built from its arguments.
	ErrInvalidArgument = constError("invalid argument")
	// ErrFilesystem is returned when a download destination cannot be opened or written.
	ErrFilesystem = constError("filesystem error")
	// ErrTransport is returned when the request never produced an HTTP response.
	ErrTransport = constError("transport error")
	// ErrUnauthorized is returned for HTTP 401 responses.
	ErrUnauthorized = constError("unauthorized")
	// ErrServerError is returned for HTTP 5xx responses.
	ErrServerError = constError("server error")
	// ErrUnexpectedStatus is returned for any other non-200 response.
	ErrUnexpectedStatus = constError("unexpected status")
)

type constError string

func (e constError) Error() string {
	return string(e)
}

// StatusError describes a completed request that was not answered with 200 OK.
type StatusError struct {
	StatusCode   int
	Body         string
	EffectiveURL string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Is matches the status sentinel that corresponds to the status code.
func (e *StatusError) Is(target error) bool {
	return target == classify(e.StatusCode)
}

func classify(statusCode int) error {
	switch {
	case statusCode >= http.StatusInternalServerError:
		return ErrServerError
	case statusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case statusCode != http.StatusOK:
		return ErrUnexpectedStatus
	default:
		return nil
	}
}

// IsStatusError reports whether err carries an HTTP status failure and returns it.
func IsStatusError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}
