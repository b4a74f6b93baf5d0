// Package errors defines the sentinel error taxonomy shared by the retrieval
// engine, its loaders and the HTTP surface.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnknownWeighting = errors.New("unknown weighting policy")
	ErrEmptyCorpus      = errors.New("empty corpus")
	ErrInvalidInput     = errors.New("invalid input")
	ErrIndexUnavailable = errors.New("index unavailable")
	ErrInternal         = errors.New("internal error")
	ErrTimeout          = errors.New("operation timed out")
)

// AppError attaches a human-readable message and an HTTP status to a sentinel.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// Is forwards to the standard library so callers need a single import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// HTTPStatusCode maps an error to the status the search API responds with.
// An AppError's explicit status always wins.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnknownWeighting):
		return http.StatusBadRequest
	case errors.Is(err, ErrIndexUnavailable), errors.Is(err, ErrEmptyCorpus):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
