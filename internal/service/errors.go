package service

import (
	"errors"
	"net/http"
)

// HTTPError is a service error with the HTTP status it should be answered with.
// A denied login is not an HTTPError, it is reported through LoginResponse.
type HTTPError struct {
	StatusCode int
	Wrapped    error
}

func (e *HTTPError) Error() string {
	return e.Wrapped.Error()
}

func (e *HTTPError) Unwrap() error {
	return e.Wrapped
}

func httpError(statusCode int, err error) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Wrapped: err}
}

// StatusOf returns the status of the first HTTPError in err's chain,
// or fallback if there is none.
func StatusOf(err error, fallback int) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	if fallback == 0 {
		return http.StatusInternalServerError
	}
	return fallback
}
