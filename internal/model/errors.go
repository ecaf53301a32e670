package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoCredential is returned by a connector whose required credential is
// absent. The pass treats it as a documented skip, not a failure.
var ErrNoCredential = errors.New("credential not configured")

// HTTPError wraps an HTTP status code so failure classification can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
