package driver

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse marks a backend response that could not be parsed.
var ErrMalformedResponse = errors.New("malformed response")

// ErrStateRunning and ErrStateIdle report failed atomic transitions of the
// persisted sync state.
var (
	ErrStateRunning = errors.New("sync state already running")
	ErrStateIdle    = errors.New("sync state not running")
)

// Error is a failure at the driver layer. Status carries the backend's
// HTTP status code when one was received, zero otherwise.
type Error struct {
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
