package domain

import (
	"errors"
	"fmt"
)

// ErrTemplateNotFound is returned when a prompt name cannot be resolved by the template store.
var ErrTemplateNotFound = errors.New("template not found")

// ErrBackendUnavailable is returned when an executor cannot build its backend client.
// It surfaces on the first call that needs the client, never at construction.
var ErrBackendUnavailable = errors.New("backend unavailable")

// ErrBackendCallFailed is returned when the backend rejects a request or the transport fails.
var ErrBackendCallFailed = errors.New("backend call failed")

// BackendError carries the details of a failed backend call.
// It matches ErrBackendCallFailed with errors.Is.
type BackendError struct {
	Backend    string
	StatusCode int
	Body       string
	Err        error
}

func (e *BackendError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Backend, ErrBackendCallFailed.Error())
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Is makes every BackendError match ErrBackendCallFailed.
func (e *BackendError) Is(target error) bool {
	return target == ErrBackendCallFailed
}

// Unavailable wraps the cause of a client construction failure.
func Unavailable(backend string, cause error) error {
	return fmt.Errorf("%s: %w: %w", backend, ErrBackendUnavailable, cause)
}
