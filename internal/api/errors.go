package api

import (
	"errors"
	"fmt"
)

var (
	// ErrTransient marks a failed external call. Callers skip the step and
	// retry on the next pass; it never means "the resource does not exist".
	ErrTransient = errors.New("transient failure")

	// ErrNotFound marks a resource confirmed absent by the cluster.
	ErrNotFound = errors.New("not found")
)

// TransientError wraps the cause of a failed external call together with
// the operation that failed.
type TransientError struct {
	// Op names the failed operation, e.g. "list deployments payments".
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrTransient) true for every TransientError.
func (e *TransientError) Is(target error) bool {
	return target == ErrTransient
}

// NewTransientError builds a TransientError. A nil err yields nil.
func NewTransientError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Op: op, Err: err}
}

// IsTransient reports whether err is or wraps a transient failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
