package retry

import (
	"errors"
	"fmt"
)

var (
	// ErrExhausted matches any *ExhaustedError.
	ErrExhausted = errors.New("retries exhausted")
	// ErrCancelled matches any *CancelledError.
	ErrCancelled = errors.New("retry cancelled")
)

// transientError tags an error as retryable at its construction site.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// permanentError tags an error as fatal; it wins over any transient tag it wraps.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Transient marks err as retryable. Transient(nil) is nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// Permanent marks err as fatal. Permanent(nil) is nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsTransient is the default classifier: only errors tagged with Transient
// (and not re-tagged with Permanent further out) are retried.
func IsTransient(err error) bool {
	for err != nil {
		switch err.(type) {
		case *permanentError:
			return false
		case *transientError:
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// ExhaustedError wraps the last transient failure once the policy gives up.
type ExhaustedError struct {
	Operation string
	Attempts  int
	Err       error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: failed after %d attempts: %v", e.Operation, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

func (e *ExhaustedError) Is(target error) bool { return target == ErrExhausted }

// CancelledError is returned when the context ends during a backoff wait.
type CancelledError struct {
	Operation string
	Attempts  int
	Err       error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("%s: cancelled after %d attempts: %v", e.Operation, e.Attempts, e.Err)
}

func (e *CancelledError) Unwrap() error { return e.Err }

func (e *CancelledError) Is(target error) bool { return target == ErrCancelled }
