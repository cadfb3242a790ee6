package sanity

import (
	"context"
	"errors"
	"fmt"
)

var errNoResult = errors.New("no result")

// Error classifies query failures for repository callers.
type Error struct {
	op          string
	status      int
	err         error
	notFound    bool
	conflict    bool
	unavailable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.op != "" {
		return fmt.Sprintf("%s: %v", e.op, e.err)
	}
	return e.err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// StatusCode is the HTTP status returned by the API, or 0 for transport failures.
func (e *Error) StatusCode() int {
	if e == nil {
		return 0
	}
	return e.status
}

// IsNotFound reports whether the document or dataset does not exist.
func (e *Error) IsNotFound() bool { return e != nil && e.notFound }

// IsConflict reports whether the API rejected the request as conflicting.
func (e *Error) IsConflict() bool { return e != nil && e.conflict }

// IsUnavailable reports a transient outage: transport errors, throttling or 5xx.
func (e *Error) IsUnavailable() bool { return e != nil && e.unavailable }

// WrapError annotates err with op, keeping existing classification. Context errors pass
// through unchanged.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var sErr *Error
	if errors.As(err, &sErr) {
		wrapped := *sErr
		wrapped.op = op
		wrapped.err = sErr
		return &wrapped
	}
	return &Error{op: op, err: err}
}

// IsNotFound reports whether err is a not-found query error.
func IsNotFound(err error) bool {
	var sErr *Error
	return errors.As(err, &sErr) && sErr.IsNotFound()
}
