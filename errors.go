package hbledger

import (
	"errors"
	"fmt"
)

// InvalidArgumentError signals malformed caller input detected
// before any transaction is built: a bad identifier length, a
// malformed address string, or an approval threshold out of range.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return "invalid argument: " + e.Reason
}

// NewInvalidArgument creates a new InvalidArgumentError.
func NewInvalidArgument(format string, args ...any) *InvalidArgumentError {
	return &InvalidArgumentError{Reason: fmt.Sprintf(format, args...)}
}

// IsInvalidArgument checks whether an error is an
// InvalidArgumentError and returns it.
func IsInvalidArgument(err error) (*InvalidArgumentError, bool) {
	var e *InvalidArgumentError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// PreconditionFailedError signals a client-side precondition check
// that failed before submission: a duplicate vote, an unmatched
// event that does not exist, or no submission target selected.
//
// These checks are advisory — the external processor performs the
// authoritative validation — but they give fast, local feedback and
// avoid submitting a transaction doomed to be rejected.
type PreconditionFailedError struct {
	Reason string
}

func (e *PreconditionFailedError) Error() string {
	return "precondition failed: " + e.Reason
}

// NewPreconditionFailed creates a new PreconditionFailedError.
func NewPreconditionFailed(format string, args ...any) *PreconditionFailedError {
	return &PreconditionFailedError{Reason: fmt.Sprintf(format, args...)}
}

// IsPreconditionFailed checks whether an error is a
// PreconditionFailedError and returns it.
func IsPreconditionFailed(err error) (*PreconditionFailedError, bool) {
	var e *PreconditionFailedError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IOError signals a local file failure: an unreadable key file or an
// unwritable batch output file. Surfaced, never retried.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// NewIOError wraps a local file failure.
func NewIOError(op, path string, err error) *IOError {
	return &IOError{Op: op, Path: path, Err: err}
}

// IsIOError checks whether an error is an IOError and returns it.
func IsIOError(err error) (*IOError, bool) {
	var e *IOError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// ExternalServiceError signals a state read or batch submit failure
// from a validator endpoint. The underlying error is surfaced
// verbatim; this layer has no retry policy.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// NewExternalServiceError wraps a failure from an external
// collaborator.
func NewExternalServiceError(service string, err error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Err: err}
}

// IsExternalServiceError checks whether an error is an
// ExternalServiceError and returns it.
func IsExternalServiceError(err error) (*ExternalServiceError, bool) {
	var e *ExternalServiceError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
