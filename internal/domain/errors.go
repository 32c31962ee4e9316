package domain

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes how a generation stage failed.
type ErrorKind string

const (
	// ErrNoStructuredOutput means the generative response contained no
	// brace-delimited JSON span.
	ErrNoStructuredOutput ErrorKind = "no_structured_output"

	// ErrMalformedOutput means a JSON span was found but failed to parse.
	ErrMalformedOutput ErrorKind = "malformed_output"

	// ErrUnexpectedResponseShape means the upstream response was missing the
	// expected envelope (no text content, no image results, wrong cardinality).
	ErrUnexpectedResponseShape ErrorKind = "unexpected_response_shape"

	// ErrTransportFailure means the call to the upstream service itself failed.
	ErrTransportFailure ErrorKind = "transport_failure"

	// ErrFanOutPartialFailure means at least one concurrent sub-call of a
	// fan-out failed. Treated identically to a full stage failure.
	ErrFanOutPartialFailure ErrorKind = "fan_out_partial_failure"
)

// Error is the canonical pipeline error. Stages return it directly or wrapped;
// the orchestrator attaches the failing stage name on the way out.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a pipeline error of the given kind.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError creates a pipeline error wrapping an underlying cause.
func WrapError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the error kind, or ErrTransportFailure for errors that did
// not originate in the pipeline (raw transport and context errors).
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ErrTransportFailure
}

// StageError records which stage a run failed in.
type StageError struct {
	Stage string
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying stage failure.
func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the failing stage name, or "" if err is not a stage
// failure.
func FailedStage(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
