package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := NewError(ErrMalformedOutput, "bad json")
	if KindOf(err) != ErrMalformedOutput {
		t.Errorf("Expected malformed_output, got %v", KindOf(err))
	}

	wrapped := fmt.Errorf("outer: %w", WrapError(ErrNoStructuredOutput, "no json", errors.New("inner")))
	if KindOf(wrapped) != ErrNoStructuredOutput {
		t.Errorf("Expected no_structured_output through wrapping, got %v", KindOf(wrapped))
	}

	if KindOf(errors.New("plain")) != ErrTransportFailure {
		t.Errorf("Plain errors should map to transport_failure, got %v", KindOf(errors.New("plain")))
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(ErrTransportFailure, "calling research service", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to reach the cause")
	}
	if err.Error() != "transport_failure: calling research service: connection refused" {
		t.Errorf("Unexpected message: %q", err.Error())
	}
}

func TestFailedStage(t *testing.T) {
	inner := NewError(ErrUnexpectedResponseShape, "expected 6 questions, got 5")
	se := &StageError{Stage: "Questions", Err: inner}

	if got := FailedStage(se); got != "Questions" {
		t.Errorf("Expected Questions, got %q", got)
	}
	if got := FailedStage(fmt.Errorf("wrapped: %w", se)); got != "Questions" {
		t.Errorf("Expected Questions through wrapping, got %q", got)
	}
	if got := FailedStage(inner); got != "" {
		t.Errorf("Expected empty stage for non-stage error, got %q", got)
	}
	if KindOf(se) != ErrUnexpectedResponseShape {
		t.Errorf("Stage error should expose the inner kind, got %v", KindOf(se))
	}
}
