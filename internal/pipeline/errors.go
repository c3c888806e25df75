package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies a run error.
type Kind string

const (
	// KindAssociationLoad covers malformed association input.
	KindAssociationLoad Kind = "association_load"
	// KindValidation covers association preconditions (no products).
	KindValidation Kind = "validation"
	// KindStage covers analysis, aggregation, and normalization failures.
	KindStage Kind = "stage"
	// KindBlend covers provenance merge failures.
	KindBlend Kind = "blend"
	// KindPersist covers product I/O failures.
	KindPersist Kind = "persist"
)

// RunError is a run failure with enough context to tell which phase and
// which member or product it came from. Every RunError is fatal to the
// run; the pipeline performs no retries.
type RunError struct {
	Kind    Kind
	Phase   Phase
	Subject string // exposure or product the failure relates to
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *RunError) Error() string {
	msg := fmt.Sprintf("[%s] %s: %s", e.Kind, e.Phase, e.Message)
	if e.Subject != "" {
		msg = fmt.Sprintf("[%s] %s (%s): %s", e.Kind, e.Phase, e.Subject, e.Message)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *RunError) Unwrap() error {
	return e.Cause
}

// NewRunError creates a RunError.
func NewRunError(kind Kind, phase Phase, subject, message string, cause error) *RunError {
	return &RunError{
		Kind:    kind,
		Phase:   phase,
		Subject: subject,
		Message: message,
		Cause:   cause,
	}
}

// KindOf returns the Kind carried by err, or "" if err is not a RunError.
func KindOf(err error) Kind {
	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr.Kind
	}
	return ""
}

// PhaseOf returns the Phase carried by err, or "" if err is not a RunError.
func PhaseOf(err error) Phase {
	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr.Phase
	}
	return ""
}
