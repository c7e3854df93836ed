// Package apierr classifies pipeline failures into the kinds surfaced to callers.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies which pipeline stage rejected a request and why.
type Kind string

const (
	KindMissingInput     Kind = "missing_input"
	KindInvalidInput     Kind = "invalid_input"
	KindSynthesisFailure Kind = "synthesis_failure"
	KindExecutionError   Kind = "execution_error"
	KindInternal         Kind = "internal"
)

// Status returns the HTTP-equivalent status class for k.
func (k Kind) Status() int {
	switch k {
	case KindMissingInput, KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Message is what the caller sees; Err keeps
// the underlying diagnostic for logs.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so errors.Is(err, &Error{Kind: KindInvalidInput}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Status: kind.Status(), Message: message, Err: err}
}

func MissingInput(message string) *Error {
	return New(KindMissingInput, message, nil)
}

func InvalidInput(message string, err error) *Error {
	return New(KindInvalidInput, message, err)
}

// SynthesisFailure hides the diagnostic behind a generic message.
func SynthesisFailure(err error) *Error {
	return New(KindSynthesisFailure, "failed to generate a query for this request", err)
}

// ExecutionError exposes the evaluator's diagnostic text to the caller.
func ExecutionError(err error) *Error {
	msg := "query execution failed"
	if err != nil {
		msg = fmt.Sprintf("query execution failed: %v", err)
	}
	return New(KindExecutionError, msg, err)
}

// Sentinels for errors.Is checks.
var (
	ErrMissingInput     = &Error{Kind: KindMissingInput}
	ErrInvalidInput     = &Error{Kind: KindInvalidInput}
	ErrSynthesisFailure = &Error{Kind: KindSynthesisFailure}
	ErrExecutionError   = &Error{Kind: KindExecutionError}
)

// As extracts the classified error from err. Unclassified errors are
// reported as internal failures. An error without a status is returned as a
// copy with the status filled in; the recovered value is never modified.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Status == 0 {
			cp := *e
			cp.Status = e.Kind.Status()
			return &cp
		}
		return e
	}
	return New(KindInternal, "internal error", err)
}
