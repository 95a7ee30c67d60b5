// Package errors defines the error taxonomy shared by the ciffbridge
// conversion pipelines and maps fatal conditions to process exit codes.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedMessage reports a postings frame whose payload could not
	// be decoded within its declared length.
	ErrMalformedMessage = errors.New("malformed postings message")
	// ErrCountMismatch reports a postings list whose declared document
	// frequency disagrees with the number of postings actually present.
	ErrCountMismatch = errors.New("posting count mismatch")
	// ErrInvalidFormat reports a byte stream that does not follow the
	// canonical binary collection layout.
	ErrInvalidFormat = errors.New("invalid binary collection format")
	// ErrInvalidInput reports malformed collaborator input, such as a bad
	// document length line or a negative identifier.
	ErrInvalidInput = errors.New("invalid input")
)

// Exit codes returned by the conversion tools.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitBadInput = 2
)

// ConvertError wraps a sentinel with context and the exit code the process
// should terminate with.
type ConvertError struct {
	Err     error
	Message string
	Code    int
}

func (e *ConvertError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *ConvertError) Unwrap() error {
	return e.Err
}

// New wraps a sentinel error with an exit code and message.
func New(sentinel error, code int, message string) *ConvertError {
	return &ConvertError{
		Err:     sentinel,
		Message: message,
		Code:    code,
	}
}

// Newf wraps a sentinel error with an exit code and a formatted message.
func Newf(sentinel error, code int, format string, args ...any) *ConvertError {
	return &ConvertError{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	}
}

// CountMismatchError identifies the offending term when a postings list
// declares a document frequency that does not match its posting count.
type CountMismatchError struct {
	Term     string
	TermID   int
	Declared int64
	Actual   int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("term %q (id %d): declared df %d but decoded %d postings",
		e.Term, e.TermID, e.Declared, e.Actual)
}

// Is makes CountMismatchError match ErrCountMismatch under errors.Is.
func (e *CountMismatchError) Is(target error) bool {
	return target == ErrCountMismatch
}

// ExitCode resolves the process exit code for an error. Nil means success;
// wrapped ConvertErrors carry their own code; every other fatal condition
// maps to a generic failure.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var convErr *ConvertError
	if errors.As(err, &convErr) {
		return convErr.Code
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		return ExitBadInput
	default:
		return ExitFailure
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
