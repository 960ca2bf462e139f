package common

import "fmt"

// ValidationKind classifies a ValidationError so transport layers can decide
// how to re-render the originating form.
type ValidationKind string

const (
	ValidationBadDatetime   ValidationKind = "bad-datetime"
	ValidationInvalidRange  ValidationKind = "invalid-range"
	ValidationUnknownTarget ValidationKind = "unknown-target"
)

// ValidationError reports user input that failed validation. It is returned
// to the caller as a form error, never as a hard failure.
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Kind, e.Message)
}

// NewValidationError constructs a ValidationError of the given kind.
func NewValidationError(kind ValidationKind, message string) *ValidationError {
	return &ValidationError{Kind: kind, Message: message}
}
