package core

import (
	"errors"
	"fmt"
)

const (
	InvalidOdometerRange ValidationKind = "InvalidOdometerRange"
	InvalidAmount        ValidationKind = "InvalidAmount"
	MissingRequiredField ValidationKind = "MissingRequiredField"
)

// ValidationKind classifies why a record could not be built.
type ValidationKind string

// ValidationError is returned instead of a record whenever an invariant
// cannot be met. It is never auto-corrected.
type ValidationError struct {
	Kind   ValidationKind
	Field  string
	Reason string
}

var (
	ErrInvalidOdometerRange = &ValidationError{Kind: InvalidOdometerRange}
	ErrInvalidAmount        = &ValidationError{Kind: InvalidAmount}
	ErrMissingRequiredField = &ValidationError{Kind: MissingRequiredField}
)

func (e *ValidationError) Error() string {
	switch {
	case e.Reason != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	default:
		return string(e.Kind)
	}
}

// Is matches on Kind so errors.Is(err, ErrInvalidAmount) works for any field.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Field == "" || t.Field == e.Field)
}

// AsValidationError unwraps err into a *ValidationError when it carries one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
