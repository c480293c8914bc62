package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("already exists")
	ErrAlreadyParticipating = errors.New("already participating")
	ErrUnauthorized         = errors.New("not allowed")
	ErrValidation           = errors.New("invalid input")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
