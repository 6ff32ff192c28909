package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("Cet email est déjà utilisé")
	ErrValidation     = errors.New("validation failed")
)

type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every field that violated its constraint.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}

	parts := make([]string, 0, len(e.Fields))

	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}

	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// UserError ties a domain sentinel to the user it concerns.
type UserError struct {
	Err error
	ID  int64
}

func (e *UserError) Error() string {
	return fmt.Sprintf("%s (id %d)", e.Err.Error(), e.ID)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

func NotFound(id int64) error {
	return &UserError{Err: ErrUserNotFound, ID: id}
}
