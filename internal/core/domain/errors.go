package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound    = errors.New("inventory item not found")
	ErrValidation  = errors.New("invalid request")
	ErrConstraint  = errors.New("constraint violation")
	ErrUnavailable = errors.New("storage unavailable")
)

type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Inventory item %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) String() string {
	if e.Reason == "" {
		return "missing required field: " + e.Field
	}
	return e.Field + ": " + e.Reason
}

// ValidationError collects every problem found in one request body.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// Missing records an absent required field.
func (e *ValidationError) Missing(field string) {
	e.Add(field, "")
}

// OrNil returns e when it holds at least one field problem.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ConstraintError is a write the storage engine refused. Field is empty when
// the engine did not say which column was at fault.
type ConstraintError struct {
	Field      string
	OutOfRange bool
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.OutOfRange && e.Field != "" {
		return e.Field + " out of range"
	}
	return "invalid input data"
}

func (e *ConstraintError) Is(target error) bool {
	return target == ErrConstraint
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}
