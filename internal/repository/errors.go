package repository

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is a unique key collision.
	ErrDuplicate = errors.New("duplicate key")
	// ErrRestricted is a delete refused because other records still reference the row.
	ErrRestricted = errors.New("record is still referenced")
	// ErrInvalidReference is a write pointing at a row that does not exist.
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// ConstraintError ties a constraint failure to the field that caused it.
type ConstraintError struct {
	Kind  error
	Field string
}

func (e *ConstraintError) Error() string {
	if e.Field == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Kind)
}

func (e *ConstraintError) Unwrap() error {
	return e.Kind
}

func Constraint(kind error, field string) error {
	return &ConstraintError{Kind: kind, Field: field}
}

// FieldOf returns the field recorded in err's chain, if any.
func FieldOf(err error) string {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce.Field
	}
	return ""
}
