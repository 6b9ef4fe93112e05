package block

import (
	"errors"
	"fmt"
)

// Block errors
var (
	// ErrUnknownBlockType is returned when a type is absent from the registry.
	// It blocks the operation that encountered it.
	ErrUnknownBlockType = errors.New("unknown block type")

	// ErrBlockValidation is wrapped by every per-block rule violation.
	ErrBlockValidation = errors.New("block validation failed")

	// ErrInvalidContent is returned when props or content cannot be read as
	// the shape the block type requires.
	ErrInvalidContent = errors.New("invalid block content")
)

// UnknownTypeError reports the unregistered type that was requested.
type UnknownTypeError struct {
	Type Type
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown block type %q", string(e.Type))
}

// Unwrap allows errors.Is(err, ErrUnknownBlockType).
func (e *UnknownTypeError) Unwrap() error {
	return ErrUnknownBlockType
}

// ValidationError is a single rule violation on one block.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap allows errors.Is(err, ErrBlockValidation).
func (e *ValidationError) Unwrap() error {
	return ErrBlockValidation
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
