package editor

import (
	"errors"
	"fmt"

	"github.com/phrazzld/memoryblocks/internal/domain/block"
)

var (
	// ErrTypeUnavailable is returned when a block type cannot be added to
	// the document, because of its usage limit, the block ceiling or a
	// read-only session.
	ErrTypeUnavailable = errors.New("block type unavailable")

	// ErrReadOnly is returned when mutating a read-only session.
	ErrReadOnly = errors.New("session is read-only")

	// ErrSessionClosed is returned when mutating a submitted or discarded session.
	ErrSessionClosed = errors.New("session is closed")

	// ErrBlockNotFound is returned when no block has the requested id.
	ErrBlockNotFound = errors.New("block not found")

	// ErrWrongBlockType is returned when an editor is given a block of
	// another type.
	ErrWrongBlockType = errors.New("wrong block type for editor")

	// ErrIndexOutOfRange is returned for item or image positions that do
	// not exist.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidValue is returned for property values outside their domain.
	ErrInvalidValue = errors.New("invalid value")

	// ErrFileValidation is wrapped by every FileValidationError.
	ErrFileValidation = errors.New("file validation failed")
)

// FileValidationError reports why one file of an upload batch was rejected.
type FileValidationError struct {
	// Index is the position of the file in the submitted batch.
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

func (e *FileValidationError) Error() string {
	return fmt.Sprintf("file %d (%s): %s", e.Index+1, e.Name, e.Reason)
}

func (e *FileValidationError) Unwrap() error {
	return ErrFileValidation
}

func wrongType(want, got block.Type) error {
	return fmt.Errorf("%w: want %s, got %s", ErrWrongBlockType, want, got)
}
