package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "ErrMemoryNotFound", err: ErrMemoryNotFound, expected: true},
		{name: "wrapped ErrMemoryNotFound", err: fmt.Errorf("get: %w", ErrMemoryNotFound), expected: true},
		{name: "store error around not found", err: NewStoreError("memory", "get", "lookup failed", ErrMemoryNotFound), expected: true},
		{name: "ErrDuplicate", err: ErrDuplicate, expected: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDuplicateError(ErrDuplicate))
	assert.True(t, IsDuplicateError(fmt.Errorf("%w: memory", ErrDuplicate)))
	assert.False(t, IsDuplicateError(ErrNotFound))
	assert.False(t, IsDuplicateError(nil))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := NewStoreError("memory", "update", "query failed", cause)

	assert.Equal(t, "update operation on memory failed: query failed: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewStoreError("memory", "delete", "no rows", nil)
	assert.Equal(t, "delete operation on memory failed: no rows", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestNormalizePage(t *testing.T) {
	t.Parallel()

	limit, offset := NormalizePage(0, -3)
	assert.Equal(t, DefaultListLimit, limit)
	assert.Equal(t, 0, offset)

	limit, offset = NormalizePage(5, 10)
	assert.Equal(t, 5, limit)
	assert.Equal(t, 10, offset)
}
