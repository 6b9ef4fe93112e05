package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/phrazzld/memoryblocks/internal/domain"
)

// DefaultListLimit is used when a list call passes a non-positive limit.
const DefaultListLimit = 20

// MemoryStore persists memories together with their block documents.
type MemoryStore interface {
	// Create saves a new memory. The memory is validated first; a
	// *domain.DocumentErrors is returned when it is invalid.
	Create(ctx context.Context, memory *domain.Memory) error

	// GetByID retrieves a memory by its ID.
	// Returns ErrMemoryNotFound if the memory does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Memory, error)

	// Update saves the editable fields and UpdatedAt of an existing memory.
	// Returns ErrMemoryNotFound if the memory does not exist.
	Update(ctx context.Context, memory *domain.Memory) error

	// Delete removes a memory.
	// Returns ErrMemoryNotFound if the memory does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByUser returns the memories of a user, newest memory date first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Memory, error)

	// WithTx returns a MemoryStore that runs its queries in tx.
	WithTx(tx *sql.Tx) MemoryStore
}

// NormalizePage clamps list paging arguments.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
