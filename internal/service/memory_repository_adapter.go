package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/phrazzld/memoryblocks/internal/domain"
	"github.com/phrazzld/memoryblocks/internal/store"
)

// NewMemoryRepositoryAdapter creates a new adapter that allows a
// store.MemoryStore to be used where a MemoryRepository is expected.
func NewMemoryRepositoryAdapter(memoryStore store.MemoryStore, db *sql.DB) MemoryRepository {
	return &memoryRepositoryAdapter{
		memoryStore: memoryStore,
		db:          db,
	}
}

// memoryRepositoryAdapter adapts a store.MemoryStore to the MemoryRepository interface
type memoryRepositoryAdapter struct {
	memoryStore store.MemoryStore
	db          *sql.DB
}

// Create implements MemoryRepository.Create
func (a *memoryRepositoryAdapter) Create(ctx context.Context, memory *domain.Memory) error {
	return a.memoryStore.Create(ctx, memory)
}

// GetByID implements MemoryRepository.GetByID
func (a *memoryRepositoryAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.Memory, error) {
	return a.memoryStore.GetByID(ctx, id)
}

// Update implements MemoryRepository.Update
func (a *memoryRepositoryAdapter) Update(ctx context.Context, memory *domain.Memory) error {
	return a.memoryStore.Update(ctx, memory)
}

// Delete implements MemoryRepository.Delete
func (a *memoryRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	return a.memoryStore.Delete(ctx, id)
}

// ListByUser implements MemoryRepository.ListByUser
func (a *memoryRepositoryAdapter) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Memory, error) {
	return a.memoryStore.ListByUser(ctx, userID, limit, offset)
}

// WithTx implements MemoryRepository.WithTx
func (a *memoryRepositoryAdapter) WithTx(tx *sql.Tx) MemoryRepository {
	return &memoryRepositoryAdapter{
		memoryStore: a.memoryStore.WithTx(tx),
		db:          a.db,
	}
}

// DB implements MemoryRepository.DB
func (a *memoryRepositoryAdapter) DB() *sql.DB {
	return a.db
}
