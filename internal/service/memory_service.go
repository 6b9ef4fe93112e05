package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/memoryblocks/internal/domain"
	"github.com/phrazzld/memoryblocks/internal/domain/block"
	"github.com/phrazzld/memoryblocks/internal/editor"
	"github.com/phrazzld/memoryblocks/internal/events"
	"github.com/phrazzld/memoryblocks/internal/platform/logger"
	"github.com/phrazzld/memoryblocks/internal/store"
	"github.com/phrazzld/memoryblocks/internal/viewer"
)

// MemoryServiceError is a custom error type for memory service errors.
type MemoryServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for MemoryServiceError.
func (e *MemoryServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("memory service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("memory service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *MemoryServiceError) Unwrap() error {
	return e.Err
}

// NewMemoryServiceError creates a new MemoryServiceError.
func NewMemoryServiceError(operation, message string, err error) *MemoryServiceError {
	return &MemoryServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// MemoryRepository defines the repository interface for the service layer
type MemoryRepository interface {
	Create(ctx context.Context, memory *domain.Memory) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Memory, error)
	Update(ctx context.Context, memory *domain.Memory) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Memory, error)

	// WithTx returns a new repository instance that uses the provided transaction
	WithTx(tx *sql.Tx) MemoryRepository

	// DB returns the underlying database connection
	DB() *sql.DB
}

// MemoryService provides memory-related operations. Every operation acts on
// behalf of userID and refuses memories owned by someone else.
type MemoryService interface {
	editor.Persister

	// GetMemoryByID retrieves a memory owned by userID.
	GetMemoryByID(ctx context.Context, userID, memoryID uuid.UUID) (*domain.Memory, error)

	// ListMemories returns a page of the user's memories, newest first.
	ListMemories(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Memory, error)

	// DeleteMemory removes a memory owned by userID.
	DeleteMemory(ctx context.Context, userID, memoryID uuid.UUID) error

	// ToggleChecklistItem flips one checklist item of a stored memory and
	// returns the saved memory.
	ToggleChecklistItem(
		ctx context.Context,
		userID, memoryID uuid.UUID,
		blockID string,
		index int,
	) (*domain.Memory, error)
}

// memoryServiceImpl implements the MemoryService interface
type memoryServiceImpl struct {
	memoryRepo MemoryRepository
	emitter    events.EventEmitter
	logger     *slog.Logger
	now        func() time.Time
}

var _ MemoryService = (*memoryServiceImpl)(nil)

// NewMemoryService creates a new MemoryService.
// It returns an error if the repository is nil. A nil emitter disables events.
func NewMemoryService(
	memoryRepo MemoryRepository,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (MemoryService, error) {
	if memoryRepo == nil {
		return nil, fmt.Errorf("%w: memoryRepo cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &memoryServiceImpl{
		memoryRepo: memoryRepo,
		emitter:    emitter,
		logger:     logger.With(slog.String("component", "memory_service")),
		now:        time.Now,
	}, nil
}

// CreateMemory implements editor.Persister.
func (s *memoryServiceImpl) CreateMemory(
	ctx context.Context,
	userID uuid.UUID,
	data domain.MemoryData,
) (*domain.Memory, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	memory, err := domain.NewMemory(userID, data)
	if err != nil {
		log.Debug("rejected invalid memory", slog.String("error", err.Error()))
		return nil, NewMemoryServiceError("create", "invalid memory", err)
	}

	if err := s.memoryRepo.Create(ctx, memory); err != nil {
		log.Error("failed to save memory",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewMemoryServiceError("create", "failed to save memory", err)
	}

	log.Info("memory created",
		slog.String("memory_id", memory.ID.String()),
		slog.String("user_id", userID.String()),
		slog.Int("blocks", len(memory.Content)))

	s.emit(ctx, events.TypeMemoryCreated, memory, memoryPayload(memory))
	return memory, nil
}

// UpdateMemory implements editor.Persister.
func (s *memoryServiceImpl) UpdateMemory(
	ctx context.Context,
	userID, memoryID uuid.UUID,
	data domain.MemoryData,
) (*domain.Memory, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Memory
	err := store.RunInTransaction(ctx, s.memoryRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.memoryRepo.WithTx(tx)

		memory, err := s.getOwned(ctx, txRepo, userID, memoryID, "update")
		if err != nil {
			return err
		}
		if err := memory.Update(data); err != nil {
			return NewMemoryServiceError("update", "invalid memory", err)
		}
		if err := txRepo.Update(ctx, memory); err != nil {
			return NewMemoryServiceError("update", "failed to save memory", err)
		}
		updated = memory
		return nil
	})
	if err != nil {
		log.Debug("memory update failed",
			slog.String("memory_id", memoryID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("memory updated", slog.String("memory_id", memoryID.String()))
	s.emit(ctx, events.TypeMemoryUpdated, updated, memoryPayload(updated))
	return updated, nil
}

// GetMemoryByID implements MemoryService.GetMemoryByID
func (s *memoryServiceImpl) GetMemoryByID(ctx context.Context, userID, memoryID uuid.UUID) (*domain.Memory, error) {
	return s.getOwned(ctx, s.memoryRepo, userID, memoryID, "get")
}

// ListMemories implements MemoryService.ListMemories
func (s *memoryServiceImpl) ListMemories(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Memory, error) {
	limit, offset = store.NormalizePage(limit, offset)
	memories, err := s.memoryRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list memories",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewMemoryServiceError("list", "failed to list memories", err)
	}
	return memories, nil
}

// DeleteMemory implements MemoryService.DeleteMemory
func (s *memoryServiceImpl) DeleteMemory(ctx context.Context, userID, memoryID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var deleted *domain.Memory
	err := store.RunInTransaction(ctx, s.memoryRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.memoryRepo.WithTx(tx)

		memory, err := s.getOwned(ctx, txRepo, userID, memoryID, "delete")
		if err != nil {
			return err
		}
		if err := txRepo.Delete(ctx, memoryID); err != nil {
			return NewMemoryServiceError("delete", "failed to delete memory", err)
		}
		deleted = memory
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("memory deleted", slog.String("memory_id", memoryID.String()))
	s.emit(ctx, events.TypeMemoryDeleted, deleted, nil)
	return nil
}

// ToggleChecklistItem implements MemoryService.ToggleChecklistItem
func (s *memoryServiceImpl) ToggleChecklistItem(
	ctx context.Context,
	userID, memoryID uuid.UUID,
	blockID string,
	index int,
) (*domain.Memory, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		updated *domain.Memory
		checked bool
	)
	err := store.RunInTransaction(ctx, s.memoryRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.memoryRepo.WithTx(tx)

		memory, err := s.getOwned(ctx, txRepo, userID, memoryID, "toggle")
		if err != nil {
			return err
		}
		b, ok := memory.Content.Find(blockID)
		if !ok {
			return NewMemoryServiceError("toggle", "unknown block "+blockID, ErrBlockNotFound)
		}

		data := memory.Data()
		toggled, err := viewer.ToggleChecklistItem(b, index, s.now(), func(updated block.Block) {
			data.Content, _ = data.Content.Replace(updated)
		})
		if err != nil {
			return NewMemoryServiceError("toggle", "cannot toggle checklist item", err)
		}
		if err := memory.Update(data); err != nil {
			return NewMemoryServiceError("toggle", "invalid memory", err)
		}
		if err := txRepo.Update(ctx, memory); err != nil {
			return NewMemoryServiceError("toggle", "failed to save memory", err)
		}

		items, err := block.ChecklistItems(toggled)
		if err == nil && index < len(items) {
			checked = items[index].Checked
		}
		updated = memory
		return nil
	})
	if err != nil {
		log.Debug("checklist toggle failed",
			slog.String("memory_id", memoryID.String()),
			slog.String("block_id", blockID),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.emit(ctx, events.TypeChecklistToggled, updated, events.ChecklistPayload{
		BlockID: blockID,
		Index:   index,
		Checked: checked,
	})
	return updated, nil
}

// getOwned loads a memory through repo and checks that userID owns it.
func (s *memoryServiceImpl) getOwned(
	ctx context.Context,
	repo MemoryRepository,
	userID, memoryID uuid.UUID,
	operation string,
) (*domain.Memory, error) {
	memory, err := repo.GetByID(ctx, memoryID)
	if err != nil {
		return nil, NewMemoryServiceError(operation, "failed to load memory", err)
	}
	if memory.UserID != userID {
		logger.FromContextOrDefault(ctx, s.logger).Warn("memory access denied",
			slog.String("memory_id", memoryID.String()),
			slog.String("user_id", userID.String()))
		return nil, ErrNotOwned
	}
	return memory, nil
}

func memoryPayload(m *domain.Memory) events.MemoryPayload {
	return events.MemoryPayload{Emotion: m.Emotion, Blocks: len(m.Content)}
}

// emit publishes an event after the change is committed. Handler failures
// are logged and never fail the operation.
func (s *memoryServiceImpl) emit(ctx context.Context, eventType string, m *domain.Memory, payload any) {
	if s.emitter == nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewMemoryEvent(eventType, m.ID, m.UserID, payload)
	if err != nil {
		log.Error("failed to build memory event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("memory event handler failed",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
	}
}
