package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/memoryblocks/internal/domain"
	"github.com/phrazzld/memoryblocks/internal/domain/block"
	"github.com/phrazzld/memoryblocks/internal/platform/logger"
	"github.com/phrazzld/memoryblocks/internal/store"
)

const memoryColumns = `id, user_id, title, emotion, color, memory_date, content, created_at, updated_at`

// PostgresMemoryStore implements store.MemoryStore on PostgreSQL.
type PostgresMemoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMemoryStore creates a memory store on db, which may be a
// connection pool or a transaction. If logger is nil, slog.Default() is used.
func NewPostgresMemoryStore(db store.DBTX, logger *slog.Logger) *PostgresMemoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresMemoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "memory_store")),
	}
}

var _ store.MemoryStore = (*PostgresMemoryStore)(nil)

// WithTx implements store.MemoryStore.WithTx.
func (s *PostgresMemoryStore) WithTx(tx *sql.Tx) store.MemoryStore {
	return &PostgresMemoryStore{db: tx, logger: s.logger}
}

// Create implements store.MemoryStore.Create.
func (s *PostgresMemoryStore) Create(ctx context.Context, memory *domain.Memory) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := memory.Validate(); err != nil {
		log.Warn("memory validation failed during create",
			slog.String("error", err.Error()),
			slog.String("memory_id", memory.ID.String()))
		return err
	}

	content, err := block.EncodeDocument(memory.Content)
	if err != nil {
		return fmt.Errorf("%w: content: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO memories (` + memoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(ctx, query,
		memory.ID,
		memory.UserID,
		memory.Title,
		memory.Emotion,
		memory.Color,
		memory.Date,
		string(content),
		memory.CreatedAt,
		memory.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create memory",
			slog.String("error", err.Error()),
			slog.String("memory_id", memory.ID.String()),
			slog.String("user_id", memory.UserID.String()))
		return MapError(err)
	}

	log.Info("memory created",
		slog.String("memory_id", memory.ID.String()),
		slog.String("user_id", memory.UserID.String()),
		slog.Int("blocks", len(memory.Content)))
	return nil
}

// GetByID implements store.MemoryStore.GetByID.
func (s *PostgresMemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Memory, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + memoryColumns + ` FROM memories WHERE id = $1`
	memory, err := scanMemory(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("memory not found", slog.String("memory_id", id.String()))
			return nil, store.ErrMemoryNotFound
		}
		log.Error("failed to get memory by ID",
			slog.String("error", err.Error()),
			slog.String("memory_id", id.String()))
		return nil, MapError(err)
	}
	return memory, nil
}

// Update implements store.MemoryStore.Update.
func (s *PostgresMemoryStore) Update(ctx context.Context, memory *domain.Memory) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := memory.Validate(); err != nil {
		log.Warn("memory validation failed during update",
			slog.String("error", err.Error()),
			slog.String("memory_id", memory.ID.String()))
		return err
	}

	content, err := block.EncodeDocument(memory.Content)
	if err != nil {
		return fmt.Errorf("%w: content: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE memories
		SET title = $1, emotion = $2, color = $3, memory_date = $4, content = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := s.db.ExecContext(ctx, query,
		memory.Title,
		memory.Emotion,
		memory.Color,
		memory.Date,
		string(content),
		memory.UpdatedAt,
		memory.ID,
	)
	if err != nil {
		log.Error("failed to update memory",
			slog.String("error", err.Error()),
			slog.String("memory_id", memory.ID.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrMemoryNotFound); err != nil {
		log.Debug("memory not updated",
			slog.String("memory_id", memory.ID.String()),
			slog.String("reason", err.Error()))
		return err
	}

	log.Info("memory updated",
		slog.String("memory_id", memory.ID.String()),
		slog.Int("blocks", len(memory.Content)))
	return nil
}

// Delete implements store.MemoryStore.Delete.
func (s *PostgresMemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete memory",
			slog.String("error", err.Error()),
			slog.String("memory_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrMemoryNotFound); err != nil {
		return err
	}

	log.Info("memory deleted", slog.String("memory_id", id.String()))
	return nil
}

// ListByUser implements store.MemoryStore.ListByUser.
func (s *PostgresMemoryStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Memory, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	limit, offset = store.NormalizePage(limit, offset)

	query := `
		SELECT ` + memoryColumns + `
		FROM memories
		WHERE user_id = $1
		ORDER BY memory_date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		log.Error("failed to list memories",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	memories := []*domain.Memory{}
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, MapError(err)
		}
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("memories listed",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(memories)))
	return memories, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(row rowScanner) (*domain.Memory, error) {
	var (
		m       domain.Memory
		content []byte
	)
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.Title,
		&m.Emotion,
		&m.Color,
		&m.Date,
		&content,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if m.Content, err = block.DecodeDocument(content); err != nil {
		return nil, fmt.Errorf("%w: stored content of memory %s: %v", store.ErrInvalidEntity, m.ID, err)
	}
	m.Date = m.Date.UTC()
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
	return &m, nil
}
