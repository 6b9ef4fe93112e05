package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/memoryblocks/internal/domain"
	"github.com/phrazzld/memoryblocks/internal/domain/block"
	"github.com/phrazzld/memoryblocks/internal/platform/logger"
	"github.com/phrazzld/memoryblocks/internal/store"
)

const memoryColumns = `id, user_id, title, emotion, color, memory_date, content, created_at, updated_at`

// MemoryStore implements store.MemoryStore on SQLite.
type MemoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewMemoryStore creates a memory store on db. If logger is nil,
// slog.Default() is used.
func NewMemoryStore(db store.DBTX, logger *slog.Logger) *MemoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "memory_store"), slog.String("driver", DriverName)),
	}
}

var _ store.MemoryStore = (*MemoryStore)(nil)

// WithTx implements store.MemoryStore.WithTx.
func (s *MemoryStore) WithTx(tx *sql.Tx) store.MemoryStore {
	return &MemoryStore{db: tx, logger: s.logger}
}

// Create implements store.MemoryStore.Create.
func (s *MemoryStore) Create(ctx context.Context, memory *domain.Memory) error {
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

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO memories (`+memoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		memory.ID.String(),
		memory.UserID.String(),
		memory.Title,
		memory.Emotion,
		memory.Color,
		formatTime(memory.Date),
		string(content),
		formatTime(memory.CreatedAt),
		formatTime(memory.UpdatedAt),
	)
	if err != nil {
		log.Error("failed to create memory",
			slog.String("error", err.Error()),
			slog.String("memory_id", memory.ID.String()))
		return mapError(err)
	}

	log.Info("memory created",
		slog.String("memory_id", memory.ID.String()),
		slog.String("user_id", memory.UserID.String()),
		slog.Int("blocks", len(memory.Content)))
	return nil
}

// GetByID implements store.MemoryStore.GetByID.
func (s *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Memory, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx, `SELECT `+memoryColumns+` FROM memories WHERE id = ?`, id.String())
	memory, err := scanMemory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("memory not found", slog.String("memory_id", id.String()))
			return nil, store.ErrMemoryNotFound
		}
		log.Error("failed to get memory by ID",
			slog.String("error", err.Error()),
			slog.String("memory_id", id.String()))
		return nil, mapError(err)
	}
	return memory, nil
}

// Update implements store.MemoryStore.Update.
func (s *MemoryStore) Update(ctx context.Context, memory *domain.Memory) error {
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

	result, err := s.db.ExecContext(ctx, `
		UPDATE memories
		SET title = ?, emotion = ?, color = ?, memory_date = ?, content = ?, updated_at = ?
		WHERE id = ?`,
		memory.Title,
		memory.Emotion,
		memory.Color,
		formatTime(memory.Date),
		string(content),
		formatTime(memory.UpdatedAt),
		memory.ID.String(),
	)
	if err != nil {
		log.Error("failed to update memory",
			slog.String("error", err.Error()),
			slog.String("memory_id", memory.ID.String()))
		return mapError(err)
	}
	if err := requireRow(result); err != nil {
		return err
	}

	log.Info("memory updated",
		slog.String("memory_id", memory.ID.String()),
		slog.Int("blocks", len(memory.Content)))
	return nil
}

// Delete implements store.MemoryStore.Delete.
func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id.String())
	if err != nil {
		log.Error("failed to delete memory",
			slog.String("error", err.Error()),
			slog.String("memory_id", id.String()))
		return mapError(err)
	}
	if err := requireRow(result); err != nil {
		return err
	}
	log.Info("memory deleted", slog.String("memory_id", id.String()))
	return nil
}

// ListByUser implements store.MemoryStore.ListByUser.
func (s *MemoryStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Memory, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	limit, offset = store.NormalizePage(limit, offset)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+memoryColumns+`
		FROM memories
		WHERE user_id = ?
		ORDER BY memory_date DESC, created_at DESC
		LIMIT ? OFFSET ?`,
		userID.String(), limit, offset)
	if err != nil {
		log.Error("failed to list memories",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	memories := []*domain.Memory{}
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, mapError(err)
		}
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return memories, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(row rowScanner) (*domain.Memory, error) {
	var (
		m                      domain.Memory
		date, created, updated string
		content                string
	)
	if err := row.Scan(&m.ID, &m.UserID, &m.Title, &m.Emotion, &m.Color, &date, &content, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if m.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if m.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if m.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	if m.Content, err = block.DecodeDocument([]byte(content)); err != nil {
		return nil, fmt.Errorf("%w: stored content of memory %s: %v", store.ErrInvalidEntity, m.ID, err)
	}
	return &m, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: stored timestamp %q: %v", store.ErrInvalidEntity, s, err)
	}
	return t.UTC(), nil
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrMemoryNotFound
	}
	return nil
}

// mapError translates SQLite constraint failures into store errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "PRIMARY KEY constraint failed"):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case strings.Contains(msg, "CHECK constraint failed"),
		strings.Contains(msg, "NOT NULL constraint failed"):
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	return err
}
