package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/memoryblocks/internal/domain"
	"github.com/phrazzld/memoryblocks/internal/domain/block"
	"github.com/phrazzld/memoryblocks/internal/events"
	"github.com/phrazzld/memoryblocks/internal/platform/sqlite"
	"github.com/phrazzld/memoryblocks/internal/store"
	"github.com/phrazzld/memoryblocks/internal/testutils"
)

// recordingEmitter keeps every emitted event.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.MemoryEvent
	err    error
}

func (e *recordingEmitter) EmitEvent(_ context.Context, event *events.MemoryEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return e.err
}

func (e *recordingEmitter) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Type)
	}
	return out
}

// MockMemoryRepository mocks the MemoryRepository interface
type MockMemoryRepository struct {
	mock.Mock
}

func (m *MockMemoryRepository) Create(ctx context.Context, memory *domain.Memory) error {
	args := m.Called(ctx, memory)
	return args.Error(0)
}

func (m *MockMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Memory, error) {
	args := m.Called(ctx, id)
	memory, _ := args.Get(0).(*domain.Memory)
	return memory, args.Error(1)
}

func (m *MockMemoryRepository) Update(ctx context.Context, memory *domain.Memory) error {
	args := m.Called(ctx, memory)
	return args.Error(0)
}

func (m *MockMemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMemoryRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Memory, error) {
	args := m.Called(ctx, userID, limit, offset)
	memories, _ := args.Get(0).([]*domain.Memory)
	return memories, args.Error(1)
}

func (m *MockMemoryRepository) WithTx(_ *sql.Tx) MemoryRepository {
	return m
}

func (m *MockMemoryRepository) DB() *sql.DB {
	return nil
}

func newTestService(t *testing.T) (MemoryService, *recordingEmitter) {
	t.Helper()
	db := testutils.NewSQLiteDB(t)
	repo := NewMemoryRepositoryAdapter(sqlite.NewMemoryStore(db, nil), db)
	emitter := &recordingEmitter{}
	svc, err := NewMemoryService(repo, emitter, nil)
	require.NoError(t, err)
	return svc, emitter
}

func TestNewMemoryService_NilRepository(t *testing.T) {
	t.Parallel()

	svc, err := NewMemoryService(nil, nil, nil)

	assert.Nil(t, svc)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestMemoryService_CreateAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, emitter := newTestService(t)
	userID := uuid.New()

	created, err := svc.CreateMemory(ctx, userID, testutils.ValidMemoryData(t))
	require.NoError(t, err)
	assert.Equal(t, userID, created.UserID)
	assert.Equal(t, "grateful", created.Emotion)

	got, err := svc.GetMemoryByID(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Len(t, got.Content, 3)

	assert.Equal(t, []string{events.TypeMemoryCreated}, emitter.types())
	var payload events.MemoryPayload
	require.NoError(t, emitter.events[0].UnmarshalPayload(&payload))
	assert.Equal(t, events.MemoryPayload{Emotion: "grateful", Blocks: 3}, payload)
}

func TestMemoryService_CreateInvalid(t *testing.T) {
	t.Parallel()
	svc, emitter := newTestService(t)

	data := testutils.ValidMemoryData(t)
	data.Title = ""
	data.Content = data.Content[1:]

	_, err := svc.CreateMemory(context.Background(), uuid.New(), data)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	var docErrs *domain.DocumentErrors
	require.True(t, errors.As(err, &docErrs))
	assert.NotEmpty(t, docErrs.Fields)
	assert.Empty(t, emitter.types())
}

func TestMemoryService_Ownership(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t)
	owner, other := uuid.New(), uuid.New()

	m, err := svc.CreateMemory(ctx, owner, testutils.ValidMemoryData(t))
	require.NoError(t, err)

	_, err = svc.GetMemoryByID(ctx, other, m.ID)
	assert.ErrorIs(t, err, ErrNotOwned)

	_, err = svc.UpdateMemory(ctx, other, m.ID, testutils.ValidMemoryData(t))
	assert.ErrorIs(t, err, ErrNotOwned)

	assert.ErrorIs(t, svc.DeleteMemory(ctx, other, m.ID), ErrNotOwned)

	_, err = svc.ToggleChecklistItem(ctx, other, m.ID, m.Content[2].ID, 0)
	assert.ErrorIs(t, err, ErrNotOwned)

	_, err = svc.GetMemoryByID(ctx, owner, m.ID)
	assert.NoError(t, err, "owner still sees the memory")
}

func TestMemoryService_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, emitter := newTestService(t)
	userID := uuid.New()

	m, err := svc.CreateMemory(ctx, userID, testutils.ValidMemoryData(t))
	require.NoError(t, err)

	data := m.Data()
	data.Title = "Renamed"
	data.Content[0] = data.Content[0].WithProp(block.PropEmotion, "calm")

	updated, err := svc.UpdateMemory(ctx, userID, m.ID, data)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "calm", updated.Emotion, "emotion follows the mood block")

	got, err := svc.GetMemoryByID(ctx, userID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "calm", got.Emotion)

	assert.Equal(t, []string{events.TypeMemoryCreated, events.TypeMemoryUpdated}, emitter.types())
}

func TestMemoryService_UpdateInvalidKeepsStoredMemory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t)
	userID := uuid.New()

	m, err := svc.CreateMemory(ctx, userID, testutils.ValidMemoryData(t))
	require.NoError(t, err)

	data := m.Data()
	data.Color = "blue"
	_, err = svc.UpdateMemory(ctx, userID, m.ID, data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	got, err := svc.GetMemoryByID(ctx, userID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Color, got.Color)
}

func TestMemoryService_UpdateMissing(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	_, err := svc.UpdateMemory(context.Background(), uuid.New(), uuid.New(), testutils.ValidMemoryData(t))

	assert.ErrorIs(t, err, store.ErrMemoryNotFound)
}

func TestMemoryService_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, emitter := newTestService(t)
	userID := uuid.New()

	m, err := svc.CreateMemory(ctx, userID, testutils.ValidMemoryData(t))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMemory(ctx, userID, m.ID))

	_, err = svc.GetMemoryByID(ctx, userID, m.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, []string{events.TypeMemoryCreated, events.TypeMemoryDeleted}, emitter.types())
}

func TestMemoryService_ListMemories(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		data := testutils.ValidMemoryData(t)
		data.Date = testutils.TestMemoryDate.AddDate(0, 0, i)
		_, err := svc.CreateMemory(ctx, userID, data)
		require.NoError(t, err)
	}
	_, err := svc.CreateMemory(ctx, uuid.New(), testutils.ValidMemoryData(t))
	require.NoError(t, err)

	all, err := svc.ListMemories(ctx, userID, 0, -1)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Date.After(all[1].Date), "newest memory first")

	page, err := svc.ListMemories(ctx, userID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestMemoryService_ListMemoriesRepositoryFailure(t *testing.T) {
	t.Parallel()

	repo := &MockMemoryRepository{}
	userID := uuid.New()
	repo.On("ListByUser", mock.Anything, userID, store.DefaultListLimit, 0).
		Return(nil, errors.New("connection reset"))

	svc, err := NewMemoryService(repo, nil, nil)
	require.NoError(t, err)

	_, err = svc.ListMemories(context.Background(), userID, 0, 0)

	var svcErr *MemoryServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "list", svcErr.Operation)
	repo.AssertExpectations(t)
}

func TestMemoryService_CreateRepositoryFailure(t *testing.T) {
	t.Parallel()

	repo := &MockMemoryRepository{}
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Memory")).Return(store.ErrDuplicate)
	emitter := &recordingEmitter{}

	svc, err := NewMemoryService(repo, emitter, nil)
	require.NoError(t, err)

	_, err = svc.CreateMemory(context.Background(), uuid.New(), testutils.ValidMemoryData(t))

	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.Empty(t, emitter.types(), "no event for a failed create")
}

func TestMemoryService_EmitterFailureDoesNotFailOperation(t *testing.T) {
	t.Parallel()

	db := testutils.NewSQLiteDB(t)
	repo := NewMemoryRepositoryAdapter(sqlite.NewMemoryStore(db, nil), db)
	emitter := &recordingEmitter{err: errors.New("handler down")}
	svc, err := NewMemoryService(repo, emitter, nil)
	require.NoError(t, err)

	_, err = svc.CreateMemory(context.Background(), uuid.New(), testutils.ValidMemoryData(t))

	assert.NoError(t, err)
	assert.Len(t, emitter.types(), 1)
}

func TestMemoryService_ToggleChecklistItem(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, emitter := newTestService(t)
	userID := uuid.New()

	m, err := svc.CreateMemory(ctx, userID, testutils.ValidMemoryData(t))
	require.NoError(t, err)
	checklistID := m.Content[2].ID

	impl := svc.(*memoryServiceImpl)
	fixed := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	impl.now = func() time.Time { return fixed }

	toggled, err := svc.ToggleChecklistItem(ctx, userID, m.ID, checklistID, 1)
	require.NoError(t, err)

	items, err := block.ChecklistItems(toggled.Content[2])
	require.NoError(t, err)
	assert.False(t, items[0].Checked)
	assert.True(t, items[1].Checked)
	require.NotNil(t, items[1].CompletedAt)
	assert.True(t, fixed.Equal(*items[1].CompletedAt))

	stored, err := svc.GetMemoryByID(ctx, userID, m.ID)
	require.NoError(t, err)
	storedItems, err := block.ChecklistItems(stored.Content[2])
	require.NoError(t, err)
	assert.True(t, storedItems[1].Checked, "toggle is persisted")

	require.Len(t, emitter.events, 2)
	var payload events.ChecklistPayload
	require.NoError(t, emitter.events[1].UnmarshalPayload(&payload))
	assert.Equal(t, events.ChecklistPayload{BlockID: checklistID, Index: 1, Checked: true}, payload)

	untoggled, err := svc.ToggleChecklistItem(ctx, userID, m.ID, checklistID, 1)
	require.NoError(t, err)
	items, err = block.ChecklistItems(untoggled.Content[2])
	require.NoError(t, err)
	assert.False(t, items[1].Checked)
	assert.Nil(t, items[1].CompletedAt)
}

func TestMemoryService_ToggleChecklistItemErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t)
	userID := uuid.New()

	m, err := svc.CreateMemory(ctx, userID, testutils.ValidMemoryData(t))
	require.NoError(t, err)

	tests := []struct {
		name    string
		blockID string
		index   int
		wantErr error
	}{
		{name: "unknown block", blockID: "missing", index: 0, wantErr: ErrBlockNotFound},
		{name: "not a checklist", blockID: m.Content[1].ID, index: 0, wantErr: block.ErrInvalidContent},
		{name: "index out of range", blockID: m.Content[2].ID, index: 5, wantErr: block.ErrInvalidContent},
		{name: "negative index", blockID: m.Content[2].ID, index: -1, wantErr: block.ErrInvalidContent},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ToggleChecklistItem(ctx, userID, m.ID, tc.blockID, tc.index)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
