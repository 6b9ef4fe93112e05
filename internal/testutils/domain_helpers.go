package testutils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/memoryblocks/internal/domain"
	"github.com/phrazzld/memoryblocks/internal/domain/block"
)

// TestMemoryDate is the date given to fixture memories.
var TestMemoryDate = time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)

// NewBlock creates a block of type t with the factory.
func NewBlock(t *testing.T, typ block.Type) block.Block {
	t.Helper()
	b, err := block.New(typ)
	require.NoError(t, err, "Failed to create %s block", typ)
	return b
}

// ValidDocument returns a document that passes validation: a pinned mood
// block, a paragraph and a checklist with two open items.
func ValidDocument(t *testing.T) block.Document {
	t.Helper()

	mood := NewBlock(t, block.TypeMood).
		WithProp(block.PropEmotion, "grateful").
		WithProp(block.PropIntensity, 7)
	paragraph := NewBlock(t, block.TypeParagraph).WithContent([]any{"<p>A day at the lake</p>"})
	checklist, err := block.WithChecklistItems(NewBlock(t, block.TypeChecklist), []block.ChecklistItem{
		{Text: "pack lunch"},
		{Text: "bring camera"},
	})
	require.NoError(t, err)

	return block.Document{mood, paragraph, checklist}
}

// ValidMemoryData returns editable memory fields that pass validation.
func ValidMemoryData(t *testing.T) domain.MemoryData {
	t.Helper()
	return domain.MemoryData{
		Title:   "Lake day " + uuid.New().String()[:8],
		Color:   "#3b82f6",
		Date:    TestMemoryDate,
		Content: ValidDocument(t),
	}.WithDerivedEmotion()
}

// CreateTestMemory creates a valid memory owned by userID without saving it.
func CreateTestMemory(t *testing.T, userID uuid.UUID) *domain.Memory {
	t.Helper()
	m, err := domain.NewMemory(userID, ValidMemoryData(t))
	require.NoError(t, err, "Failed to create test memory")
	return m
}
