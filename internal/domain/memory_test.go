package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/memoryblocks/internal/domain/block"
)

func validData() MemoryData {
	return MemoryData{
		Title: "Sunday at the lake",
		Color: "#3b82f6",
		Date:  time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		Content: block.Document{
			{ID: "m", Type: block.TypeMood, Props: map[string]any{
				block.PropEmotion: "calm", block.PropIntensity: 6, block.PropNote: "",
			}, Content: []any{}},
			{ID: "p", Type: block.TypeParagraph, Props: map[string]any{}, Content: []any{"<p>Still water.</p>"}},
		},
	}
}

func TestNewMemory(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	data := validData()
	data.Title = "  Sunday at the lake  "
	data.Emotion = "ignored"

	m, err := NewMemory(userID, data)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, m.ID)
	assert.Equal(t, userID, m.UserID)
	assert.Equal(t, "Sunday at the lake", m.Title)
	assert.Equal(t, "calm", m.Emotion, "emotion comes from the mood block")
	assert.False(t, m.CreatedAt.IsZero())
	assert.Equal(t, m.CreatedAt, m.UpdatedAt)
	assert.Len(t, m.Content, 2)
}

func TestNewMemory_MissingUser(t *testing.T) {
	t.Parallel()

	_, err := NewMemory(uuid.Nil, validData())
	assert.ErrorIs(t, err, ErrEmptyMemoryUserID)
}

func TestMemoryData_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		mutate     func(*MemoryData)
		wantFields []string
		wantBlocks []int
	}{
		{name: "valid", mutate: func(*MemoryData) {}},
		{name: "blank title", mutate: func(d *MemoryData) { d.Title = "   " }, wantFields: []string{"title"}},
		{name: "title too long", mutate: func(d *MemoryData) { d.Title = strings.Repeat("é", MaxTitleLength+1) }, wantFields: []string{"title"}},
		{name: "title at limit", mutate: func(d *MemoryData) { d.Title = strings.Repeat("é", MaxTitleLength) }},
		{name: "zero date", mutate: func(d *MemoryData) { d.Date = time.Time{} }, wantFields: []string{"date"}},
		{name: "short color", mutate: func(d *MemoryData) { d.Color = "#fff" }, wantFields: []string{"color"}},
		{
			name:       "mood without emotion",
			mutate:     func(d *MemoryData) { d.Content[0].Props[block.PropEmotion] = "" },
			wantFields: []string{"emotion"},
			wantBlocks: []int{0},
		},
		{
			name:       "empty paragraph",
			mutate:     func(d *MemoryData) { d.Content[1].Content = []any{} },
			wantBlocks: []int{1},
		},
		{
			name: "mood not at head",
			mutate: func(d *MemoryData) {
				d.Content[0], d.Content[1] = d.Content[1], d.Content[0]
			},
			wantFields: []string{"content"},
		},
		{
			name: "duplicate ids",
			mutate: func(d *MemoryData) {
				d.Content = append(d.Content, block.Block{ID: "p", Type: block.TypeDivider})
			},
			wantFields: []string{"content"},
		},
		{
			name: "type used too often",
			mutate: func(d *MemoryData) {
				d.Content = append(d.Content, block.Block{ID: "p2", Type: block.TypeParagraph, Content: []any{"x"}})
			},
			wantFields: []string{"content"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			data := validData()
			tc.mutate(&data)

			err := data.Validate()
			if tc.wantFields == nil && tc.wantBlocks == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var docErr *DocumentErrors
			require.True(t, errors.As(err, &docErr))

			var fields []string
			for _, f := range docErr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Equal(t, tc.wantFields, fields)
			if tc.wantBlocks == nil {
				assert.Empty(t, docErr.Blocks)
			} else {
				assert.Equal(t, tc.wantBlocks, docErr.BlockIndexes())
			}
		})
	}
}

func TestMemory_Update(t *testing.T) {
	t.Parallel()

	m, err := NewMemory(uuid.New(), validData())
	require.NoError(t, err)
	created := m.UpdatedAt

	bad := validData()
	bad.Title = ""
	require.Error(t, m.Update(bad))
	assert.Equal(t, "Sunday at the lake", m.Title, "invalid updates are not applied")

	good := validData()
	good.Title = "Evening"
	good.Content[0].Props[block.PropEmotion] = "grateful"
	require.NoError(t, m.Update(good))
	assert.Equal(t, "Evening", m.Title)
	assert.Equal(t, "grateful", m.Emotion)
	assert.False(t, m.UpdatedAt.Before(created))
}

func TestDocumentErrors_Error(t *testing.T) {
	t.Parallel()

	data := validData()
	data.Title = ""
	data.Content[1].Content = []any{}

	err := data.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title is required")
	assert.Contains(t, err.Error(), "block 1: content must not be empty")
}
