package block

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checklistWith(t *testing.T, items ...ChecklistItem) Block {
	t.Helper()
	b, err := WithChecklistItems(mustNew(t, TypeChecklist), items)
	require.NoError(t, err)
	return b
}

func TestToggleChecklistItem(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	b := checklistWith(t,
		ChecklistItem{Text: "buy flowers"},
		ChecklistItem{Text: "call mom"},
	)

	toggled, err := ToggleChecklistItem(b, 1, now)
	require.NoError(t, err)

	items, err := ChecklistItems(toggled)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.False(t, items[0].Checked)
	assert.True(t, items[1].Checked)
	require.NotNil(t, items[1].CompletedAt)
	assert.True(t, now.Equal(*items[1].CompletedAt))

	original, err := ChecklistItems(b)
	require.NoError(t, err)
	assert.False(t, original[1].Checked, "input block must not be mutated")
}

func TestToggleChecklistItem_TwiceRestoresUncheckedItem(t *testing.T) {
	t.Parallel()

	b := checklistWith(t, ChecklistItem{Text: "water plants"})

	once, err := ToggleChecklistItem(b, 0, time.Now())
	require.NoError(t, err)
	twice, err := ToggleChecklistItem(once, 0, time.Now())
	require.NoError(t, err)

	before, err := ChecklistItems(b)
	require.NoError(t, err)
	after, err := ChecklistItems(twice)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Nil(t, after[0].CompletedAt)
}

func TestToggleChecklistItem_TwiceRestampsCheckedItem(t *testing.T) {
	t.Parallel()

	checkedAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	b := checklistWith(t, ChecklistItem{Text: "call mum", Checked: true, CompletedAt: &checkedAt})

	unchecked, err := ToggleChecklistItem(b, 0, checkedAt.Add(time.Hour))
	require.NoError(t, err)
	again := checkedAt.Add(2 * time.Hour)
	rechecked, err := ToggleChecklistItem(unchecked, 0, again)
	require.NoError(t, err)

	items, err := ChecklistItems(rechecked)
	require.NoError(t, err)
	assert.True(t, items[0].Checked)
	require.NotNil(t, items[0].CompletedAt)
	assert.True(t, items[0].CompletedAt.Equal(again), "completion time records the latest check")
}

func TestToggleChecklistItem_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		block Block
		index int
	}{
		{name: "not a checklist", block: mustNew(t, TypeDivider), index: 0},
		{name: "negative index", block: checklistWith(t, ChecklistItem{Text: "a"}), index: -1},
		{name: "index past end", block: checklistWith(t, ChecklistItem{Text: "a"}), index: 1},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ToggleChecklistItem(tc.block, tc.index, time.Now())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidContent))
		})
	}
}

func TestCompletionPercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		items []ChecklistItem
		want  int
	}{
		{name: "empty", items: nil, want: 0},
		{name: "none checked", items: []ChecklistItem{{}, {}}, want: 0},
		{name: "one of three rounds down", items: []ChecklistItem{{Checked: true}, {}, {}}, want: 33},
		{name: "two of three rounds down", items: []ChecklistItem{{Checked: true}, {Checked: true}, {}}, want: 66},
		{name: "all checked", items: []ChecklistItem{{Checked: true}, {Checked: true}}, want: 100},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, CompletionPercent(tc.items))
		})
	}
}
