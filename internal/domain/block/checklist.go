package block

import (
	"fmt"
	"time"
)

// ChecklistItem is one entry of a checklist block's content.
type ChecklistItem struct {
	Text        string     `json:"text"`
	Checked     bool       `json:"checked"`
	CompletedAt *time.Time `json:"completedAt"`
}

// Toggle flips the item and stamps or clears its completion time. Checking
// an item again records the new time; the earlier stamp is not kept.
func (i ChecklistItem) Toggle(now time.Time) ChecklistItem {
	i.Checked = !i.Checked
	if i.Checked {
		t := now.UTC()
		i.CompletedAt = &t
	} else {
		i.CompletedAt = nil
	}
	return i
}

// ChecklistItems reads the checklist items stored in b's content.
func ChecklistItems(b Block) ([]ChecklistItem, error) {
	items := make([]ChecklistItem, 0, len(b.Content))
	for i, raw := range b.Content {
		var item ChecklistItem
		if err := fromGeneric(raw, &item); err != nil {
			return nil, fmt.Errorf("%w: checklist item %d: %v", ErrInvalidContent, i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// WithChecklistItems returns a copy of b whose content holds items.
func WithChecklistItems(b Block, items []ChecklistItem) (Block, error) {
	content := make([]any, 0, len(items))
	for _, item := range items {
		v, err := toGeneric(item)
		if err != nil {
			return Block{}, fmt.Errorf("%w: %v", ErrInvalidContent, err)
		}
		content = append(content, v)
	}
	return b.WithContent(content), nil
}

// ToggleChecklistItem returns a copy of b with item index toggled at now.
func ToggleChecklistItem(b Block, index int, now time.Time) (Block, error) {
	if b.Type != TypeChecklist {
		return Block{}, fmt.Errorf("%w: block %s is a %s block", ErrInvalidContent, b.ID, b.Type)
	}
	items, err := ChecklistItems(b)
	if err != nil {
		return Block{}, err
	}
	if index < 0 || index >= len(items) {
		return Block{}, fmt.Errorf("%w: checklist item %d out of range", ErrInvalidContent, index)
	}
	items[index] = items[index].Toggle(now)
	return WithChecklistItems(b, items)
}

// CompletionPercent returns the share of checked items, rounded down, in
// the range 0..100. An empty list is 0% complete.
func CompletionPercent(items []ChecklistItem) int {
	if len(items) == 0 {
		return 0
	}
	done := 0
	for _, item := range items {
		if item.Checked {
			done++
		}
	}
	return done * 100 / len(items)
}
