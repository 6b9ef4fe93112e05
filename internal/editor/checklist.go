package editor

import (
	"fmt"
	"strings"

	"github.com/phrazzld/memoryblocks/internal/domain/block"
)

// ChecklistEditor edits the items of a checklist block.
type ChecklistEditor struct {
	core
}

// NewChecklistEditor wraps a checklist block.
func NewChecklistEditor(b block.Block, onChange func(block.Block), opts ...Option) (*ChecklistEditor, error) {
	e := &ChecklistEditor{}
	if err := e.init(b, block.TypeChecklist, onChange, opts); err != nil {
		return nil, err
	}
	if _, err := block.ChecklistItems(b); err != nil {
		return nil, err
	}
	return e, nil
}

// Items returns the current items.
func (e *ChecklistEditor) Items() []block.ChecklistItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	items, _ := block.ChecklistItems(e.block)
	return items
}

func (e *ChecklistEditor) mutate(fn func(items []block.ChecklistItem) ([]block.ChecklistItem, error)) error {
	e.mu.Lock()
	items, err := block.ChecklistItems(e.block)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	items, err = fn(items)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	b, err := block.WithChecklistItems(e.block, items)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	updated := e.set(b)
	e.mu.Unlock()

	e.emit(updated)
	return nil
}

func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: item %d of %d", ErrIndexOutOfRange, i, n)
	}
	return nil
}

func itemText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: item text is empty", ErrInvalidValue)
	}
	return text, nil
}

// AddItem appends an unchecked item.
func (e *ChecklistEditor) AddItem(text string) error {
	text, err := itemText(text)
	if err != nil {
		return err
	}
	return e.mutate(func(items []block.ChecklistItem) ([]block.ChecklistItem, error) {
		return append(items, block.ChecklistItem{Text: text}), nil
	})
}

// EditItem changes the text of item i.
func (e *ChecklistEditor) EditItem(i int, text string) error {
	text, err := itemText(text)
	if err != nil {
		return err
	}
	return e.mutate(func(items []block.ChecklistItem) ([]block.ChecklistItem, error) {
		if err := checkIndex(i, len(items)); err != nil {
			return nil, err
		}
		items[i].Text = text
		return items, nil
	})
}

// RemoveItem deletes item i.
func (e *ChecklistEditor) RemoveItem(i int) error {
	return e.mutate(func(items []block.ChecklistItem) ([]block.ChecklistItem, error) {
		if err := checkIndex(i, len(items)); err != nil {
			return nil, err
		}
		return append(items[:i], items[i+1:]...), nil
	})
}

// MoveItem moves item from to position to.
func (e *ChecklistEditor) MoveItem(from, to int) error {
	return e.mutate(func(items []block.ChecklistItem) ([]block.ChecklistItem, error) {
		if err := checkIndex(from, len(items)); err != nil {
			return nil, err
		}
		if err := checkIndex(to, len(items)); err != nil {
			return nil, err
		}
		moved := items[from]
		items = append(items[:from], items[from+1:]...)
		items = append(items[:to], append([]block.ChecklistItem{moved}, items[to:]...)...)
		return items, nil
	})
}

// Toggle flips item i, stamping or clearing its completion time.
func (e *ChecklistEditor) Toggle(i int) error {
	return e.mutate(func(items []block.ChecklistItem) ([]block.ChecklistItem, error) {
		if err := checkIndex(i, len(items)); err != nil {
			return nil, err
		}
		items[i] = items[i].Toggle(e.opts.now())
		return items, nil
	})
}
