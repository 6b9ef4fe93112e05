package editor

import (
	"fmt"
	"slices"
	"strings"

	"github.com/phrazzld/memoryblocks/internal/domain"
	"github.com/phrazzld/memoryblocks/internal/domain/block"
)

// DividerEditor edits the look of a divider block.
type DividerEditor struct {
	core
}

// NewDividerEditor wraps a divider block.
func NewDividerEditor(b block.Block, onChange func(block.Block), opts ...Option) (*DividerEditor, error) {
	e := &DividerEditor{}
	if err := e.init(b, block.TypeDivider, onChange, opts); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *DividerEditor) setProp(key, value string) {
	e.mu.Lock()
	updated := e.set(e.block.WithProp(key, value))
	e.mu.Unlock()

	e.emit(updated)
}

// SetStyle selects one of block.DividerStyles.
func (e *DividerEditor) SetStyle(style string) error {
	if !slices.Contains(block.DividerStyles, style) {
		return fmt.Errorf("%w: divider style %q", ErrInvalidValue, style)
	}
	e.setProp(block.PropStyle, style)
	return nil
}

// SetColor sets the divider color, a #RRGGBB value.
func (e *DividerEditor) SetColor(color string) error {
	if !domain.ValidHexColor(color) {
		return fmt.Errorf("%w: color %q", ErrInvalidValue, color)
	}
	e.setProp(block.PropColor, strings.ToLower(color))
	return nil
}
