package viewer

import (
	"time"

	"github.com/phrazzld/memoryblocks/internal/domain/block"
)

// UpdateFunc receives a whole block changed through the viewer.
type UpdateFunc func(updated block.Block)

// ToggleChecklistItem flips item index of checklist b at now and passes the
// updated block to onUpdate, when set. The input block is left untouched.
func ToggleChecklistItem(b block.Block, index int, now time.Time, onUpdate UpdateFunc) (block.Block, error) {
	updated, err := block.ToggleChecklistItem(b, index, now)
	if err != nil {
		return block.Block{}, err
	}
	if onUpdate != nil {
		onUpdate(updated)
	}
	return updated, nil
}
