package editor

import (
	"fmt"

	"github.com/phrazzld/memoryblocks/internal/domain/block"
)

// Selector offers the block types that can still be added to a session.
type Selector struct {
	session *Session
}

// NewSelector returns a selector inserting into s.
func NewSelector(s *Session) *Selector {
	return &Selector{session: s}
}

// Enabled reports whether anything can be inserted at all.
func (sel *Selector) Enabled() bool {
	s := sel.session
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.readOnly && !s.state.Terminal() && len(s.doc) < s.maxBlocks
}

// Groups returns the addable types grouped by category, or nil when the
// selector is disabled.
func (sel *Selector) Groups() []block.CategoryGroup {
	if !sel.Enabled() {
		return nil
	}
	return block.Available(sel.session.Document())
}

// Offered reports whether t is currently offered.
func (sel *Selector) Offered(t block.Type) bool {
	s := sel.session
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canAdd(t)
}

// Select inserts a new block of type t at sortable index target, or
// appends it when target is nil.
func (sel *Selector) Select(t block.Type, target *int) (block.Block, error) {
	if !sel.Offered(t) {
		return block.Block{}, fmt.Errorf("%w: %s", ErrTypeUnavailable, t)
	}
	return sel.session.Insert(t, target)
}
