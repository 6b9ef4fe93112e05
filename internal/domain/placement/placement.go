package placement

import (
	"errors"
	"fmt"

	"github.com/phrazzld/memoryblocks/internal/domain/block"
)

// ErrStructuralInvariant is returned when an operation would remove the
// pinned block or empty a document that must keep content.
var ErrStructuralInvariant = errors.New("structural invariant violated")

// Slot is a block tagged with whether it is pinned in place.
type Slot struct {
	Block  block.Block
	Pinned bool
}

// Slots tags every block of doc. Only a mood block at the head is pinned.
func Slots(doc block.Document) []Slot {
	slots := make([]Slot, len(doc))
	for i, b := range doc {
		slots[i] = Slot{Block: b, Pinned: i == 0 && b.Type == block.TypeMood}
	}
	return slots
}

// Layout is a document split into its pinned head and the sortable rest.
type Layout struct {
	Head     *block.Block
	Sortable []block.Block
}

// Partition splits doc into a Layout. Without a pinned head the whole
// document is sortable.
func Partition(doc block.Document) Layout {
	var l Layout
	l.Sortable = make([]block.Block, 0, len(doc))
	for _, s := range Slots(doc) {
		if s.Pinned {
			head := s.Block.Clone()
			l.Head = &head
			continue
		}
		l.Sortable = append(l.Sortable, s.Block.Clone())
	}
	return l
}

// Document reassembles the layout as head followed by the sortable blocks.
func (l Layout) Document() block.Document {
	doc := make(block.Document, 0, len(l.Sortable)+1)
	if l.Head != nil {
		doc = append(doc, l.Head.Clone())
	}
	for _, b := range l.Sortable {
		doc = append(doc, b.Clone())
	}
	return doc
}

// Reorder moves the sortable block at from to position to, both indices
// into the sortable set. Moving onto itself or from a missing index leaves
// the order unchanged; a target past the end appends.
func Reorder(doc block.Document, from, to int) block.Document {
	l := Partition(doc)
	n := len(l.Sortable)
	if from < 0 || from >= n || from == to {
		return l.Document()
	}
	if to < 0 {
		to = 0
	}
	if to >= n {
		to = n - 1
	}

	moved := l.Sortable[from]
	rest := make([]block.Block, 0, n)
	rest = append(rest, l.Sortable[:from]...)
	rest = append(rest, l.Sortable[from+1:]...)

	sorted := make([]block.Block, 0, n)
	sorted = append(sorted, rest[:to]...)
	sorted = append(sorted, moved)
	sorted = append(sorted, rest[to:]...)
	l.Sortable = sorted
	return l.Document()
}

// Insert places b at sortable index *target, or appends when target is
// nil or past the end.
func Insert(doc block.Document, b block.Block, target *int) block.Document {
	l := Partition(doc)
	at := len(l.Sortable)
	if target != nil && *target >= 0 && *target < at {
		at = *target
	}

	sorted := make([]block.Block, 0, len(l.Sortable)+1)
	sorted = append(sorted, l.Sortable[:at]...)
	sorted = append(sorted, b.Clone())
	sorted = append(sorted, l.Sortable[at:]...)
	l.Sortable = sorted
	return l.Document()
}

// Delete removes the block with the given id. It refuses to remove the
// pinned block, or the last block when requireContent is set. An unknown
// id leaves the document unchanged.
func Delete(doc block.Document, id string, requireContent bool) (block.Document, error) {
	slots := Slots(doc)
	out := make(block.Document, 0, len(doc))
	found := false
	for _, s := range slots {
		if s.Block.ID != id {
			out = append(out, s.Block.Clone())
			continue
		}
		if s.Pinned {
			return doc.Clone(), fmt.Errorf("%w: block %s is pinned", ErrStructuralInvariant, id)
		}
		found = true
	}
	if !found {
		return doc.Clone(), nil
	}
	if requireContent && len(out) == 0 {
		return doc.Clone(), fmt.Errorf("%w: document must keep at least one block", ErrStructuralInvariant)
	}
	return out, nil
}
