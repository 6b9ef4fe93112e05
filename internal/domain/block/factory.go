package block

import (
	"github.com/oklog/ulid/v2"
)

// NewID returns a fresh block identifier. ULIDs are unique, URL-safe and
// sort by creation time.
func NewID() string {
	return ulid.Make().String()
}

// New manufactures a block of type t with a fresh id, the type's default
// props and empty content. It fails with *UnknownTypeError when t is not
// registered.
func New(t Type) (Block, error) {
	def, ok := registry[t]
	if !ok {
		return Block{}, &UnknownTypeError{Type: t}
	}
	return Block{
		ID:      NewID(),
		Type:    t,
		Props:   def.DefaultProps(),
		Content: []any{},
	}, nil
}

// CanAdd reports whether one more block of type t fits under the type's
// MaxUses given the existing blocks. Unknown types can never be added.
func CanAdd(t Type, existing Document) bool {
	def, ok := registry[t]
	if !ok {
		return false
	}
	return existing.Count(t) < def.MaxUses
}

// CategoryGroup is one category of the insertion selector.
type CategoryGroup struct {
	Category    Category     `json:"category"`
	Definitions []Definition `json:"types"`
}

// Available returns the types that can still be added to existing, grouped
// by category. Categories without an addable type are omitted.
func Available(existing Document) []CategoryGroup {
	var groups []CategoryGroup
	for _, c := range categories {
		var defs []Definition
		for _, t := range order {
			def := registry[t]
			if def.Category != c || !CanAdd(t, existing) {
				continue
			}
			defs = append(defs, def)
		}
		if len(defs) > 0 {
			groups = append(groups, CategoryGroup{Category: c, Definitions: defs})
		}
	}
	return groups
}

// AvailableTypes flattens Available into a list of types.
func AvailableTypes(existing Document) []Type {
	var types []Type
	for _, g := range Available(existing) {
		for _, def := range g.Definitions {
			types = append(types, def.Type)
		}
	}
	return types
}
