package block

import (
	"bytes"
	"encoding/json"
)

// Block is a single typed unit of content.
type Block struct {
	ID      string         `json:"id"`
	Type    Type           `json:"type"`
	Props   map[string]any `json:"props"`
	Content []any          `json:"content"`
}

// wireBlock has Block's layout without its methods.
type wireBlock Block

// MarshalJSON always emits props as an object and content as an array.
func (b Block) MarshalJSON() ([]byte, error) {
	w := wireBlock(b)
	if w.Props == nil {
		w.Props = map[string]any{}
	}
	if w.Content == nil {
		w.Content = []any{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes numbers as json.Number so that values survive a
// decode/encode cycle unchanged.
func (b *Block) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var w wireBlock
	if err := dec.Decode(&w); err != nil {
		return err
	}
	*b = Block(w)
	b.normalize()
	return nil
}

func (b *Block) normalize() {
	if b.Props == nil {
		b.Props = map[string]any{}
	}
	if b.Content == nil {
		b.Content = []any{}
	}
}

// Clone returns a deep copy of the block.
func (b Block) Clone() Block {
	out := Block{
		ID:      b.ID,
		Type:    b.Type,
		Props:   cloneMap(b.Props),
		Content: cloneSlice(b.Content),
	}
	out.normalize()
	return out
}

// Prop returns the raw value stored under key.
func (b Block) Prop(key string) (any, bool) {
	v, ok := b.Props[key]
	return v, ok
}

// StringProp returns the string stored under key, or "" when absent or not a string.
func (b Block) StringProp(key string) string {
	s, _ := b.Props[key].(string)
	return s
}

// WithProp returns a copy of the block with key set to value.
func (b Block) WithProp(key string, value any) Block {
	out := b.Clone()
	out.Props[key] = value
	return out
}

// WithContent returns a copy of the block with its content replaced.
func (b Block) WithContent(content []any) Block {
	out := b.Clone()
	out.Content = cloneSlice(content)
	out.normalize()
	return out
}

// Document is the ordered sequence of blocks forming one memory's content.
type Document []Block

// MarshalJSON encodes a nil document as an empty array.
func (d Document) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Block(d))
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for i, b := range d {
		out[i] = b.Clone()
	}
	return out
}

// Count returns how many blocks of type t the document holds.
func (d Document) Count(t Type) int {
	n := 0
	for _, b := range d {
		if b.Type == t {
			n++
		}
	}
	return n
}

// IndexOf returns the position of the block with the given id, or -1.
func (d Document) IndexOf(id string) int {
	for i, b := range d {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// Find returns the block with the given id.
func (d Document) Find(id string) (Block, bool) {
	if i := d.IndexOf(id); i >= 0 {
		return d[i], true
	}
	return Block{}, false
}

// FirstOfType returns the first block of type t.
func (d Document) FirstOfType(t Type) (Block, bool) {
	for _, b := range d {
		if b.Type == t {
			return b, true
		}
	}
	return Block{}, false
}

// Replace returns a new document where the block sharing updated's id is
// swapped for updated. The second result is false when no block matched.
func (d Document) Replace(updated Block) (Document, bool) {
	i := d.IndexOf(updated.ID)
	if i < 0 {
		return d, false
	}
	out := make(Document, len(d))
	copy(out, d)
	out[i] = updated.Clone()
	return out, true
}

// Emotion returns the emotion of the document's mood block, which is the
// canonical emotion classification of the memory.
func (d Document) Emotion() string {
	mood, ok := d.FirstOfType(TypeMood)
	if !ok {
		return ""
	}
	return mood.StringProp(PropEmotion)
}

// DuplicateIDs returns ids that occur more than once, in first-seen order.
func (d Document) DuplicateIDs() []string {
	seen := make(map[string]int, len(d))
	var dups []string
	for _, b := range d {
		seen[b.ID]++
		if seen[b.ID] == 2 {
			dups = append(dups, b.ID)
		}
	}
	return dups
}
