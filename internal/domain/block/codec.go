package block

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// DecodeDocument parses a serialized block array.
func DecodeDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(bytes.TrimSpace(data), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// EncodeDocument serializes doc as a JSON block array.
func EncodeDocument(doc Document) ([]byte, error) {
	return json.Marshal(doc)
}

var cborDecMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		// ALLOW-PANIC: static options
		panic(err)
	}
	return dm
}()

// cborBlock mirrors the wire form with explicit CBOR keys.
type cborBlock struct {
	ID      string         `cbor:"id"`
	Type    string         `cbor:"type"`
	Props   map[string]any `cbor:"props"`
	Content []any          `cbor:"content"`
}

// MarshalCBOR encodes doc in CBOR, a compact binary form of the same
// {id, type, props, content} structure.
func MarshalCBOR(doc Document) ([]byte, error) {
	out := make([]cborBlock, 0, len(doc))
	for _, b := range doc {
		b = b.Clone()
		out = append(out, cborBlock{
			ID:      b.ID,
			Type:    string(b.Type),
			Props:   cborValue(b.Props).(map[string]any),
			Content: cborValue(b.Content).([]any),
		})
	}
	return cbor.Marshal(out)
}

// UnmarshalCBOR decodes a document produced by MarshalCBOR.
func UnmarshalCBOR(data []byte) (Document, error) {
	var in []cborBlock
	if err := cborDecMode.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	doc := make(Document, 0, len(in))
	for _, cb := range in {
		b := Block{ID: cb.ID, Type: Type(cb.Type), Props: cb.Props, Content: cb.Content}
		b.normalize()
		doc = append(doc, b)
	}
	return doc, nil
}

// cborValue replaces json.Number with native numbers; CBOR would otherwise
// encode them as text.
func cborValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, inner := range t {
			t[k] = cborValue(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = cborValue(inner)
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}
