package editor

import (
	"github.com/phrazzld/memoryblocks/internal/domain/block"
	"github.com/phrazzld/memoryblocks/internal/domain/richtext"
)

// TextEditor edits a paragraph block through rich text commands. The block
// content holds the serialized markup as its only item, or nothing when
// the text is blank.
type TextEditor struct {
	core
	doc richtext.Document
}

// NewTextEditor wraps a paragraph block.
func NewTextEditor(b block.Block, onChange func(block.Block), opts ...Option) (*TextEditor, error) {
	e := &TextEditor{}
	if err := e.init(b, block.TypeParagraph, onChange, opts); err != nil {
		return nil, err
	}
	doc, err := richtext.Parse(markupOf(b))
	if err != nil {
		return nil, err
	}
	if len(doc.Lines) == 0 {
		doc = richtext.NewDocument()
	}
	e.doc = doc
	return e, nil
}

func markupOf(b block.Block) string {
	if len(b.Content) == 0 {
		return ""
	}
	s, _ := b.Content[0].(string)
	return s
}

// Apply runs formatting or text commands. Nothing changes when any
// command fails.
func (e *TextEditor) Apply(cmds ...richtext.Command) error {
	e.mu.Lock()
	doc, err := e.doc.Apply(cmds...)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	updated := e.store(doc)
	e.mu.Unlock()

	e.emit(updated)
	return nil
}

// SetMarkup replaces the whole text, e.g. on paste.
func (e *TextEditor) SetMarkup(markup string) error {
	doc, err := richtext.Parse(markup)
	if err != nil {
		return err
	}
	if len(doc.Lines) == 0 {
		doc = richtext.NewDocument()
	}

	e.mu.Lock()
	updated := e.store(doc)
	e.mu.Unlock()

	e.emit(updated)
	return nil
}

// store must be called with e.mu held.
func (e *TextEditor) store(doc richtext.Document) block.Block {
	e.doc = doc
	content := []any{}
	if !doc.IsBlank() {
		content = []any{doc.HTML()}
	}
	return e.set(e.block.WithContent(content))
}

// Document returns the current rich text.
func (e *TextEditor) Document() richtext.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

// Markup returns the serialized text.
func (e *TextEditor) Markup() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.HTML()
}

// CharCount returns the number of characters of text.
func (e *TextEditor) CharCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.CharCount()
}
