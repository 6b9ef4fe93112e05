package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/memoryblocks/internal/domain/block"
	"github.com/phrazzld/memoryblocks/internal/domain/richtext"
)

func TestTextEditor_FormattingCommands(t *testing.T) {
	t.Parallel()

	var got []block.Block
	e, err := NewTextEditor(mustBlock(t, block.TypeParagraph), func(b block.Block) { got = append(got, b) })
	require.NoError(t, err)

	require.NoError(t, e.Apply(richtext.InsertText{Line: 0, Offset: 0, Text: "Dear diary"}))
	require.NoError(t, e.Apply(
		richtext.SetHeading{Line: 0, Level: 1},
		richtext.ApplyMark{Range: richtext.Range{Line: 0, Start: 5, End: 10}, Mark: richtext.Mark{Kind: richtext.MarkItalic}},
	))

	require.Len(t, got, 2)
	assert.Equal(t, []any{"<h1>Dear <em>diary</em></h1>"}, got[1].Content)
	assert.Equal(t, 10, e.CharCount())
	assert.True(t, block.Validate(got[1]).Valid)
}

func TestTextEditor_BlankTextClearsContent(t *testing.T) {
	t.Parallel()

	var last block.Block
	b := mustBlock(t, block.TypeParagraph).WithContent([]any{"<p>hello</p>"})
	e, err := NewTextEditor(b, func(b block.Block) { last = b })
	require.NoError(t, err)
	assert.Equal(t, 5, e.CharCount())

	require.NoError(t, e.Apply(richtext.ReplaceText{Range: richtext.Range{Line: 0, Start: 0, End: 5}, Text: ""}))

	assert.Empty(t, last.Content)
	assert.False(t, block.Validate(last).Valid)
}

func TestTextEditor_FailedCommandChangesNothing(t *testing.T) {
	t.Parallel()

	calls := 0
	e, err := NewTextEditor(mustBlock(t, block.TypeParagraph), func(block.Block) { calls++ })
	require.NoError(t, err)

	err = e.Apply(
		richtext.InsertText{Line: 0, Offset: 0, Text: "x"},
		richtext.SetHeading{Line: 0, Level: 9},
	)
	require.ErrorIs(t, err, richtext.ErrInvalidCommand)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, e.CharCount())
}

func TestTextEditor_SetMarkupSanitizes(t *testing.T) {
	t.Parallel()

	e, err := NewTextEditor(mustBlock(t, block.TypeParagraph), nil)
	require.NoError(t, err)

	require.NoError(t, e.SetMarkup(`<p>safe<script>alert(1)</script></p>`))
	assert.Equal(t, "<p>safe</p>", e.Markup())
	assert.Equal(t, []any{"<p>safe</p>"}, e.Block().Content)
}

func TestTextEditor_WrongType(t *testing.T) {
	t.Parallel()

	_, err := NewTextEditor(mustBlock(t, block.TypeDivider), nil)
	assert.ErrorIs(t, err, ErrWrongBlockType)
}

func mustBlock(t *testing.T, typ block.Type) block.Block {
	t.Helper()
	b, err := block.New(typ)
	require.NoError(t, err)
	return b
}

func TestTextEditor_SavedTextReloadsUnchanged(t *testing.T) {
	t.Parallel()

	var saved block.Block
	e, err := NewTextEditor(mustBlock(t, block.TypeParagraph), func(b block.Block) { saved = b })
	require.NoError(t, err)

	require.NoError(t, e.Apply(richtext.InsertText{Line: 0, Offset: 0, Text: "  a  b"}))
	require.NoError(t, e.Apply(richtext.ApplyMark{
		Range: richtext.Range{Line: 0, Start: 4, End: 6},
		Mark:  richtext.Mark{Kind: richtext.MarkBold},
	}))
	require.Len(t, saved.Content, 1)

	reloaded, err := NewTextEditor(saved, nil)
	require.NoError(t, err)

	assert.Equal(t, e.Document(), reloaded.Document())
	assert.Equal(t, 6, e.CharCount())
	assert.Equal(t, e.CharCount(), reloaded.CharCount())
	assert.Equal(t, e.CharCount(), richtext.CharCount(saved.Content[0].(string)))
}
