package viewer

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/memoryblocks/internal/domain/block"
	"github.com/phrazzld/memoryblocks/internal/platform/logger"
	"github.com/phrazzld/memoryblocks/internal/platform/metrics"
)

func render(t *testing.T, r *Renderer, b block.Block, isFirst bool, accent string, onUpdate UpdateFunc) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, r.Render(b, 0, isFirst, accent, onUpdate).Render(context.Background(), &sb))
	return sb.String()
}

func newBlock(t *testing.T, typ block.Type) block.Block {
	t.Helper()
	b, err := block.New(typ)
	require.NoError(t, err)
	return b
}

func checklist(t *testing.T, items ...block.ChecklistItem) block.Block {
	t.Helper()
	b, err := block.WithChecklistItems(newBlock(t, block.TypeChecklist), items)
	require.NoError(t, err)
	return b
}

func withImages(t *testing.T, images ...block.Image) block.Block {
	t.Helper()
	b, err := block.WithImages(newBlock(t, block.TypeImage), images)
	require.NoError(t, err)
	return b
}

func noopUpdate(block.Block) {}

func TestRender_UnknownType(t *testing.T) {
	t.Parallel()

	log, logs := logger.GetTestLogger(t)
	r := NewRenderer(WithLogger(log))

	out := render(t, r, block.Block{ID: "x1", Type: "poll"}, false, "", nil)

	assert.Contains(t, out, "memory-block--unknown")
	assert.Contains(t, out, "Unknown content type: poll")
	assert.Contains(t, logs.String(), "rendering unknown block type")
}

func TestRender_Paragraph(t *testing.T) {
	t.Parallel()
	r := NewRenderer()

	b := newBlock(t, block.TypeParagraph).WithContent([]any{
		`<h2>Trip</h2><script>alert(1)</script><ul><li><span style="color: #ff0000">red</span></li></ul><p><u>under</u></p>`,
	})
	out := render(t, r, b, false, "", nil)

	assert.Contains(t, out, "<h2>Trip</h2>")
	assert.Contains(t, out, `<ul><li><span style="color:#ff0000">red</span></li></ul>`)
	assert.Contains(t, out, "<u>under</u>")
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "alert")
}

func TestRender_BlankParagraphRendersNothing(t *testing.T) {
	t.Parallel()
	r := NewRenderer()

	assert.Empty(t, render(t, r, newBlock(t, block.TypeParagraph), false, "", nil))
	assert.Empty(t, render(t, r, newBlock(t, block.TypeParagraph).WithContent([]any{"<p>  </p>"}), false, "", nil))
}

func TestRender_Checklist(t *testing.T) {
	t.Parallel()

	done := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	b := checklist(t,
		block.ChecklistItem{Text: "pack <bags>", Checked: true, CompletedAt: &done},
		block.ChecklistItem{Text: "book train"},
		block.ChecklistItem{Text: "water plants"},
	)

	t.Run("read only", func(t *testing.T) {
		t.Parallel()
		out := render(t, NewRenderer(), b, false, "", nil)

		assert.Contains(t, out, "1 of 3 complete (33%)")
		assert.Contains(t, out, `aria-valuenow="33"`)
		assert.Contains(t, out, "pack &lt;bags&gt;")
		assert.Contains(t, out, `datetime="2024-05-01T09:30:00Z"`)
		assert.Contains(t, out, "checklist-item--checked")
		assert.NotContains(t, out, "checklist-toggle")
	})

	t.Run("interactive without action", func(t *testing.T) {
		t.Parallel()
		out := render(t, NewRenderer(), b, false, "", noopUpdate)

		assert.Equal(t, 3, strings.Count(out, `class="checklist-toggle"`))
		assert.Contains(t, out, `data-block-id="`+b.ID+`"`)
		assert.Contains(t, out, `aria-pressed="true"`)
		assert.NotContains(t, out, "<form")
	})

	t.Run("interactive with action", func(t *testing.T) {
		t.Parallel()
		r := NewRenderer(WithToggleAction(func(blockID string, item int) string {
			return "/toggle/" + blockID + "/" + string(rune('0'+item))
		}))
		out := render(t, r, b, false, "", noopUpdate)

		assert.Contains(t, out, `action="/toggle/`+b.ID+`/2"`)
		assert.Equal(t, 3, strings.Count(out, "<form"))
	})
}

func TestRender_Images(t *testing.T) {
	t.Parallel()
	r := NewRenderer()

	img := func(id, url string) block.Image {
		return block.Image{ID: id, URL: url, Alt: "alt " + id, Caption: "caption " + id}
	}

	t.Run("grid columns follow count", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			count int
			want  string
		}{
			{1, "image-grid--cols-1"},
			{2, "image-grid--cols-2"},
			{3, "image-grid--cols-3"},
			{5, "image-grid--cols-3"},
		}
		for _, tc := range tests {
			images := make([]block.Image, tc.count)
			for i := range images {
				images[i] = img(string(rune('a'+i)), "https://example.com/p.png")
			}
			out := render(t, r, withImages(t, images...), false, "", nil)
			assert.Contains(t, out, tc.want, "count %d", tc.count)
		}
	})

	t.Run("lightbox wraps around", func(t *testing.T) {
		t.Parallel()
		out := render(t, r, withImages(t,
			img("a", "/a.png"), img("b", "/b.png"), img("c", "/c.png")), false, "", nil)

		assert.Contains(t, out, `data-lightbox-count="3"`)
		assert.Contains(t, out, `data-index="0" data-prev="2" data-next="1"`)
		assert.Contains(t, out, `data-index="2" data-prev="1" data-next="0"`)
		assert.Contains(t, out, "lightbox-next")
	})

	t.Run("linked lightbox opens at the requested image", func(t *testing.T) {
		t.Parallel()
		b := withImages(t, img("a", "/a.png"), img("b", "/b.png"), img("c", "/c.png"))
		link := func(blockID string, image int) string {
			if image < 0 {
				return "/view"
			}
			return fmt.Sprintf("/view?block=%s&image=%d", blockID, image)
		}
		linked := NewRenderer(WithImageLinks(link), WithOpenImage(b.ID, 2))

		out := render(t, linked, b, false, "", nil)

		assert.Contains(t, out, `<dialog class="lightbox" open data-lightbox-count="3" data-lightbox-current="2">`)
		assert.Contains(t, out, `data-index="2" data-prev="1" data-next="0">`, "current slide is visible")
		assert.Contains(t, out, `data-index="0" data-prev="2" data-next="1" hidden>`)
		assert.Contains(t, out, `<a class="lightbox-next" href="/view?block=`+b.ID+`&amp;image=0"`)
		assert.Contains(t, out, `<a class="lightbox-prev" href="/view?block=`+b.ID+`&amp;image=1"`)
		assert.Contains(t, out, `<a class="lightbox-close" href="/view"`)
		assert.Contains(t, out, `<a class="image-open" href="/view?block=`+b.ID+`&amp;image=1"`)
		assert.NotContains(t, out, "data-lightbox-step")
	})

	t.Run("linked lightbox of another block stays closed", func(t *testing.T) {
		t.Parallel()
		b := withImages(t, img("a", "/a.png"), img("b", "/b.png"))
		linked := NewRenderer(
			WithImageLinks(func(string, int) string { return "/view" }),
			WithOpenImage("other-block", 1),
		)

		out := render(t, linked, b, false, "", nil)

		assert.Contains(t, out, `<dialog class="lightbox" data-lightbox-count="2" data-lightbox-current="0">`)
	})

	t.Run("open index wraps around", func(t *testing.T) {
		t.Parallel()
		b := withImages(t, img("a", "/a.png"), img("b", "/b.png"), img("c", "/c.png"))
		linked := NewRenderer(
			WithImageLinks(func(string, int) string { return "/view" }),
			WithOpenImage(b.ID, 4),
		)

		out := render(t, linked, b, false, "", nil)

		assert.Contains(t, out, `data-lightbox-current="1"`)
	})

	t.Run("failed and unsafe images degrade to an indicator", func(t *testing.T) {
		t.Parallel()
		out := render(t, r, withImages(t,
			img("a", "javascript:alert(1)"), img("b", "data:image/png;base64,AAAA")), false, "", nil)

		assert.NotContains(t, out, "javascript:")
		assert.Contains(t, out, `onerror="`)
		assert.Contains(t, out, `<span class="image-error" role="img" aria-label="Image failed to load">`)
		assert.Contains(t, out, `src="data:image/png;base64,AAAA"`)
	})

	t.Run("empty image block renders nothing", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, render(t, r, newBlock(t, block.TypeImage), false, "", nil))
	})
}

func TestRender_Mood(t *testing.T) {
	t.Parallel()
	r := NewRenderer()

	b := newBlock(t, block.TypeMood).
		WithProp(block.PropEmotion, "grateful").
		WithProp(block.PropIntensity, 7).
		WithProp(block.PropNote, "a <quiet> day")
	out := render(t, r, b, true, "", nil)

	assert.Contains(t, out, ">Grateful<")
	assert.Contains(t, out, "7/10")
	assert.Contains(t, out, "a &lt;quiet&gt; day")
	assert.Contains(t, out, "memory-block--first")

	assert.Empty(t, render(t, r, newBlock(t, block.TypeMood), true, "", nil), "mood without an emotion")
}

func TestRender_Divider(t *testing.T) {
	t.Parallel()
	r := NewRenderer()

	out := render(t, r, newBlock(t, block.TypeDivider).
		WithProp(block.PropStyle, "zigzag").
		WithProp(block.PropColor, "red"), false, "", nil)
	assert.Contains(t, out, "divider--line")
	assert.Contains(t, out, "border-color:"+block.DefaultDividerColor)

	out = render(t, r, newBlock(t, block.TypeDivider).
		WithProp(block.PropStyle, block.DividerStars).
		WithProp(block.PropColor, "#ABCDEF"), false, "", nil)
	assert.Contains(t, out, "divider--stars")
	assert.Contains(t, out, "color:#abcdef")
}

func TestRender_Accent(t *testing.T) {
	t.Parallel()
	r := NewRenderer()
	b := newBlock(t, block.TypeDivider)

	assert.Contains(t, render(t, r, b, false, "#FF8800", nil), "--accent-color:#ff8800")
	assert.Contains(t, render(t, r, b, false, "url(evil)", nil), "--accent-color:"+DefaultAccent)
}

func TestRenderDocument(t *testing.T) {
	t.Parallel()
	r := NewRenderer()

	mood := newBlock(t, block.TypeMood).WithProp(block.PropEmotion, "calm")
	para := newBlock(t, block.TypeParagraph).WithContent([]any{"<p>hello</p>"})
	divider := newBlock(t, block.TypeDivider)

	var sb strings.Builder
	require.NoError(t, r.RenderDocument(block.Document{mood, para, divider}, "", nil).Render(context.Background(), &sb))
	out := sb.String()

	assert.True(t, strings.HasPrefix(out, `<article class="memory-content"`))
	iMood := strings.Index(out, `data-block-id="`+mood.ID+`"`)
	iPara := strings.Index(out, `data-block-id="`+para.ID+`"`)
	iDiv := strings.Index(out, `data-block-id="`+divider.ID+`"`)
	assert.True(t, iMood >= 0 && iMood < iPara && iPara < iDiv, "blocks render in document order")
	assert.Equal(t, 1, strings.Count(out, "memory-block--first"))
	assert.Contains(t, out, `data-block-index="2"`)

	sb.Reset()
	require.NoError(t, r.RenderDocument(nil, "", nil).Render(context.Background(), &sb))
	assert.Contains(t, sb.String(), "No content yet")
}

func TestRender_CountsRenderedBlocks(t *testing.T) {
	m := metrics.NewMetrics()
	r := NewRenderer(WithMetrics(m))
	counter := m.BlocksRenderedTotal.WithLabelValues(string(block.TypeDivider))

	before := testutil.ToFloat64(counter)
	render(t, r, newBlock(t, block.TypeDivider), false, "", nil)
	render(t, r, newBlock(t, block.TypeParagraph), false, "", nil)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestToggleChecklistItem(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	original := checklist(t, block.ChecklistItem{Text: "one"}, block.ChecklistItem{Text: "two"})

	var got []block.Block
	updated, err := ToggleChecklistItem(original, 1, now, func(b block.Block) { got = append(got, b) })
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, updated, got[0], "owner receives the whole updated block")
	assert.Equal(t, original.ID, updated.ID)

	items, err := block.ChecklistItems(updated)
	require.NoError(t, err)
	assert.False(t, items[0].Checked)
	assert.True(t, items[1].Checked)
	require.NotNil(t, items[1].CompletedAt)
	assert.Equal(t, now, *items[1].CompletedAt)

	before, err := block.ChecklistItems(original)
	require.NoError(t, err)
	assert.False(t, before[1].Checked, "input block is not mutated")

	_, err = ToggleChecklistItem(original, 5, now, func(block.Block) { t.Fatal("must not be called") })
	assert.ErrorIs(t, err, block.ErrInvalidContent)
}

func TestPage(t *testing.T) {
	t.Parallel()

	body := NewRenderer().RenderDocument(block.Document{newBlock(t, block.TypeDivider)}, "#ABCDEF", nil)

	var sb strings.Builder
	require.NoError(t, Page("Tom & Jerry <3", "#ABCDEF", body).Render(context.Background(), &sb))
	out := sb.String()

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Tom &amp; Jerry &lt;3</title>")
	assert.Contains(t, out, "--accent-color:#abcdef")
	assert.Contains(t, out, "memory-block--divider")
	assert.True(t, strings.HasSuffix(out, "</main></body></html>"))
}
