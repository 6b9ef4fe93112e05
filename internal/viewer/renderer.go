package viewer

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/phrazzld/memoryblocks/internal/domain"
	"github.com/phrazzld/memoryblocks/internal/domain/block"
	"github.com/phrazzld/memoryblocks/internal/platform/logger"
	"github.com/phrazzld/memoryblocks/internal/platform/metrics"
)

// DefaultAccent is used when no valid accent color is given.
const DefaultAccent = "#6366f1"

// UnknownTypeNotice is shown in place of blocks of unregistered types.
const UnknownTypeNotice = "Unknown content type"

// ToggleActionFunc builds the form action that toggles one checklist item.
type ToggleActionFunc func(blockID string, item int) string

// ImageLinkFunc builds the URL that shows image of a block in the
// lightbox. A negative image closes the lightbox.
type ImageLinkFunc func(blockID string, image int) string

// Renderer turns blocks into read-only templ components.
type Renderer struct {
	logger       *slog.Logger
	metrics      *metrics.Metrics
	toggleAction ToggleActionFunc
	imageLink    ImageLinkFunc
	openBlock    string
	openImage    int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the renderer's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics counts rendered blocks by type.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Renderer) { r.metrics = m }
}

// WithToggleAction makes interactive checklist items submit a form to the
// URL returned by fn. Without it, toggle controls are plain buttons carrying
// the block id and item index as data attributes.
func WithToggleAction(fn ToggleActionFunc) Option {
	return func(r *Renderer) { r.toggleAction = fn }
}

// WithImageLinks turns the image grid and lightbox controls into links
// built by fn, so the page works without scripts.
func WithImageLinks(fn ImageLinkFunc) Option {
	return func(r *Renderer) { r.imageLink = fn }
}

// WithOpenImage renders the lightbox of blockID open at image. Out of
// range indexes wrap around.
func WithOpenImage(blockID string, image int) Option {
	return func(r *Renderer) {
		r.openBlock = blockID
		r.openImage = image
	}
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(slog.String("component", "viewer"))
	return r
}

// Render returns the component for one block. isFirst marks the leading
// block of a document. When onUpdate is set, checklist items render toggle
// controls; the host applies a toggle with ToggleChecklistItem and passes
// the result to onUpdate.
func (r *Renderer) Render(b block.Block, index int, isFirst bool, accent string, onUpdate UpdateFunc) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return r.renderBlock(ctx, w, b, index, isFirst, normalizeAccent(accent), onUpdate != nil)
	})
}

// RenderDocument renders every block of doc in order.
func (r *Renderer) RenderDocument(doc block.Document, accent string, onUpdate UpdateFunc) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		accent := normalizeAccent(accent)
		hw := &htmlWriter{w: w}
		if len(doc) == 0 {
			hw.raw(`<article class="memory-content memory-content--empty"`)
			hw.attr("style", "--accent-color:"+accent)
			hw.raw(`><p class="memory-empty">No content yet</p></article>`)
			return hw.err
		}
		hw.raw(`<article class="memory-content"`)
		hw.attr("style", "--accent-color:"+accent)
		hw.raw(">")
		if hw.err != nil {
			return hw.err
		}
		for i, b := range doc {
			if err := r.renderBlock(ctx, w, b, i, i == 0, accent, onUpdate != nil); err != nil {
				return err
			}
		}
		hw.raw("</article>")
		return hw.err
	})
}

func (r *Renderer) renderBlock(ctx context.Context, w io.Writer, b block.Block, index int, isFirst bool, accent string, interactive bool) error {
	log := logger.FromContextOrDefault(ctx, r.logger)

	var body bytes.Buffer
	inner := &htmlWriter{w: &body}
	label := string(b.Type)

	switch b.Type {
	case block.TypeParagraph:
		renderParagraph(ctx, inner, b)
	case block.TypeChecklist:
		r.renderChecklist(inner, b, interactive, log)
	case block.TypeImage:
		r.renderImages(inner, b, log)
	case block.TypeMood:
		renderMood(inner, b)
	case block.TypeDivider:
		renderDivider(inner, b)
	default:
		log.Warn("rendering unknown block type",
			slog.String("block_id", b.ID),
			slog.String("block_type", string(b.Type)))
		label = "unknown"
		inner.raw(`<p class="block-notice" role="note">`)
		inner.text(UnknownTypeNotice + ": " + string(b.Type))
		inner.raw("</p>")
	}
	if inner.err != nil {
		return inner.err
	}
	if body.Len() == 0 {
		return nil
	}

	if r.metrics != nil {
		r.metrics.BlocksRenderedTotal.WithLabelValues(label).Inc()
	}

	hw := &htmlWriter{w: w}
	class := "memory-block memory-block--" + label
	if isFirst {
		class += " memory-block--first"
	}
	hw.raw("<section")
	hw.attr("class", class)
	hw.attr("data-block-id", b.ID)
	hw.attr("data-block-index", strconv.Itoa(index))
	hw.attr("style", "--accent-color:"+accent)
	hw.raw(">")
	hw.raw(body.String())
	hw.raw("</section>")
	return hw.err
}

func normalizeAccent(accent string) string {
	accent = strings.TrimSpace(accent)
	if domain.ValidHexColor(accent) {
		return strings.ToLower(accent)
	}
	return DefaultAccent
}

// htmlWriter keeps the first write error and skips everything after it.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) attr(name, value string) {
	h.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

func (h *htmlWriter) notice(msg string) {
	h.raw(`<p class="block-notice" role="note">`)
	h.text(msg)
	h.raw("</p>")
}
