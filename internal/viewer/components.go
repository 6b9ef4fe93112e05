package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/phrazzld/memoryblocks/internal/domain"
	"github.com/phrazzld/memoryblocks/internal/domain/block"
	"github.com/phrazzld/memoryblocks/internal/domain/richtext"
)

// ImageFailedText replaces images that cannot be shown.
const ImageFailedText = "Image failed to load"

const imageOnError = "this.hidden=true;this.nextElementSibling.hidden=false"

func renderParagraph(ctx context.Context, hw *htmlWriter, b block.Block) {
	var parts []string
	for _, item := range b.Content {
		if s, ok := item.(string); ok {
			parts = append(parts, s)
		}
	}
	markup := richtext.Sanitize(strings.Join(parts, ""))
	if markup == "" {
		return
	}
	hw.raw(`<div class="rich-text">`)
	hw.component(ctx, templ.Raw(markup))
	hw.raw("</div>")
}

func (r *Renderer) renderChecklist(hw *htmlWriter, b block.Block, interactive bool, log *slog.Logger) {
	items, err := block.ChecklistItems(b)
	if err != nil {
		log.Warn("unreadable checklist", slog.String("block_id", b.ID), slog.String("error", err.Error()))
		hw.notice("This checklist could not be displayed")
		return
	}

	done := 0
	for _, item := range items {
		if item.Checked {
			done++
		}
	}
	percent := block.CompletionPercent(items)

	hw.raw(`<div class="checklist">`)
	hw.raw(`<div class="checklist-progress" role="progressbar" aria-valuemin="0" aria-valuemax="100"`)
	hw.attr("aria-valuenow", strconv.Itoa(percent))
	hw.raw(`><span class="checklist-progress-bar"`)
	hw.attr("style", fmt.Sprintf("width:%d%%", percent))
	hw.raw(`></span><span class="checklist-progress-label">`)
	hw.text(fmt.Sprintf("%d of %d complete (%d%%)", done, len(items), percent))
	hw.raw("</span></div>")

	hw.raw(`<ul class="checklist-items">`)
	for i, item := range items {
		class := "checklist-item"
		if item.Checked {
			class += " checklist-item--checked"
		}
		hw.raw("<li")
		hw.attr("class", class)
		hw.attr("data-item-index", strconv.Itoa(i))
		hw.raw(">")

		if interactive {
			r.renderToggle(hw, b.ID, i, item.Checked)
		} else {
			hw.raw(`<span class="checklist-indicator" aria-hidden="true">`)
			if item.Checked {
				hw.raw("&#10003;")
			}
			hw.raw("</span>")
		}

		hw.raw(`<span class="checklist-text">`)
		hw.text(item.Text)
		hw.raw("</span>")
		if item.Checked && item.CompletedAt != nil {
			at := item.CompletedAt.UTC()
			hw.raw(`<time class="checklist-completed"`)
			hw.attr("datetime", at.Format("2006-01-02T15:04:05Z07:00"))
			hw.raw(">")
			hw.text("Completed " + at.Format("Jan 2, 2006"))
			hw.raw("</time>")
		}
		hw.raw("</li>")
	}
	hw.raw("</ul></div>")
}

func (r *Renderer) renderToggle(hw *htmlWriter, blockID string, item int, checked bool) {
	label := "Mark as done"
	if checked {
		label = "Mark as not done"
	}
	pressed := strconv.FormatBool(checked)
	mark := func() {
		if checked {
			hw.raw("&#10003;")
		}
	}

	if r.toggleAction != nil {
		hw.raw(`<form class="checklist-toggle-form" method="post"`)
		hw.attr("action", r.toggleAction(blockID, item))
		hw.raw(`><button type="submit" class="checklist-toggle"`)
		hw.attr("aria-pressed", pressed)
		hw.attr("aria-label", label)
		hw.raw(">")
		mark()
		hw.raw("</button></form>")
		return
	}
	hw.raw(`<button type="button" class="checklist-toggle"`)
	hw.attr("data-block-id", blockID)
	hw.attr("data-item-index", strconv.Itoa(item))
	hw.attr("aria-pressed", pressed)
	hw.attr("aria-label", label)
	hw.raw(">")
	mark()
	hw.raw("</button>")
}

func (r *Renderer) renderImages(hw *htmlWriter, b block.Block, log *slog.Logger) {
	images, err := block.Images(b)
	if err != nil {
		log.Warn("unreadable image block", slog.String("block_id", b.ID), slog.String("error", err.Error()))
		hw.notice("These images could not be displayed")
		return
	}
	if len(images) == 0 {
		return
	}

	layout := b.StringProp(block.PropLayout)
	if layout == "" {
		layout = "grid"
	}
	hw.raw("<div")
	hw.attr("class", "image-block image-block--"+layout)
	hw.raw("><div")
	hw.attr("class", fmt.Sprintf("image-grid image-grid--cols-%d", gridColumns(len(images))))
	hw.raw(">")
	for i, img := range images {
		if r.imageLink != nil {
			hw.raw(`<figure class="image-grid-item"><a class="image-open"`)
			hw.attr("href", r.imageLink(b.ID, i))
			hw.attr("data-lightbox-open", strconv.Itoa(i))
			hw.raw(">")
			renderImage(hw, img, true)
			hw.raw("</a>")
		} else {
			hw.raw(`<figure class="image-grid-item"><button type="button" class="image-open"`)
			hw.attr("data-lightbox-open", strconv.Itoa(i))
			hw.raw(">")
			renderImage(hw, img, true)
			hw.raw("</button>")
		}
		if img.Caption != "" {
			hw.raw("<figcaption>")
			hw.text(img.Caption)
			hw.raw("</figcaption>")
		}
		hw.raw("</figure>")
	}
	hw.raw("</div>")

	r.renderLightbox(hw, b.ID, images)
	hw.raw("</div>")
}

func (r *Renderer) renderLightbox(hw *htmlWriter, blockID string, images []block.Image) {
	count := len(images)
	open := r.imageLink != nil && r.openBlock != "" && r.openBlock == blockID
	current := NewLightbox(count, 0)
	if open {
		current = NewLightbox(count, r.openImage)
	}

	hw.raw(`<dialog class="lightbox"`)
	if open {
		hw.raw(" open")
	}
	hw.attr("data-lightbox-count", strconv.Itoa(count))
	hw.attr("data-lightbox-current", strconv.Itoa(current.Current))
	hw.raw(">")
	for i, img := range images {
		lb := NewLightbox(count, i)
		hw.raw(`<figure class="lightbox-slide"`)
		hw.attr("data-index", strconv.Itoa(lb.Current))
		hw.attr("data-prev", strconv.Itoa(lb.Prev().Current))
		hw.attr("data-next", strconv.Itoa(lb.Next().Current))
		if i != current.Current {
			hw.raw(" hidden")
		}
		hw.raw(">")
		renderImage(hw, img, false)
		hw.raw(`<figcaption><span class="lightbox-position">`)
		hw.text(fmt.Sprintf("%d / %d", i+1, count))
		hw.raw("</span>")
		if img.Caption != "" {
			hw.raw(" ")
			hw.text(img.Caption)
		}
		hw.raw("</figcaption></figure>")
	}

	if r.imageLink == nil {
		if count > 1 {
			hw.raw(`<button type="button" class="lightbox-prev" data-lightbox-step="-1" aria-label="Previous image">&#8249;</button>`)
			hw.raw(`<button type="button" class="lightbox-next" data-lightbox-step="1" aria-label="Next image">&#8250;</button>`)
		}
		hw.raw(`<button type="button" class="lightbox-close" aria-label="Close">&#215;</button></dialog>`)
		return
	}

	if count > 1 {
		hw.raw(`<a class="lightbox-prev"`)
		hw.attr("href", r.imageLink(blockID, current.Prev().Current))
		hw.raw(` aria-label="Previous image">&#8249;</a>`)
		hw.raw(`<a class="lightbox-next"`)
		hw.attr("href", r.imageLink(blockID, current.Next().Current))
		hw.raw(` aria-label="Next image">&#8250;</a>`)
	}
	hw.raw(`<a class="lightbox-close"`)
	hw.attr("href", r.imageLink(blockID, -1))
	hw.raw(` aria-label="Close">&#215;</a></dialog>`)
}

func renderImage(hw *htmlWriter, img block.Image, lazy bool) {
	if !safeImageURL(img.URL) {
		hw.raw(`<span class="image-error" role="img"`)
		hw.attr("aria-label", ImageFailedText)
		hw.raw(">")
		hw.text(ImageFailedText)
		hw.raw("</span>")
		return
	}
	hw.raw("<img")
	hw.attr("src", img.URL)
	hw.attr("alt", img.Alt)
	if lazy {
		hw.raw(` loading="lazy"`)
	}
	hw.attr("onerror", imageOnError)
	hw.raw(`><span class="image-error" role="img"`)
	hw.attr("aria-label", ImageFailedText)
	hw.raw(" hidden>")
	hw.text(ImageFailedText)
	hw.raw("</span>")
}

// safeImageURL accepts inline image data, http(s) URLs and same-origin paths.
func safeImageURL(u string) bool {
	lower := strings.ToLower(strings.TrimSpace(u))
	switch {
	case strings.HasPrefix(lower, "data:image/"):
		return !strings.HasPrefix(lower, "data:image/svg")
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
		return true
	case strings.HasPrefix(lower, "/"):
		return !strings.HasPrefix(lower, "//")
	default:
		return false
	}
}

func renderMood(hw *htmlWriter, b block.Block) {
	emotion := b.StringProp(block.PropEmotion)
	if emotion == "" {
		return
	}
	hw.raw(`<div class="mood-panel"`)
	hw.attr("data-emotion", emotion)
	hw.raw(`><span class="mood-emotion">`)
	hw.text(cases.Title(language.English).String(emotion))
	hw.raw("</span>")

	if n, ok := block.Intensity(b); ok && n >= block.MinIntensity && n <= block.MaxIntensity {
		hw.raw(`<span class="mood-intensity"`)
		hw.attr("aria-label", fmt.Sprintf("Intensity %d of %d", n, block.MaxIntensity))
		hw.raw(`><span class="mood-intensity-bar"`)
		hw.attr("style", fmt.Sprintf("width:%d%%", n*100/block.MaxIntensity))
		hw.raw("></span>")
		hw.text(fmt.Sprintf("%d/%d", n, block.MaxIntensity))
		hw.raw("</span>")
	}
	if note := strings.TrimSpace(b.StringProp(block.PropNote)); note != "" {
		hw.raw(`<p class="mood-note">`)
		hw.text(note)
		hw.raw("</p>")
	}
	hw.raw("</div>")
}

func renderDivider(hw *htmlWriter, b block.Block) {
	style := b.StringProp(block.PropStyle)
	if !slices.Contains(block.DividerStyles, style) {
		style = block.DividerLine
	}
	color := b.StringProp(block.PropColor)
	if !domain.ValidHexColor(color) {
		color = block.DefaultDividerColor
	}

	switch style {
	case block.DividerStars, block.DividerWave:
		glyphs := "&#10022; &#10022; &#10022;"
		if style == block.DividerWave {
			glyphs = "&#8776;&#8776;&#8776;&#8776;&#8776;"
		}
		hw.raw("<div")
		hw.attr("class", "divider divider--"+style)
		hw.raw(` role="separator" aria-hidden="true"`)
		hw.attr("style", "color:"+strings.ToLower(color))
		hw.raw(">" + glyphs + "</div>")
	default:
		hw.raw("<hr")
		hw.attr("class", "divider divider--"+style)
		hw.raw(` aria-hidden="true"`)
		hw.attr("style", "border-color:"+strings.ToLower(color))
		hw.raw(">")
	}
}
