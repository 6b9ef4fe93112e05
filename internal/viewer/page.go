package viewer

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Page wraps body in a standalone HTML document titled title.
func Page(title, accent string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		hw.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.raw("<title>")
		hw.text(title)
		hw.raw("</title></head><body")
		hw.attr("style", "--accent-color:"+normalizeAccent(accent))
		hw.raw("><main><h1>")
		hw.text(title)
		hw.raw("</h1>")
		hw.component(ctx, body)
		hw.raw("</main></body></html>")
		return hw.err
	})
}
