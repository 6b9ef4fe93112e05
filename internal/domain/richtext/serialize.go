package richtext

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// HTML serializes d to the stored markup subset: p, h1-h6, ul/ol with li,
// strong, em, u, s and span with color styles. A document with no lines
// serializes to "". Spaces that HTML would collapse (at the start of a
// line or after another space) are written as &nbsp; so that Parse reads
// back the same text.
func (d Document) HTML() string {
	var sb strings.Builder
	var open ListKind
	for _, l := range d.Lines {
		if l.List != open {
			closeList(&sb, open)
			openList(&sb, l.List)
			open = l.List
		}
		tag := "p"
		switch {
		case l.List != ListNone:
			tag = "li"
		case l.Heading > 0 && l.Heading <= MaxHeading:
			tag = "h" + strconv.Itoa(l.Heading)
		}
		sb.WriteString("<" + tag)
		if l.Align == AlignCenter {
			sb.WriteString(` style="text-align:center"`)
		}
		sb.WriteString(">")
		afterSpace := true
		for _, s := range l.Spans {
			writeSpan(&sb, s, &afterSpace)
		}
		sb.WriteString("</" + tag + ">")
	}
	closeList(&sb, open)
	return sb.String()
}

func openList(sb *strings.Builder, k ListKind) {
	switch k {
	case ListBullet:
		sb.WriteString("<ul>")
	case ListNumbered:
		sb.WriteString("<ol>")
	}
}

func closeList(sb *strings.Builder, k ListKind) {
	switch k {
	case ListBullet:
		sb.WriteString("</ul>")
	case ListNumbered:
		sb.WriteString("</ol>")
	}
}

func writeSpan(sb *strings.Builder, s Span, afterSpace *bool) {
	m := s.Marks
	var closers []string
	if style := spanStyle(m); style != "" {
		sb.WriteString(`<span style="` + style + `">`)
		closers = append(closers, "</span>")
	}
	for _, t := range []struct {
		on  bool
		tag string
	}{{m.Bold, "strong"}, {m.Italic, "em"}, {m.Underline, "u"}, {m.Strike, "s"}} {
		if t.on {
			sb.WriteString("<" + t.tag + ">")
			closers = append(closers, "</"+t.tag+">")
		}
	}
	writeText(sb, s.Text, afterSpace)
	for i := len(closers) - 1; i >= 0; i-- {
		sb.WriteString(closers[i])
	}
}

// writeText escapes text, emitting &nbsp; for each space that follows
// another space or opens the line.
func writeText(sb *strings.Builder, text string, afterSpace *bool) {
	start := 0
	for i, r := range text {
		if r != ' ' {
			*afterSpace = false
			continue
		}
		if *afterSpace {
			sb.WriteString(html.EscapeString(text[start:i]))
			sb.WriteString("&nbsp;")
			start = i + 1
		}
		*afterSpace = true
	}
	sb.WriteString(html.EscapeString(text[start:]))
}

func spanStyle(m MarkSet) string {
	var parts []string
	if m.Color != "" && ValidColor(m.Color) {
		parts = append(parts, "color:"+m.Color)
	}
	if m.Background != "" && ValidColor(m.Background) {
		parts = append(parts, "background-color:"+m.Background)
	}
	return strings.Join(parts, ";")
}
