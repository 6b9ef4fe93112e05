package richtext

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse reads markup into a Document. Elements outside the supported
// subset are dropped while their text is kept, except for script-like
// elements whose content is discarded entirely.
func Parse(markup string) (Document, error) {
	if strings.TrimSpace(markup) == "" {
		return Document{}, nil
	}
	ctx := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return Document{}, fmt.Errorf("parse markup: %w", err)
	}
	p := &parser{}
	for _, n := range nodes {
		p.walk(n, MarkSet{})
	}
	p.flush()
	return Document{Lines: p.lines}, nil
}

// Sanitize reduces markup to the supported subset. Markup with no visible
// text sanitizes to "".
func Sanitize(markup string) string {
	d, err := Parse(markup)
	if err != nil || d.IsBlank() {
		return ""
	}
	return d.HTML()
}

// CharCount returns the number of text characters in markup.
func CharCount(markup string) int {
	d, err := Parse(markup)
	if err != nil {
		return 0
	}
	return d.CharCount()
}

var droppedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Iframe:   true,
	atom.Object:   true,
	atom.Embed:    true,
	atom.Template: true,
	atom.Noscript: true,
	atom.Head:     true,
	atom.Title:    true,
	atom.Svg:      true,
	atom.Math:     true,
	atom.Textarea: true,
	atom.Select:   true,
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

type parser struct {
	lines []Line
	cur   *Line
	list  ListKind
	depth int
}

func (p *parser) flush() {
	if p.cur != nil {
		p.lines = append(p.lines, *p.cur)
		p.cur = nil
	}
}

func (p *parser) ensureLine() *Line {
	if p.cur == nil {
		p.cur = &Line{List: p.list, Align: AlignLeft}
	}
	return p.cur
}

func (p *parser) startLine(l Line) {
	p.flush()
	p.cur = &l
}

func (p *parser) walk(n *html.Node, marks MarkSet) {
	switch n.Type {
	case html.TextNode:
		p.text(n.Data, marks)
		return
	case html.ElementNode:
	default:
		p.children(n, marks)
		return
	}

	if droppedElements[n.DataAtom] {
		return
	}

	switch n.DataAtom {
	case atom.Div, atom.Blockquote, atom.Section, atom.Article:
		if p.depth > 0 {
			p.children(n, marks)
			return
		}
		p.flush()
		p.children(n, marks)
		p.flush()
	case atom.P, atom.Pre,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		if p.depth > 0 {
			p.children(n, marks)
			return
		}
		p.startLine(Line{Heading: headingLevels[n.DataAtom], Align: alignOf(n)})
		p.block(n, marks)
	case atom.Ul, atom.Ol:
		kind := ListBullet
		if n.DataAtom == atom.Ol {
			kind = ListNumbered
		}
		p.flush()
		saved := p.list
		p.list = kind
		p.children(n, marks)
		p.flush()
		p.list = saved
	case atom.Li:
		kind := p.list
		if kind == ListNone {
			kind = ListBullet
		}
		p.startLine(Line{List: kind, Align: alignOf(n)})
		p.block(n, marks)
	case atom.Br:
		if p.cur == nil {
			return
		}
		next := Line{Heading: p.cur.Heading, List: p.cur.List, Align: p.cur.Align}
		p.startLine(next)
	case atom.B, atom.Strong:
		marks.Bold = true
		p.children(n, marks)
	case atom.I, atom.Em:
		marks.Italic = true
		p.children(n, marks)
	case atom.U, atom.Ins:
		marks.Underline = true
		p.children(n, marks)
	case atom.S, atom.Strike, atom.Del:
		marks.Strike = true
		p.children(n, marks)
	case atom.Span:
		styles := parseStyle(attr(n, "style"))
		if c := styles["color"]; ValidColor(c) {
			marks.Color = strings.ToLower(c)
		}
		bg := styles["background-color"]
		if bg == "" {
			bg = styles["background"]
		}
		if ValidColor(bg) {
			marks.Background = strings.ToLower(bg)
		}
		p.children(n, marks)
	default:
		p.children(n, marks)
	}
}

func (p *parser) block(n *html.Node, marks MarkSet) {
	p.depth++
	p.children(n, marks)
	p.depth--
	p.flush()
}

func (p *parser) children(n *html.Node, marks MarkSet) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, marks)
	}
}

func (p *parser) text(s string, marks MarkSet) {
	s = collapseSpace(s)
	if p.cur == nil && strings.TrimSpace(s) == "" {
		return
	}
	l := p.ensureLine()
	cells := explode(l.Spans)
	if len(cells) == 0 || cells[len(cells)-1].r == ' ' {
		s = strings.TrimLeft(s, " ")
		if s == "" {
			return
		}
	}
	// &nbsp; marks a space kept verbatim by HTML
	s = strings.ReplaceAll(s, "\u00a0", " ")
	for _, r := range s {
		cells = append(cells, cell{r: r, marks: marks})
	}
	l.Spans = compact(cells)
}

func collapseSpace(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				sb.WriteByte(' ')
			}
			space = true
		default:
			sb.WriteRune(r)
			space = false
		}
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func alignOf(n *html.Node) Align {
	if strings.EqualFold(parseStyle(attr(n, "style"))["text-align"], "center") {
		return AlignCenter
	}
	return AlignLeft
}

func parseStyle(style string) map[string]string {
	out := map[string]string{}
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}
