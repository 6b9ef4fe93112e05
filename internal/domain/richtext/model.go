package richtext

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidRange indicates a command addressed text outside the document.
	ErrInvalidRange = errors.New("invalid text range")

	// ErrInvalidCommand indicates a command with unsupported arguments.
	ErrInvalidCommand = errors.New("invalid text command")
)

// MarkKind names one kind of inline formatting.
type MarkKind string

const (
	MarkBold       MarkKind = "bold"
	MarkItalic     MarkKind = "italic"
	MarkUnderline  MarkKind = "underline"
	MarkStrike     MarkKind = "strike"
	MarkColor      MarkKind = "color"
	MarkBackground MarkKind = "background"
)

// Mark is a formatting instruction. Value is only used by color marks.
type Mark struct {
	Kind  MarkKind
	Value string
}

// MarkSet is the full set of marks on a span.
type MarkSet struct {
	Bold       bool
	Italic     bool
	Underline  bool
	Strike     bool
	Color      string
	Background string
}

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidColor reports whether c is a hex color accepted in text styles.
func ValidColor(c string) bool {
	return colorPattern.MatchString(c)
}

func (m MarkSet) with(mark Mark) (MarkSet, error) {
	switch mark.Kind {
	case MarkBold:
		m.Bold = true
	case MarkItalic:
		m.Italic = true
	case MarkUnderline:
		m.Underline = true
	case MarkStrike:
		m.Strike = true
	case MarkColor, MarkBackground:
		if !ValidColor(mark.Value) {
			return m, fmt.Errorf("%w: color %q", ErrInvalidCommand, mark.Value)
		}
		if mark.Kind == MarkColor {
			m.Color = strings.ToLower(mark.Value)
		} else {
			m.Background = strings.ToLower(mark.Value)
		}
	default:
		return m, fmt.Errorf("%w: unknown mark %q", ErrInvalidCommand, mark.Kind)
	}
	return m, nil
}

func (m MarkSet) without(kind MarkKind) MarkSet {
	switch kind {
	case MarkBold:
		m.Bold = false
	case MarkItalic:
		m.Italic = false
	case MarkUnderline:
		m.Underline = false
	case MarkStrike:
		m.Strike = false
	case MarkColor:
		m.Color = ""
	case MarkBackground:
		m.Background = ""
	}
	return m
}

// Has reports whether the set contains a mark of the given kind.
func (m MarkSet) Has(kind MarkKind) bool {
	switch kind {
	case MarkBold:
		return m.Bold
	case MarkItalic:
		return m.Italic
	case MarkUnderline:
		return m.Underline
	case MarkStrike:
		return m.Strike
	case MarkColor:
		return m.Color != ""
	case MarkBackground:
		return m.Background != ""
	}
	return false
}

// Span is a run of text sharing one MarkSet.
type Span struct {
	Text  string
	Marks MarkSet
}

// ListKind is the list a line belongs to, if any.
type ListKind string

const (
	ListNone     ListKind = ""
	ListBullet   ListKind = "bullet"
	ListNumbered ListKind = "numbered"
)

// Align is the horizontal alignment of a line.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
)

// MaxHeading is the deepest heading level; 0 is a plain paragraph.
const MaxHeading = 6

// Line is one block-level element: a paragraph, heading or list item.
type Line struct {
	Heading int
	List    ListKind
	Align   Align
	Spans   []Span
}

// Text returns the line's unformatted text.
func (l Line) Text() string {
	var sb strings.Builder
	for _, s := range l.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Len returns the line length in runes.
func (l Line) Len() int {
	return len([]rune(l.Text()))
}

func (l Line) clone() Line {
	out := l
	out.Spans = append([]Span(nil), l.Spans...)
	return out
}

// Document is a formatted text value.
type Document struct {
	Lines []Line
}

// NewDocument returns a document holding one empty paragraph.
func NewDocument() Document {
	return Document{Lines: []Line{{Align: AlignLeft}}}
}

// FromText builds unformatted paragraphs, one per input line.
func FromText(s string) Document {
	var d Document
	for _, part := range strings.Split(s, "\n") {
		line := Line{Align: AlignLeft}
		if part != "" {
			line.Spans = []Span{{Text: part}}
		}
		d.Lines = append(d.Lines, line)
	}
	return d
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	out := Document{Lines: make([]Line, len(d.Lines))}
	for i, l := range d.Lines {
		out.Lines[i] = l.clone()
	}
	return out
}

// PlainText returns the text of every line joined by newlines.
func (d Document) PlainText() string {
	parts := make([]string, len(d.Lines))
	for i, l := range d.Lines {
		parts[i] = l.Text()
	}
	return strings.Join(parts, "\n")
}

// CharCount is the number of characters of text, not counting line breaks.
func (d Document) CharCount() int {
	n := 0
	for _, l := range d.Lines {
		n += l.Len()
	}
	return n
}

// IsBlank reports whether the document has no visible text.
func (d Document) IsBlank() bool {
	for _, l := range d.Lines {
		if strings.TrimSpace(l.Text()) != "" {
			return false
		}
	}
	return true
}

// cell is a single rune with its marks, the unit commands edit in.
type cell struct {
	r     rune
	marks MarkSet
}

func explode(spans []Span) []cell {
	var cells []cell
	for _, s := range spans {
		for _, r := range s.Text {
			cells = append(cells, cell{r: r, marks: s.Marks})
		}
	}
	return cells
}

// compact merges adjacent cells with equal marks back into spans.
func compact(cells []cell) []Span {
	var spans []Span
	var sb strings.Builder
	for i, c := range cells {
		if i > 0 && c.marks != cells[i-1].marks {
			spans = append(spans, Span{Text: sb.String(), Marks: cells[i-1].marks})
			sb.Reset()
		}
		sb.WriteRune(c.r)
	}
	if len(cells) > 0 {
		spans = append(spans, Span{Text: sb.String(), Marks: cells[len(cells)-1].marks})
	}
	return spans
}
