package richtext

import (
	"fmt"
	"strings"
)

// Command is one editing step. Apply never modifies its input.
type Command interface {
	Apply(d Document) (Document, error)
}

// Apply runs cmds in order and returns the resulting document. The
// original is returned unchanged alongside the first error.
func (d Document) Apply(cmds ...Command) (Document, error) {
	out := d
	for _, cmd := range cmds {
		next, err := cmd.Apply(out)
		if err != nil {
			return d, err
		}
		out = next
	}
	return out, nil
}

// Range addresses runes [Start, End) of one line.
type Range struct {
	Line  int
	Start int
	End   int
}

func (d Document) checkLine(i int) error {
	if i < 0 || i >= len(d.Lines) {
		return fmt.Errorf("%w: line %d of %d", ErrInvalidRange, i, len(d.Lines))
	}
	return nil
}

func (d Document) checkRange(r Range) error {
	if err := d.checkLine(r.Line); err != nil {
		return err
	}
	if r.Start < 0 || r.End < r.Start || r.End > d.Lines[r.Line].Len() {
		return fmt.Errorf("%w: %d..%d on line %d", ErrInvalidRange, r.Start, r.End, r.Line)
	}
	return nil
}

func (d Document) mapMarks(r Range, fn func(MarkSet) (MarkSet, error)) (Document, error) {
	if err := d.checkRange(r); err != nil {
		return d, err
	}
	out := d.Clone()
	cells := explode(out.Lines[r.Line].Spans)
	for i := r.Start; i < r.End; i++ {
		m, err := fn(cells[i].marks)
		if err != nil {
			return d, err
		}
		cells[i].marks = m
	}
	out.Lines[r.Line].Spans = compact(cells)
	return out, nil
}

// ApplyMark adds Mark to every rune in Range.
type ApplyMark struct {
	Range Range
	Mark  Mark
}

func (c ApplyMark) Apply(d Document) (Document, error) {
	if _, err := (MarkSet{}).with(c.Mark); err != nil {
		return d, err
	}
	return d.mapMarks(c.Range, func(m MarkSet) (MarkSet, error) { return m.with(c.Mark) })
}

// RemoveMark clears marks of Kind from every rune in Range.
type RemoveMark struct {
	Range Range
	Kind  MarkKind
}

func (c RemoveMark) Apply(d Document) (Document, error) {
	return d.mapMarks(c.Range, func(m MarkSet) (MarkSet, error) { return m.without(c.Kind), nil })
}

// SetHeading turns a line into a heading of Level, or a paragraph for 0.
// Headings leave any list.
type SetHeading struct {
	Line  int
	Level int
}

func (c SetHeading) Apply(d Document) (Document, error) {
	if err := d.checkLine(c.Line); err != nil {
		return d, err
	}
	if c.Level < 0 || c.Level > MaxHeading {
		return d, fmt.Errorf("%w: heading level %d", ErrInvalidCommand, c.Level)
	}
	out := d.Clone()
	out.Lines[c.Line].Heading = c.Level
	if c.Level > 0 {
		out.Lines[c.Line].List = ListNone
	}
	return out, nil
}

// ToggleList puts a line into a list of Kind, or takes it out when it is
// already in one of that kind.
type ToggleList struct {
	Line int
	Kind ListKind
}

func (c ToggleList) Apply(d Document) (Document, error) {
	if err := d.checkLine(c.Line); err != nil {
		return d, err
	}
	if c.Kind != ListBullet && c.Kind != ListNumbered {
		return d, fmt.Errorf("%w: list kind %q", ErrInvalidCommand, c.Kind)
	}
	out := d.Clone()
	l := &out.Lines[c.Line]
	if l.List == c.Kind {
		l.List = ListNone
	} else {
		l.List = c.Kind
		l.Heading = 0
	}
	return out, nil
}

// SetAlignment aligns a line.
type SetAlignment struct {
	Line  int
	Align Align
}

func (c SetAlignment) Apply(d Document) (Document, error) {
	if err := d.checkLine(c.Line); err != nil {
		return d, err
	}
	if c.Align != AlignLeft && c.Align != AlignCenter {
		return d, fmt.Errorf("%w: alignment %q", ErrInvalidCommand, c.Align)
	}
	out := d.Clone()
	out.Lines[c.Line].Align = c.Align
	return out, nil
}

// InsertText inserts Text at rune Offset of a line. Inserted runes take
// the marks of the rune before them. A newline in Text splits the line;
// the new line keeps the original's block attributes.
type InsertText struct {
	Line   int
	Offset int
	Text   string
}

func (c InsertText) Apply(d Document) (Document, error) {
	return ReplaceText{Range: Range{Line: c.Line, Start: c.Offset, End: c.Offset}, Text: c.Text}.Apply(d)
}

// ReplaceText replaces the runes in Range with Text.
type ReplaceText struct {
	Range Range
	Text  string
}

func (c ReplaceText) Apply(d Document) (Document, error) {
	if err := d.checkRange(c.Range); err != nil {
		return d, err
	}
	out := d.Clone()
	line := out.Lines[c.Range.Line]
	cells := explode(line.Spans)

	var marks MarkSet
	switch {
	case c.Range.Start > 0:
		marks = cells[c.Range.Start-1].marks
	case len(cells) > 0:
		marks = cells[0].marks
	}

	inserted := make([]cell, 0, len(c.Text))
	for _, r := range strings.ReplaceAll(c.Text, "\r\n", "\n") {
		inserted = append(inserted, cell{r: r, marks: marks})
	}

	edited := make([]cell, 0, len(cells)+len(inserted))
	edited = append(edited, cells[:c.Range.Start]...)
	edited = append(edited, inserted...)
	edited = append(edited, cells[c.Range.End:]...)

	var split []Line
	start := 0
	for i, cl := range edited {
		if cl.r != '\n' {
			continue
		}
		part := line
		part.Spans = compact(edited[start:i])
		split = append(split, part)
		start = i + 1
	}
	last := line
	last.Spans = compact(edited[start:])
	split = append(split, last)

	lines := make([]Line, 0, len(out.Lines)+len(split)-1)
	lines = append(lines, out.Lines[:c.Range.Line]...)
	lines = append(lines, split...)
	lines = append(lines, out.Lines[c.Range.Line+1:]...)
	out.Lines = lines
	return out, nil
}

// InsertLine adds an unformatted paragraph before line Index; Index equal
// to the line count appends.
type InsertLine struct {
	Index int
	Text  string
}

func (c InsertLine) Apply(d Document) (Document, error) {
	if c.Index < 0 || c.Index > len(d.Lines) {
		return d, fmt.Errorf("%w: line %d of %d", ErrInvalidRange, c.Index, len(d.Lines))
	}
	if strings.Contains(c.Text, "\n") {
		return d, fmt.Errorf("%w: line text contains a newline", ErrInvalidCommand)
	}
	out := d.Clone()
	line := Line{Align: AlignLeft}
	if c.Text != "" {
		line.Spans = []Span{{Text: c.Text}}
	}
	lines := make([]Line, 0, len(out.Lines)+1)
	lines = append(lines, out.Lines[:c.Index]...)
	lines = append(lines, line)
	lines = append(lines, out.Lines[c.Index:]...)
	out.Lines = lines
	return out, nil
}

// DeleteLine removes a line.
type DeleteLine struct {
	Index int
}

func (c DeleteLine) Apply(d Document) (Document, error) {
	if err := d.checkLine(c.Index); err != nil {
		return d, err
	}
	out := d.Clone()
	out.Lines = append(out.Lines[:c.Index], out.Lines[c.Index+1:]...)
	return out, nil
}
