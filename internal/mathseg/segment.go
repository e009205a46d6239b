package mathseg

import (
	"fmt"
	"strings"
)

// Delimiters for block and inline formulas.
const (
	BlockDelimiter  = "$$"
	InlineDelimiter = "$"
)

// Kind classifies a segment.
type Kind uint8

// Segment kinds.
const (
	PlainText Kind = iota
	BlockFormula
	InlineFormula
)

// String returns the kind name used in logs and JSON output.
func (k Kind) String() string {
	switch k {
	case PlainText:
		return "text"
	case BlockFormula:
		return "block"
	case InlineFormula:
		return "inline"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// IsFormula reports whether the kind carries TeX source.
func (k Kind) IsFormula() bool {
	return k == BlockFormula || k == InlineFormula
}

// Segment is one classified, contiguous unit of the scanned text.
// Body holds the formula source with delimiters stripped, or the prose for
// PlainText. Offset is the byte position of Source() in the input.
type Segment struct {
	Kind   Kind
	Body   string
	Offset int
}

// Source returns the original substring, delimiters included.
func (s Segment) Source() string {
	switch s.Kind {
	case BlockFormula:
		return BlockDelimiter + s.Body + BlockDelimiter
	case InlineFormula:
		return InlineDelimiter + s.Body + InlineDelimiter
	default:
		return s.Body
	}
}

// Len returns the byte length of Source().
func (s Segment) Len() int {
	switch s.Kind {
	case BlockFormula:
		return len(s.Body) + 2*len(BlockDelimiter)
	case InlineFormula:
		return len(s.Body) + 2*len(InlineDelimiter)
	default:
		return len(s.Body)
	}
}

// String is a debugging representation, e.g. Inline("x").
func (s Segment) String() string {
	switch s.Kind {
	case BlockFormula:
		return fmt.Sprintf("Block(%q)", s.Body)
	case InlineFormula:
		return fmt.Sprintf("Inline(%q)", s.Body)
	default:
		return fmt.Sprintf("Text(%q)", s.Body)
	}
}

// Join concatenates the sources of segs.
func Join(segs []Segment) string {
	var b strings.Builder
	n := 0
	for _, s := range segs {
		n += s.Len()
	}
	b.Grow(n)
	for _, s := range segs {
		b.WriteString(s.Source())
	}
	return b.String()
}
