package mathseg

import (
	"iter"
	"slices"
	"strings"
)

// Scanner holds segmentation policy. The zero value scans without
// backslash escapes.
type Scanner struct {
	// Escapes makes a $ preceded by an odd number of backslashes literal
	// during the inline stage, so "\$5" stays prose.
	Escapes bool
}

// DefaultScanner is the policy used by Segments and Split.
var DefaultScanner = Scanner{Escapes: true}

// Segments scans input with DefaultScanner.
func Segments(input string) iter.Seq[Segment] {
	return DefaultScanner.Segments(input)
}

// Split collects Segments(input) into a slice.
func Split(input string) []Segment {
	return slices.Collect(Segments(input))
}

// span is a stage-one result: [start, end) of the input, with block set when
// the range is a $$...$$ formula including its delimiters.
type span struct {
	start, end int
	block      bool
}

// Segments returns a lazy sequence over the segments of input. The sequence
// holds no state between iterations and can be ranged over any number of
// times.
func (sc Scanner) Segments(input string) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		for sp := range blockSpans(input) {
			if sp.block {
				seg := Segment{
					Kind:   BlockFormula,
					Body:   input[sp.start+len(BlockDelimiter) : sp.end-len(BlockDelimiter)],
					Offset: sp.start,
				}
				if !yield(seg) {
					return
				}
				continue
			}
			if !sc.scanInline(input, sp.start, sp.end, yield) {
				return
			}
		}
	}
}

// Split collects sc.Segments(input) into a slice.
func (sc Scanner) Split(input string) []Segment {
	return slices.Collect(sc.Segments(input))
}

// blockSpans is stage one. Each $$ opens a block that the nearest following
// $$ closes; an opener with no closer leaves the rest of the input as text.
// Empty text spans are skipped.
func blockSpans(input string) iter.Seq[span] {
	return func(yield func(span) bool) {
		pos := 0
		for pos < len(input) {
			rel := strings.Index(input[pos:], BlockDelimiter)
			if rel < 0 {
				break
			}
			open := pos + rel
			bodyStart := open + len(BlockDelimiter)
			rel = strings.Index(input[bodyStart:], BlockDelimiter)
			if rel < 0 {
				break
			}
			end := bodyStart + rel + len(BlockDelimiter)

			if open > pos && !yield(span{start: pos, end: open}) {
				return
			}
			if !yield(span{start: open, end: end, block: true}) {
				return
			}
			pos = end
		}
		if pos < len(input) {
			yield(span{start: pos, end: len(input)})
		}
	}
}

// scanInline is stage two over input[lo:hi]. A $$ left over by stage one
// pairs as an empty inline formula. It reports false when yield asked to
// stop.
func (sc Scanner) scanInline(input string, lo, hi int, yield func(Segment) bool) bool {
	plainStart := lo
	pos := lo
	for pos < hi {
		rel := strings.IndexByte(input[pos:hi], '$')
		if rel < 0 {
			break
		}
		open := pos + rel

		if sc.Escapes && isEscaped(input, open) {
			pos = open + 1
			continue
		}

		closing := sc.findInlineClose(input, open+1, hi)
		if closing < 0 {
			pos = open + 1
			continue
		}

		if open > plainStart {
			if !yield(Segment{Kind: PlainText, Body: input[plainStart:open], Offset: plainStart}) {
				return false
			}
		}
		if !yield(Segment{Kind: InlineFormula, Body: input[open+1 : closing], Offset: open}) {
			return false
		}
		pos = closing + 1
		plainStart = pos
	}
	if plainStart < hi {
		return yield(Segment{Kind: PlainText, Body: input[plainStart:hi], Offset: plainStart})
	}
	return true
}

// findInlineClose returns the index of the $ closing an inline formula whose
// body starts at from, or -1 when a newline or hi comes first.
func (sc Scanner) findInlineClose(input string, from, hi int) int {
	for i := from; i < hi; i++ {
		switch input[i] {
		case '\n':
			return -1
		case '$':
			if sc.Escapes && isEscaped(input, i) {
				continue
			}
			return i
		}
	}
	return -1
}

// isEscaped reports whether input[i] is preceded by an odd number of
// backslashes.
func isEscaped(input string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && input[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}
