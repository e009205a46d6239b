package pipeline

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/physiomath/go-physiomath/internal/mathrender"
	"github.com/physiomath/go-physiomath/internal/mathseg"
)

// Math placeholders wrap the index of a rendered formula. Digits between
// two Private Use Area runes survive Goldmark as plain text.
const (
	MathStartPlaceholder = "\uE002"
	MathEndPlaceholder   = "\uE003"
)

var (
	mathPlaceholderPattern = regexp.MustCompile(MathStartPlaceholder + `([0-9]+)` + MathEndPlaceholder)

	// A formula that is the only content of a paragraph.
	soloMathParagraph = regexp.MustCompile(`<p>` + MathStartPlaceholder + `([0-9]+)` + MathEndPlaceholder + `</p>`)

	// Strips placeholder runes that appear in the source text itself.
	placeholderRunes = strings.NewReplacer(
		MathStartPlaceholder, "\uFFFD",
		MathEndPlaceholder, "\uFFFD",
	)
)

// MathStats counts the formulas of one document.
type MathStats struct {
	Inline int
	Block  int
	Failed int
}

// Formulas returns the total formula count.
func (s MathStats) Formulas() int { return s.Inline + s.Block }

// count adds res to the stats. Plain text results are ignored.
func (s *MathStats) count(res mathrender.Result) {
	switch res.Segment.Kind {
	case mathseg.BlockFormula:
		s.Block++
	case mathseg.InlineFormula:
		s.Inline++
	default:
		return
	}
	if res.Err != nil {
		s.Failed++
	}
}

// ProtectedMath holds the rendered formulas of a protected document.
type ProtectedMath struct {
	results []mathrender.Result
	stats   MathStats
}

// ProtectMath renders every formula of content and replaces it with a
// placeholder. Plain text is kept as is apart from stray placeholder runes.
func ProtectMath(r *mathrender.Renderer, content string) (string, *ProtectedMath) {
	pm := &ProtectedMath{}
	var b strings.Builder
	b.Grow(len(content))

	for res := range r.Results(content) {
		seg := res.Segment
		if !seg.Kind.IsFormula() {
			b.WriteString(placeholderRunes.Replace(seg.Body))
			continue
		}

		pm.stats.count(res)
		b.WriteString(MathStartPlaceholder)
		b.WriteString(strconv.Itoa(len(pm.results)))
		b.WriteString(MathEndPlaceholder)
		pm.results = append(pm.results, res)
	}
	return b.String(), pm
}

// Stats returns the formula counts.
func (pm *ProtectedMath) Stats() MathStats {
	return pm.stats
}

// Results returns the rendered formulas in source order.
func (pm *ProtectedMath) Results() []mathrender.Result {
	return pm.results
}

// Restore puts the rendered formulas back into htmlContent. A block formula
// alone in a paragraph replaces the paragraph; elsewhere it is kept inline
// in a display span so the surrounding markup stays valid.
func (pm *ProtectedMath) Restore(htmlContent string) string {
	htmlContent = soloMathParagraph.ReplaceAllStringFunc(htmlContent, func(m string) string {
		res, ok := pm.lookup(m)
		if !ok {
			return m
		}
		if res.Segment.Kind == mathseg.BlockFormula {
			return res.HTML()
		}
		return "<p>" + inlineHTML(res) + "</p>"
	})

	return mathPlaceholderPattern.ReplaceAllStringFunc(htmlContent, func(m string) string {
		res, ok := pm.lookup(m)
		if !ok {
			return m
		}
		return inlineHTML(res)
	})
}

func (pm *ProtectedMath) lookup(match string) (mathrender.Result, bool) {
	sub := mathPlaceholderPattern.FindStringSubmatch(match)
	if sub == nil {
		return mathrender.Result{}, false
	}
	i, err := strconv.Atoi(sub[1])
	if err != nil || i < 0 || i >= len(pm.results) {
		return mathrender.Result{}, false
	}
	return pm.results[i], true
}

// inlineHTML renders a result with phrasing content only.
func inlineHTML(res mathrender.Result) string {
	if res.Kind == mathrender.Markup && res.Segment.Kind == mathseg.BlockFormula {
		return `<span class="math-block">` + res.Text + `</span>`
	}
	if res.Kind == mathrender.Literal && !res.Flagged {
		return html.EscapeString(res.Text)
	}
	return res.HTML()
}
