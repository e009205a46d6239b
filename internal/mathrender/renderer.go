// Package mathrender turns segmented text into display-ready markup.
//
// Formulas go through an Engine in display mode (block) or inline mode.
// Rendering never fails as a whole: a formula the engine rejects is shown as
// its original delimited source. Block failures are flagged so the HTML
// writer can mark them as errors; inline failures are plain text unless
// FlagInlineErrors is set.
package mathrender

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"iter"
	"log/slog"

	"github.com/physiomath/go-physiomath/internal/logfields"
	"github.com/physiomath/go-physiomath/internal/mathseg"
)

// ResultKind tells whether a Result carries engine output or source text.
type ResultKind uint8

// Result kinds.
const (
	Markup ResultKind = iota
	Literal
)

// Result is the rendering of one segment.
type Result struct {
	Kind    ResultKind
	Text    string // engine markup for Markup, original source for Literal
	Flagged bool   // Literal that must be shown as an error
	Segment mathseg.Segment
	Err     error // engine error behind a formula Literal
}

// Observer is notified once per rendered formula.
type Observer interface {
	ObserveFormula(kind mathseg.Kind, ok bool)
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithFlagInlineErrors flags failed inline formulas like block ones.
func WithFlagInlineErrors(flag bool) Option {
	return func(r *Renderer) {
		r.flagInlineErrors = flag
	}
}

// WithObserver registers a metrics observer.
func WithObserver(o Observer) Option {
	return func(r *Renderer) {
		r.observer = o
	}
}

// WithLogger sets the logger used for failed formulas (debug level).
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithScanner overrides the segmentation policy.
func WithScanner(sc mathseg.Scanner) Option {
	return func(r *Renderer) {
		r.scanner = sc
	}
}

// Renderer renders segments through an Engine. It keeps no per-call state
// and is safe for concurrent use when its Engine is.
type Renderer struct {
	engine           Engine
	scanner          mathseg.Scanner
	flagInlineErrors bool
	observer         Observer
	logger           *slog.Logger
}

// New creates a Renderer around engine.
func New(engine Engine, opts ...Option) *Renderer {
	r := &Renderer{
		engine:  engine,
		scanner: mathseg.DefaultScanner,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Engine returns the configured engine.
func (r *Renderer) Engine() Engine {
	return r.engine
}

// Segments exposes the renderer's segmentation of input.
func (r *Renderer) Segments(input string) iter.Seq[mathseg.Segment] {
	return r.scanner.Segments(input)
}

// Results lazily renders every segment of input in source order.
func (r *Renderer) Results(input string) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		for seg := range r.scanner.Segments(input) {
			if !yield(r.RenderSegment(seg)) {
				return
			}
		}
	}
}

// Render renders every segment of input.
func (r *Renderer) Render(input string) []Result {
	var out []Result
	for res := range r.Results(input) {
		out = append(out, res)
	}
	return out
}

// RenderSegment renders one segment. Plain text is returned as an unflagged
// Literal. It never panics: engine panics become failed formulas.
func (r *Renderer) RenderSegment(seg mathseg.Segment) (res Result) {
	if !seg.Kind.IsFormula() {
		return Result{Kind: Literal, Text: seg.Body, Segment: seg}
	}

	display := seg.Kind == mathseg.BlockFormula

	defer func() {
		if p := recover(); p != nil {
			res = r.failed(seg, fmt.Errorf("math engine panic: %v", p))
		}
	}()

	var buf bytes.Buffer
	if err := r.engine.Render(&buf, seg.Body, display); err != nil {
		return r.failed(seg, err)
	}

	if r.observer != nil {
		r.observer.ObserveFormula(seg.Kind, true)
	}
	return Result{Kind: Markup, Text: buf.String(), Segment: seg}
}

// failed builds the literal fallback for a formula the engine rejected.
func (r *Renderer) failed(seg mathseg.Segment, err error) Result {
	if r.observer != nil {
		r.observer.ObserveFormula(seg.Kind, false)
	}
	r.logger.Debug("formula rendered as literal",
		logfields.Engine(r.engine.Name()),
		logfields.FormulaKind(seg.Kind.String()),
		logfields.Offset(seg.Offset),
		logfields.Error(err))

	return Result{
		Kind:    Literal,
		Text:    seg.Source(),
		Flagged: seg.Kind == mathseg.BlockFormula || r.flagInlineErrors,
		Segment: seg,
		Err:     err,
	}
}

// HTML returns the HTML for one result:
//   - block markup in <div class="math-block">
//   - inline markup in <span class="math-inline">
//   - flagged literals in <code class="math-error">, escaped
//   - other literals as escaped text
func (res Result) HTML() string {
	switch {
	case res.Kind == Markup && res.Segment.Kind == mathseg.BlockFormula:
		return `<div class="math-block">` + res.Text + `</div>`
	case res.Kind == Markup:
		return `<span class="math-inline">` + res.Text + `</span>`
	case res.Flagged:
		return `<code class="math-error">` + html.EscapeString(res.Text) + `</code>`
	default:
		return html.EscapeString(res.Text)
	}
}

// WriteHTML writes the HTML of every result, in order.
func WriteHTML(w io.Writer, results []Result) error {
	for _, res := range results {
		if _, err := io.WriteString(w, res.HTML()); err != nil {
			return err
		}
	}
	return nil
}
