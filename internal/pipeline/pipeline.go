package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/physiomath/go-physiomath/internal/mathrender"
)

// ErrNoDocumentTemplate is returned by Document when no layout is set.
var ErrNoDocumentTemplate = errors.New("no report template configured")

// Input is one document to convert.
type Input struct {
	Markdown string
	Links    LinkOptions
	TOC      *TOCData // nil disables the table of contents

	// Plain skips Markdown, links and the table of contents: prose is
	// escaped and kept with its line breaks, formulas are rendered.
	Plain bool
}

// Fragment is the converted body of a document.
type Fragment struct {
	HTML string
	Math MathStats
}

// Pipeline converts Markdown with TeX into HTML.
type Pipeline struct {
	renderer     *mathrender.Renderer
	preprocessor MarkdownPreprocessor
	converter    HTMLConverter
	css          CSSInjector
	toc          TOCInjector
	layout       *DocumentTemplate
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConverter replaces the Goldmark converter.
func WithConverter(c HTMLConverter) Option {
	return func(p *Pipeline) { p.converter = c }
}

// WithPreprocessor replaces the Markdown preprocessor.
func WithPreprocessor(pre MarkdownPreprocessor) Option {
	return func(p *Pipeline) { p.preprocessor = pre }
}

// WithDocumentTemplate sets the report layout used by Document.
func WithDocumentTemplate(d *DocumentTemplate) Option {
	return func(p *Pipeline) { p.layout = d }
}

// New creates a Pipeline rendering formulas with renderer.
func New(renderer *mathrender.Renderer, opts ...Option) *Pipeline {
	p := &Pipeline{
		renderer:     renderer,
		preprocessor: &Preprocessor{},
		converter:    NewGoldmarkConverter(),
		css:          &CSSInjection{},
		toc:          &TOCInjection{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Renderer returns the math renderer.
func (p *Pipeline) Renderer() *mathrender.Renderer {
	return p.renderer
}

// Fragment converts in.Markdown into an HTML body fragment.
func (p *Pipeline) Fragment(ctx context.Context, in Input) (*Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content := NormalizeLineEndings(in.Markdown)
	if in.Plain {
		return p.plainFragment(content)
	}
	content, math := ProtectMath(p.renderer, content)
	content = p.preprocessor.PreprocessMarkdown(ctx, content)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := p.converter.ToHTML(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}

	// Links are resolved while formulas are still placeholders so the math
	// markup is never re-serialized.
	body, err = ResolveLinks(body, in.Links)
	if err != nil {
		return nil, fmt.Errorf("resolving links: %w", err)
	}

	body = FinalizeHighlights(math.Restore(body))

	body, err = p.toc.InjectTOC(ctx, body, in.TOC)
	if err != nil {
		return nil, fmt.Errorf("injecting table of contents: %w", err)
	}

	return &Fragment{HTML: body, Math: math.Stats()}, nil
}

// plainFragment renders content as a plain text viewer would, inside a
// pre-wrap container.
func (p *Pipeline) plainFragment(content string) (*Fragment, error) {
	results := p.renderer.Render(content)
	var stats MathStats
	for _, res := range results {
		stats.count(res)
	}

	var b strings.Builder
	b.WriteString(`<div class="math-document">`)
	if err := mathrender.WriteHTML(&b, results); err != nil {
		return nil, fmt.Errorf("writing plain document: %w", err)
	}
	b.WriteString(`</div>`)
	return &Fragment{HTML: b.String(), Math: stats}, nil
}

// Document converts in and wraps the body in the report layout.
func (p *Pipeline) Document(ctx context.Context, in Input, page Page) (string, *Fragment, error) {
	if p.layout == nil {
		return "", nil, ErrNoDocumentTemplate
	}

	frag, err := p.Fragment(ctx, in)
	if err != nil {
		return "", nil, err
	}

	doc, err := p.layout.Render(ctx, frag.HTML, page)
	if err != nil {
		return "", nil, err
	}

	doc = p.css.InjectCSS(ctx, doc, page.CSS)
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	return doc, frag, nil
}
