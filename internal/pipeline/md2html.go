package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// HTMLConverter converts Markdown to an HTML fragment.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

type converterConfig struct {
	hardWraps bool
	highlight bool
}

// ConverterOption configures a GoldmarkConverter.
type ConverterOption func(*converterConfig)

// WithHardWraps renders single newlines as <br>. Model answers are written
// for a pre-wrapped display, so it is on by default.
func WithHardWraps(on bool) ConverterOption {
	return func(c *converterConfig) { c.hardWraps = on }
}

// WithHighlighting toggles chroma highlighting of fenced code blocks.
func WithHighlighting(on bool) ConverterOption {
	return func(c *converterConfig) { c.highlight = on }
}

// GoldmarkConverter converts Markdown to HTML using goldmark with GFM,
// footnotes and heading IDs. Raw HTML in the source is escaped.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

var _ HTMLConverter = (*GoldmarkConverter)(nil)

// NewGoldmarkConverter creates a GoldmarkConverter.
func NewGoldmarkConverter(opts ...ConverterOption) *GoldmarkConverter {
	cfg := converterConfig{hardWraps: true, highlight: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	exts := []goldmark.Extender{extension.GFM, extension.Footnote}
	if cfg.highlight {
		// Classes only: the report stylesheet carries the chroma palette.
		exts = append(exts, highlighting.NewHighlighting(
			highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
		))
	}
	rendererOpts := []goldmark.Option{}
	if cfg.hardWraps {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(html.WithHardWraps()))
	}

	md := goldmark.New(append(rendererOpts,
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithXHTML()),
	)...)
	return &GoldmarkConverter{md: md}
}

// ToHTML converts Markdown content to an HTML fragment. It returns as soon
// as ctx is done, even if goldmark is still working.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	return withContext(ctx, func() (string, error) {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
		}
		return buf.String(), nil
	})
}

// withContext runs fn in its own goroutine for work that ignores contexts.
// A panic in fn is returned as ErrHTMLConversion instead of killing the
// process.
func withContext[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: panic: %v", ErrHTMLConversion, r)}
			}
		}()
		v, err := fn()
		done <- result{val: v, err: err}
	}()

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-done:
		return r.val, r.err
	}
}
