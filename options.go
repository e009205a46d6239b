package physiomath

import (
	"context"
	"log/slog"
	"time"

	"github.com/physiomath/go-physiomath/internal/metrics"
)

// Completer turns a prompt into generated text. The default is the Gemini
// client; tests and alternative backends inject their own with
// WithCompleter.
type Completer interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, model, prompt string) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, model, prompt string) (string, error) {
	return f(ctx, model, prompt)
}

// Option configures a Generator.
type Option func(*Generator)

// DefaultTimeout bounds one completion call and one PDF export.
const DefaultTimeout = 2 * time.Minute

// DefaultKaTeXStylesheet is linked from reports rendered with the KaTeX engine.
const DefaultKaTeXStylesheet = "https://cdn.jsdelivr.net/npm/katex@0.16.8/dist/katex.min.css"

// generatorConfig holds the options of a Generator.
type generatorConfig struct {
	timeout       time.Duration
	apiKey        string
	baseURL       string
	temperature   *float32
	completer     Completer
	models        []Model
	model         string
	engine        string
	flagInline    bool
	noEscapes     bool
	stylesheetURL string
	style         string
	assetPath     string
	page          *PageSettings
	footer        *Footer
	toc           *TOC
	logger        *slog.Logger
	metrics       metrics.Recorder
}

// WithTimeout bounds each completion call and PDF export.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("physiomath: WithTimeout duration must be positive")
	}
	return func(g *Generator) {
		g.cfg.timeout = d
	}
}

// WithCompleter replaces the Gemini client.
func WithCompleter(c Completer) Option {
	return func(g *Generator) {
		g.cfg.completer = c
	}
}

// WithAPIKey sets the Gemini API key. An empty key fails every generation
// with ErrMissingCredential.
func WithAPIKey(key string) Option {
	return func(g *Generator) {
		g.cfg.apiKey = key
	}
}

// WithBaseURL points the Gemini client at another endpoint, e.g. a proxy.
func WithBaseURL(u string) Option {
	return func(g *Generator) {
		g.cfg.baseURL = u
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(g *Generator) {
		g.cfg.temperature = &t
	}
}

// WithModels sets the selectable models. The first one is the default
// unless WithModel names another.
func WithModels(models []Model) Option {
	return func(g *Generator) {
		g.cfg.models = models
	}
}

// WithModel sets the model used when a Request names none.
func WithModel(id string) Option {
	return func(g *Generator) {
		g.cfg.model = id
	}
}

// WithMathEngine selects the LaTeX engine ("katex" or "mathml").
func WithMathEngine(name string) Option {
	return func(g *Generator) {
		g.cfg.engine = name
	}
}

// WithFlagInlineErrors marks inline formulas that fail to render, like
// block formulas.
func WithFlagInlineErrors(flag bool) Option {
	return func(g *Generator) {
		g.cfg.flagInline = flag
	}
}

// WithMathEscapes controls backslash escapes in prose: when on (the
// default), "\$5" is text rather than a formula opener.
func WithMathEscapes(on bool) Option {
	return func(g *Generator) {
		g.cfg.noEscapes = !on
	}
}

// WithStylesheetURL overrides the KaTeX stylesheet link. An empty URL
// removes it.
func WithStylesheetURL(u string) Option {
	return func(g *Generator) {
		g.cfg.stylesheetURL = u
	}
}

// WithStyle sets the report CSS: a style name, a path to a .css file, or
// CSS content.
func WithStyle(style string) Option {
	return func(g *Generator) {
		g.cfg.style = style
	}
}

// WithAssetPath sets a directory whose styles/ and templates/ override the
// embedded assets.
func WithAssetPath(path string) Option {
	return func(g *Generator) {
		g.cfg.assetPath = path
	}
}

// WithPage sets the PDF page settings.
func WithPage(p *PageSettings) Option {
	return func(g *Generator) {
		g.cfg.page = p
	}
}

// WithFooter enables the report footer.
func WithFooter(f *Footer) Option {
	return func(g *Generator) {
		g.cfg.footer = f
	}
}

// WithTOC enables the table of contents.
func WithTOC(t *TOC) Option {
	return func(g *Generator) {
		g.cfg.toc = t
	}
}

// WithLogger sets the structured logger. Nil discards logs.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		g.cfg.logger = l
	}
}

// WithMetrics sets the metrics recorder. Nil disables metrics.
func WithMetrics(r metrics.Recorder) Option {
	return func(g *Generator) {
		g.cfg.metrics = r
	}
}

// withPDFExporter replaces the headless Chrome exporter (tests).
func withPDFExporter(p pdfExporter) Option {
	return func(g *Generator) {
		g.pdf = p
	}
}
