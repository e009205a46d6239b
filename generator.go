package physiomath

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/physiomath/go-physiomath/internal/assets"
	"github.com/physiomath/go-physiomath/internal/completion"
	"github.com/physiomath/go-physiomath/internal/dateutil"
	"github.com/physiomath/go-physiomath/internal/hints"
	"github.com/physiomath/go-physiomath/internal/locale"
	"github.com/physiomath/go-physiomath/internal/logfields"
	"github.com/physiomath/go-physiomath/internal/mathrender"
	"github.com/physiomath/go-physiomath/internal/mathseg"
	"github.com/physiomath/go-physiomath/internal/metrics"
	"github.com/physiomath/go-physiomath/internal/pipeline"
	"github.com/physiomath/go-physiomath/internal/prompt"
)

// Generator produces reports: it builds prompts, asks the model, and renders
// the Markdown answer with its formulas to HTML (and PDF on request).
// A Generator is safe for concurrent use. Close it to release the browser.
type Generator struct {
	cfg       generatorConfig
	completer completion.Completer
	pipeline  *pipeline.Pipeline
	strings   *locale.Table
	css       string
	pdf       pdfExporter
	logger    *slog.Logger
	metrics   metrics.Recorder
	now       func() time.Time
}

// NewGenerator creates a Generator with default configuration.
// Returns an error if an option is invalid or the assets cannot be loaded.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		cfg: generatorConfig{
			timeout:       DefaultTimeout,
			models:        completion.DefaultModels(),
			engine:        mathrender.DefaultEngine,
			stylesheetURL: DefaultKaTeXStylesheet,
		},
		strings: locale.Default(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(g)
	}

	g.logger = g.cfg.logger
	if g.logger == nil {
		g.logger = slog.New(slog.DiscardHandler)
	}
	g.metrics = g.cfg.metrics
	if g.metrics == nil {
		g.metrics = metrics.NoopRecorder{}
	}

	if err := g.validateConfig(); err != nil {
		return nil, err
	}

	lib, err := assets.Open(g.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	if g.css, err = lib.ResolveStyle(g.cfg.style); err != nil {
		return nil, fmt.Errorf("loading style %q: %w", g.cfg.style, err)
	}
	set, err := lib.TemplateSet(assets.DefaultTemplateSetName)
	if err != nil {
		return nil, fmt.Errorf("loading template set: %w", err)
	}
	layout, err := pipeline.NewDocumentTemplate(set.Report)
	if err != nil {
		return nil, fmt.Errorf("initializing report template: %w", err)
	}

	engine, err := mathrender.NewEngine(g.cfg.engine)
	if err != nil {
		return nil, err
	}
	renderer := mathrender.New(engine,
		mathrender.WithFlagInlineErrors(g.cfg.flagInline),
		mathrender.WithScanner(mathseg.Scanner{Escapes: !g.cfg.noEscapes}),
		mathrender.WithObserver(g.metrics),
		mathrender.WithLogger(g.logger))
	g.pipeline = pipeline.New(renderer, pipeline.WithDocumentTemplate(layout))

	var c completion.Completer
	if g.cfg.completer != nil {
		c = completion.Func(g.cfg.completer.Complete)
	} else {
		gopts := []completion.GeminiOption{completion.WithGeminiLogger(g.logger)}
		if g.cfg.baseURL != "" {
			gopts = append(gopts, completion.WithBaseURL(g.cfg.baseURL))
		}
		if g.cfg.temperature != nil {
			gopts = append(gopts, completion.WithTemperature(*g.cfg.temperature))
		}
		c = completion.NewGemini(g.cfg.apiKey, gopts...)
	}
	g.completer = completion.Instrument(c, g.metrics, g.logger)

	// Create PDF exporter if not injected (e.g., by tests)
	if g.pdf == nil {
		g.pdf = newHTMLExporter(g.cfg.timeout, launchSettingsFrom(hints.OSEnv(os.Getenv)))
	}

	return g, nil
}

// validateConfig checks option values that only fail at use time otherwise.
func (g *Generator) validateConfig() error {
	if _, err := completion.LookupModel(g.cfg.models, g.cfg.model); err != nil {
		return err
	}
	if err := g.cfg.page.Validate(); err != nil {
		return err
	}
	if err := g.cfg.toc.Validate(); err != nil {
		return err
	}
	if g.cfg.footer != nil {
		if _, err := dateutil.ResolveDate(g.cfg.footer.Date, time.Time{}, French); err != nil {
			return err
		}
	}
	return nil
}

// Models returns the selectable models.
func (g *Generator) Models() []Model {
	return slices.Clone(g.cfg.models)
}

// DefaultModel returns the model used when a Request names none.
func (g *Generator) DefaultModel() string {
	m, _ := completion.LookupModel(g.cfg.models, g.cfg.model)
	return m.ID
}

// CSS returns the resolved report stylesheet.
func (g *Generator) CSS() string {
	return g.css
}

// MineTheories asks the model for undiscovered theories on req.Topic (the
// default topic when blank) and renders the answer.
func (g *Generator) MineTheories(ctx context.Context, req Request) (*Report, error) {
	return g.generate(ctx, ModeMine, req, func(lang Language) (string, error) {
		return prompt.Mine(req.Topic, lang, req.Researcher)
	})
}

// GenerateArticle asks the model for a scientific article on req.Topic,
// which is required, analysed against the theorem table.
func (g *Generator) GenerateArticle(ctx context.Context, req Request) (*Report, error) {
	return g.generate(ctx, ModeArticle, req, func(lang Language) (string, error) {
		return prompt.Article(req.Topic, lang, g.strings.Theorems())
	})
}

// generate runs one completion and renders its answer.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (g *Generator) generate(ctx context.Context, mode Mode, req Request, build func(Language) (string, error)) (rep *Report, err error) {
	start := g.now()
	lang := French
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
		g.observe(ctx, mode, lang, rep, err, start)
	}()

	if lang, err = resolveLanguage(req.Language); err != nil {
		return nil, err
	}
	model, err := completion.LookupModel(g.cfg.models, g.modelID(req.Model))
	if err != nil {
		return nil, err
	}
	text, err := build(lang)
	if err != nil {
		return nil, err
	}

	cctx, cancel := context.WithTimeout(ctx, g.cfg.timeout)
	defer cancel()
	markdown, err := g.completer.Complete(cctx, model.ID, text)
	if err != nil {
		return nil, completion.Classify(err)
	}
	if strings.TrimSpace(markdown) == "" {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailure, ErrEmptyResponse)
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" && mode == ModeMine {
		topic = prompt.DefaultTopic
	}
	rep = g.newReport(mode, lang, topic)
	rep.Model = model.ID
	rep.Markdown = markdown
	if err := g.render(ctx, rep, pipeline.Input{}); err != nil {
		return nil, err
	}
	return rep, nil
}

// Render converts existing Markdown into a report without calling the model.
func (g *Generator) Render(ctx context.Context, in RenderInput) (rep *Report, err error) {
	start := g.now()
	lang := French
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
		g.observe(ctx, ModeRender, lang, rep, err, start)
	}()

	if strings.TrimSpace(in.Markdown) == "" {
		return nil, ErrEmptyContent
	}
	if lang, err = resolveLanguage(in.Language); err != nil {
		return nil, err
	}

	rep = g.newReport(ModeRender, lang, "")
	if in.Title != "" {
		rep.Title = in.Title
	}
	rep.Markdown = in.Markdown
	if err := g.render(ctx, rep, pipeline.Input{
		Links: pipeline.LinkOptions{SourceDir: in.SourceDir},
		Plain: in.Plain,
	}); err != nil {
		return nil, err
	}
	return rep, nil
}

// Segments splits content into plain text and formulas, as rendering does.
func (g *Generator) Segments(content string) []Segment {
	return slices.Collect(g.pipeline.Renderer().Segments(content))
}

// ExportPDF prints a standalone HTML document (Report.HTML) to PDF with
// headless Chrome.
func (g *Generator) ExportPDF(ctx context.Context, html string) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, ErrEmptyContent
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.timeout)
	defer cancel()

	start := g.now()
	pdf, err := g.pdf.ToPDF(ctx, html, &pdfOptions{
		Page:        g.cfg.page,
		PageNumbers: g.cfg.footer != nil && g.cfg.footer.ShowPageNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("converting to PDF: %w", err)
	}
	g.logger.Debug("pdf exported",
		logfields.Bytes(len(pdf)),
		logfields.Duration(g.now().Sub(start)))
	return pdf, nil
}

// Close releases resources (headless Chrome browser).
func (g *Generator) Close() error {
	if g.pdf != nil {
		return g.pdf.Close()
	}
	return nil
}

func (g *Generator) newReport(mode Mode, lang Language, topic string) *Report {
	return &Report{
		ID:        uuid.New(),
		Mode:      mode,
		Title:     g.strings.Text(lang, mode.titleKey()),
		Topic:     topic,
		Language:  lang,
		CreatedAt: g.now(),
	}
}

// render fills rep.HTML, rep.Body and rep.Math from rep.Markdown. in
// carries the source directory and plain mode; the rest is filled here.
func (g *Generator) render(ctx context.Context, rep *Report, in pipeline.Input) error {
	page := pipeline.Page{
		Lang:        string(rep.Language),
		Dir:         rep.Language.Dir(),
		Title:       rep.Title,
		Subtitle:    rep.Topic,
		CSS:         g.css,
		Stylesheets: g.Stylesheets(),
	}
	if rep.Mode != ModeRender {
		page.Badge = g.strings.Text(rep.Language, "generatorVersion")
	}
	footer, err := g.footerText(rep.Language, rep.CreatedAt)
	if err != nil {
		return err
	}
	page.Footer = footer

	in.Markdown = rep.Markdown
	in.Links.ExternalTargets = true
	in.TOC = g.tocData(rep.Language)
	doc, frag, err := g.pipeline.Document(ctx, in, page)
	if err != nil {
		return err
	}

	rep.HTML = doc
	rep.Body = frag.HTML
	rep.Math = frag.Math
	return nil
}

// Stylesheets returns the external stylesheets a rendered body needs.
func (g *Generator) Stylesheets() []string {
	if g.cfg.stylesheetURL == "" || g.pipeline.Renderer().Engine().Name() != mathrender.EngineKaTeX {
		return nil
	}
	return []string{g.cfg.stylesheetURL}
}

func (g *Generator) footerText(lang Language, created time.Time) (string, error) {
	f := g.cfg.footer
	if f == nil {
		return "", nil
	}
	text := f.Text
	if text == "" {
		text = g.strings.Text(lang, "generatedWith") + " " + g.strings.Text(lang, "appTitle")
	}
	date, err := dateutil.ResolveDate(f.Date, created, lang)
	if err != nil {
		return "", err
	}
	if date != "" {
		text += " · " + date
	}
	return text, nil
}

func (g *Generator) tocData(lang Language) *pipeline.TOCData {
	t := g.cfg.toc
	if t == nil {
		return nil
	}
	title := t.Title
	if title == "" {
		title = g.strings.Text(lang, "tableOfContents")
	}
	depth := t.MaxDepth
	if depth == 0 {
		depth = DefaultTOCDepth
	}
	return &pipeline.TOCData{Title: title, MinDepth: 2, MaxDepth: depth}
}

func (g *Generator) modelID(requested string) string {
	if strings.TrimSpace(requested) != "" {
		return requested
	}
	return g.cfg.model
}

// observe logs and records one report attempt.
func (g *Generator) observe(ctx context.Context, mode Mode, lang Language, rep *Report, err error, start time.Time) {
	elapsed := g.now().Sub(start)
	outcome := reportOutcome(err)
	g.metrics.ObserveReport(string(mode), string(lang), outcome, elapsed)

	attrs := []slog.Attr{
		logfields.Mode(string(mode)),
		logfields.Language(string(lang)),
		logfields.Duration(elapsed),
	}
	if err != nil {
		attrs = append(attrs, logfields.ErrorKind(outcome), logfields.Error(err))
		g.logger.LogAttrs(ctx, slog.LevelWarn, "report failed", attrs...)
		return
	}
	attrs = append(attrs,
		logfields.ReportID(rep.ID.String()),
		logfields.Model(rep.Model),
		slog.Int("formulas", rep.Math.Formulas()),
		slog.Int("failed_formulas", rep.Math.Failed))
	g.logger.LogAttrs(ctx, slog.LevelInfo, "report ready", attrs...)
}

// reportOutcome names the result of a report for metrics:
// "ok", a completion outcome, or "invalid" for rejected input.
func reportOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case ErrorKindOf(err) != KindUnknown, errors.Is(err, context.Canceled):
		return completion.Outcome(err)
	default:
		return "invalid"
	}
}

// resolveLanguage defaults to French and normalizes tags like "ar-DZ".
func resolveLanguage(l Language) (Language, error) {
	return locale.ParseLanguage(string(l))
}
