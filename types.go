package physiomath

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/physiomath/go-physiomath/internal/completion"
	"github.com/physiomath/go-physiomath/internal/locale"
	"github.com/physiomath/go-physiomath/internal/mathseg"
	"github.com/physiomath/go-physiomath/internal/pipeline"
)

// Language is a report language.
type Language = locale.Language

// Supported languages.
const (
	French = locale.French
	Arabic = locale.Arabic
)

// ParseLanguage accepts "fr", "ar", or a BCP 47 tag of either language.
// Empty selects French.
func ParseLanguage(s string) (Language, error) {
	return locale.ParseLanguage(s)
}

// Model is a selectable generative model.
type Model = completion.Model

// Segment is one piece of scanned content: plain text or a formula.
type Segment = mathseg.Segment

// MathStats counts the formulas of a rendered report.
type MathStats = pipeline.MathStats

// Mode names what produced a report.
type Mode string

// Report modes.
const (
	ModeMine    Mode = "mine"
	ModeArticle Mode = "article"
	ModeRender  Mode = "render"
)

// titleKey is the string table key of the report title.
func (m Mode) titleKey() string {
	switch m {
	case ModeMine:
		return "theoreticalReport"
	case ModeArticle:
		return "scientificArticle"
	default:
		return "clinicalReport"
	}
}

// Request is one generation request.
type Request struct {
	Topic      string   // Mine: optional; Article: required
	Language   Language // Empty = French
	Model      string   // Empty = generator default
	Researcher bool     // Mine only: ask for assumptions and a refutation experiment
}

// RenderInput is existing Markdown to render without the model.
type RenderInput struct {
	Markdown  string   // Markdown with $..$ and $$..$$ formulas (required)
	Title     string   // Empty = localized default title
	Language  Language // Empty = French
	SourceDir string   // Resolves relative image and link paths
	Plain     bool     // Skip Markdown: prose stays verbatim, only formulas render
}

// Report is a rendered document.
type Report struct {
	ID        uuid.UUID
	Mode      Mode
	Title     string
	Topic     string // Trimmed request topic, empty for ModeRender
	Language  Language
	Model     string // Empty for ModeRender
	Markdown  string // Model output or render input
	HTML      string // Standalone HTML document
	Body      string // Rendered fragment, for embedding
	PDF       []byte // Filled by ExportPDF callers
	Math      MathStats
	CreatedAt time.Time
}

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns A4 portrait with default margins.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeA4,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}
	if _, ok := paperSizes[strings.ToLower(p.Size)]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}
	switch strings.ToLower(p.Orientation) {
	case OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}
	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}
	return nil
}

// Footer configures the report footer.
type Footer struct {
	Text           string // Empty = localized "generated with PhysioMath"
	Date           string // "auto", "auto:FORMAT", a literal, or empty
	ShowPageNumber bool   // PDF only
}

// TOC bounds.
const (
	MinTOCDepth     = 1
	MaxTOCDepth     = 6
	DefaultTOCDepth = 3
)

// TOC configures the table of contents.
type TOC struct {
	Title    string // Empty = localized "tableOfContents"
	MaxDepth int    // 0 = DefaultTOCDepth
}

// Validate checks the depth. Returns nil if t is nil (no TOC).
func (t *TOC) Validate() error {
	if t == nil || t.MaxDepth == 0 {
		return nil
	}
	if t.MaxDepth < MinTOCDepth || t.MaxDepth > MaxTOCDepth {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidTOCDepth, t.MaxDepth, MinTOCDepth, MaxTOCDepth)
	}
	return nil
}
