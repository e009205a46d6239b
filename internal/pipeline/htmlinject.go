package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"html/template"
	"regexp"
	"strconv"
	"strings"
)

// ErrDocumentRender indicates the report template failed to execute.
var ErrDocumentRender = errors.New("report template rendering failed")

// CSSInjector injects a stylesheet into an HTML document.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// CSSInjection injects CSS as a <style> block.
type CSSInjection struct{}

var _ CSSInjector = (*CSSInjection)(nil)

// InjectCSS inserts a <style> block before </head>, else right after
// <body>, else at the start of htmlContent.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if cssContent == "" || ctx.Err() != nil {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(cssContent) + "</style>"
	lower := strings.ToLower(htmlContent)

	if idx := strings.Index(lower, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}
	if pos := afterBodyTag(htmlContent, lower); pos != -1 {
		return htmlContent[:pos] + styleBlock + htmlContent[pos:]
	}
	return styleBlock + htmlContent
}

// sanitizeCSS escapes "</" so the stylesheet cannot close its <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// afterBodyTag returns the index just past the opening <body ...> tag, or -1.
func afterBodyTag(htmlContent, lower string) int {
	idx := strings.Index(lower, "<body")
	if idx == -1 {
		return -1
	}
	closeIdx := strings.Index(htmlContent[idx:], ">")
	if closeIdx == -1 {
		return -1
	}
	return idx + closeIdx + 1
}

// ---------------------------------------------------------------------------
// Table of contents
// ---------------------------------------------------------------------------

// TOCData configures the table of contents.
type TOCData struct {
	Title    string
	MinDepth int // lowest heading level listed, e.g. 2 skips the <h1>
	MaxDepth int
}

// TOCInjector prepends a table of contents to an HTML fragment.
type TOCInjector interface {
	InjectTOC(ctx context.Context, htmlContent string, data *TOCData) (string, error)
}

// TOCInjection builds a numbered table of contents from heading anchors.
type TOCInjection struct{}

var _ TOCInjector = (*TOCInjection)(nil)

type heading struct {
	level int
	id    string
	text  string
}

var (
	headingPattern = regexp.MustCompile(`(?is)<h([1-6])[^>]*\bid="([^"]*)"[^>]*>(.*?)</h[1-6]>`)
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
)

// InjectTOC inserts the table of contents at the start of the fragment, or
// right after <body> for full documents. Nil data or a document without
// anchored headings in range is returned unchanged.
func (t *TOCInjection) InjectTOC(ctx context.Context, htmlContent string, data *TOCData) (string, error) {
	if data == nil {
		return htmlContent, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	toc := buildTOC(extractHeadings(htmlContent, data.MinDepth, data.MaxDepth), data.Title)
	if toc == "" {
		return htmlContent, nil
	}

	if pos := afterBodyTag(htmlContent, strings.ToLower(htmlContent)); pos != -1 {
		return htmlContent[:pos] + toc + htmlContent[pos:], nil
	}
	return toc + htmlContent, nil
}

func extractHeadings(htmlContent string, minDepth, maxDepth int) []heading {
	var out []heading
	for _, m := range headingPattern.FindAllStringSubmatch(htmlContent, -1) {
		level, _ := strconv.Atoi(m[1])
		if level < minDepth || level > maxDepth {
			continue
		}
		text := html.UnescapeString(htmlTagPattern.ReplaceAllString(m[3], ""))
		out = append(out, heading{level: level, id: m[2], text: strings.TrimSpace(text)})
	}
	return out
}

// sectionNumbers hands out "1.", "1.1.", "2." style numbers. The first
// heading seen defines depth 1 and skipped levels nest one step only.
type sectionNumbers struct {
	counters [6]int
	base     int
	last     int
}

func (n *sectionNumbers) next(level int) (string, int) {
	if n.base == 0 {
		n.base = level
	}
	depth := max(level-n.base+1, 1)
	if n.last > 0 && depth > n.last+1 {
		depth = n.last + 1
	}
	for i := depth; i < len(n.counters); i++ {
		n.counters[i] = 0
	}
	n.counters[depth-1]++
	n.last = depth

	parts := make([]string, depth)
	for i := range depth {
		parts[i] = strconv.Itoa(n.counters[i])
	}
	return strings.Join(parts, ".") + ".", depth
}

func buildTOC(headings []heading, title string) string {
	if len(headings) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<nav class="toc">`)
	if title != "" {
		b.WriteString(`<h2 class="toc-title">` + html.EscapeString(title) + `</h2>`)
	}
	b.WriteString(`<div class="toc-list">`)

	var numbers sectionNumbers
	for _, h := range headings {
		num, depth := numbers.next(h.level)
		fmt.Fprintf(&b, `<div class="toc-item toc-depth-%d"><a href="#%s">%s %s</a></div>`,
			depth, html.EscapeString(h.id), num, html.EscapeString(h.text))
	}

	b.WriteString(`</div></nav>`)
	return b.String()
}

// ---------------------------------------------------------------------------
// Report document
// ---------------------------------------------------------------------------

// Page holds the report chrome around the rendered body.
type Page struct {
	Lang        string // BCP 47 tag written on <html lang>
	Dir         string // "ltr" or "rtl"
	Title       string
	Subtitle    string
	Badge       string // e.g. the generation mode label
	Footer      string
	Stylesheets []string // external stylesheet URLs, e.g. KaTeX fonts
	CSS         string   // inline CSS injected into <head>
}

// documentData is what the report template sees.
type documentData struct {
	Page
	Body template.HTML
}

// DocumentTemplate wraps a rendered body in the report page.
type DocumentTemplate struct {
	tmpl *template.Template
}

// NewDocumentTemplate parses an html/template report layout. The layout
// receives the Page fields and Body.
func NewDocumentTemplate(tmplContent string) (*DocumentTemplate, error) {
	tmpl, err := template.New("report").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing report template: %w", err)
	}
	return &DocumentTemplate{tmpl: tmpl}, nil
}

// Render executes the layout with body, which must already be safe HTML.
func (d *DocumentTemplate) Render(ctx context.Context, body string, page Page) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if page.Dir == "" {
		page.Dir = "ltr"
	}

	var buf bytes.Buffer
	// #nosec G203 -- body is produced by goldmark without raw HTML and the math engines.
	data := documentData{Page: page, Body: template.HTML(body)}
	if err := d.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDocumentRender, err)
	}
	return buf.String(), nil
}
