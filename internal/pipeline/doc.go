// Package pipeline turns generated Markdown with embedded TeX into a report
// HTML document.
//
// Stages, in order:
//   - line ending normalization
//   - math protection: formulas are segmented and rendered, then replaced by
//     Private Use Area placeholders so Goldmark never sees TeX
//   - Markdown preprocessing (==highlight== syntax, blank line compression)
//   - Markdown to HTML conversion via Goldmark
//   - link resolution (relative paths, external link attributes)
//   - math restoration and highlight finalization
//   - table of contents injection for articles
//   - report templating and CSS injection
//
// PDF export is handled by the root physiomath package with headless Chrome.
package pipeline
