package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	logLevel  string
	logFormat string
	quiet     bool
	verbose   bool
}

// renderingFlags holds the flags that shape a report.
type renderingFlags struct {
	lang       string
	mathEngine string
	style      string
	assetPath  string
	timeout    string
	pdf        bool
	toc        bool
	footer     bool
}

// generateFlags holds flags for the mine and article commands.
type generateFlags struct {
	common     commonFlags
	rendering  renderingFlags
	model      string
	researcher bool
	output     string
	markdown   bool
}

// renderFlags holds flags for the render command.
type renderFlags struct {
	common    commonFlags
	rendering renderingFlags
	output    string
	workers   int
	title     string
	plain     bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common    commonFlags
	rendering renderingFlags
	model     string
	addr      string
	noPDF     bool
	noMetrics bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text, json")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// addRenderingFlags adds report rendering flags to a FlagSet.
// The --pdf flag is only offered by commands that write files.
func addRenderingFlags(fs *flag.FlagSet, f *renderingFlags, withPDF bool) {
	fs.StringVarP(&f.lang, "lang", "l", "", "report language: fr, ar")
	fs.StringVar(&f.mathEngine, "math-engine", "", "formula renderer: katex, mathml")
	fs.StringVar(&f.style, "style", "", "CSS style name or file path")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "generation timeout (e.g., 90s, 5m)")
	if withPDF {
		fs.BoolVar(&f.pdf, "pdf", false, "also export PDF (requires Chrome)")
	}
	fs.BoolVar(&f.toc, "toc", false, "add a table of contents")
	fs.BoolVar(&f.footer, "footer", false, "add the footer line")
}

func newFlagSet(name string, usage func(io.Writer), stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { usage(stderr) }
	return fs
}

// parse wraps flag errors with ErrUsage. flag.ErrHelp is returned as is.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.Usage()
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// buildGenerateFlagSet registers the mine/article flags.
func buildGenerateFlagSet(name string, f *generateFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet(name, func(w io.Writer) { printGenerateUsage(w, name) }, stderr)
	fs.StringVarP(&f.model, "model", "m", "", "model ID")
	fs.BoolVar(&f.researcher, "researcher", false, "ask for assumptions and a falsifiability test (mine)")
	fs.StringVarP(&f.output, "output", "o", "", "output .html file or directory")
	fs.BoolVar(&f.markdown, "markdown", false, "also save the raw Markdown answer")
	addCommonFlags(fs, &f.common)
	addRenderingFlags(fs, &f.rendering, true)
	return fs
}

// buildRenderFlagSet registers the render flags.
func buildRenderFlagSet(f *renderFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("render", printRenderUsage, stderr)
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVar(&f.title, "title", "", "report title (default: clinical report)")
	fs.BoolVar(&f.plain, "plain", false, "treat input as plain text, only formulas render")
	addCommonFlags(fs, &f.common)
	addRenderingFlags(fs, &f.rendering, true)
	return fs
}

// buildServeFlagSet registers the serve flags.
func buildServeFlagSet(f *serveFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("serve", printServeUsage, stderr)
	fs.StringVarP(&f.model, "model", "m", "", "default model ID")
	fs.StringVar(&f.addr, "addr", "", "listen address (default: 127.0.0.1:8080)")
	fs.BoolVar(&f.noPDF, "no-pdf", false, "disable PDF downloads")
	fs.BoolVar(&f.noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	addCommonFlags(fs, &f.common)
	addRenderingFlags(fs, &f.rendering, false)
	return fs
}
