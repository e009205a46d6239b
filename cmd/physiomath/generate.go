package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/physiomath/go-physiomath"
	"github.com/physiomath/go-physiomath/internal/dateutil"
	"github.com/physiomath/go-physiomath/internal/fileutil"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for file output.
var (
	ErrNoInput      = errors.New("no input specified")
	ErrReadMarkdown = errors.New("failed to read markdown file")
	ErrWriteOutput  = errors.New("failed to write output file")
)

// runGenerate handles the mine and article commands.
func runGenerate(ctx context.Context, mode physiomath.Mode, args []string, env *Environment) error {
	f := &generateFlags{}
	fs := buildGenerateFlagSet(string(mode), f, env.Stderr)
	if err := parse(fs, args); err != nil {
		return err
	}
	topic := strings.Join(fs.Args(), " ")
	if mode == physiomath.ModeArticle && strings.TrimSpace(topic) == "" {
		return fmt.Errorf("%w: article requires a topic", physiomath.ErrEmptyTopic)
	}

	s, err := loadSettings(f.common, f.rendering, env)
	if err != nil {
		return err
	}
	if f.model != "" {
		s.cfg.Completion.Model = f.model
	}
	if f.markdown {
		s.cfg.Output.Markdown = true
	}

	gen, err := physiomath.NewGenerator(s.generatorOptions(env.Options...)...)
	if err != nil {
		return err
	}
	defer func() { _ = gen.Close() }()

	req := physiomath.Request{
		Topic:      topic,
		Language:   s.lang,
		Model:      s.cfg.Completion.Model,
		Researcher: f.researcher,
	}

	start := env.Now()
	if !s.quiet {
		fmt.Fprintf(env.Stderr, "Generating %s (%s, %s)...\n", mode, s.lang, modelOrDefault(req.Model, gen))
	}

	var rep *physiomath.Report
	if mode == physiomath.ModeMine {
		rep, err = gen.MineTheories(ctx, req)
	} else {
		rep, err = gen.GenerateArticle(ctx, req)
	}
	if err != nil {
		return err
	}

	htmlPath, err := reportPath(f.output, s.cfg.Output.DefaultDir, rep, env.Now())
	if err != nil {
		return err
	}
	written, err := writeReport(ctx, gen, rep, htmlPath, s.cfg.Output.PDF, s.cfg.Output.Markdown)
	for _, p := range written {
		if !s.quiet {
			fmt.Fprintf(env.Stdout, "Created %s\n", p)
		}
	}
	if err != nil {
		return err
	}

	if s.verbose {
		fmt.Fprintf(env.Stderr, "%d inline and %d block formulas, %d failed (%v)\n",
			rep.Math.Inline, rep.Math.Block, rep.Math.Failed, env.Now().Sub(start).Round(time.Millisecond))
	}
	return nil
}

func modelOrDefault(model string, gen *physiomath.Generator) string {
	if model != "" {
		return model
	}
	return gen.DefaultModel()
}

// reportPath resolves the HTML output path. An -o ending in .html is used
// as is; otherwise it names a directory, falling back to defaultDir and
// then the current directory. Generated names read
// <mode>-<topic slug>-<YYYYMMDD-HHmm>.html.
func reportPath(output, defaultDir string, rep *physiomath.Report, now time.Time) (string, error) {
	if strings.HasSuffix(strings.ToLower(output), ".html") {
		return output, nil
	}
	dir := output
	if dir == "" {
		dir = defaultDir
	}
	if dir == "" {
		dir = "."
	}
	stamp, err := dateutil.Format("stamp", now, rep.Language)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s-%s-%s.html", rep.Mode, fileutil.Slug(rep.Topic, "report"), stamp)
	return filepath.Join(dir, name), nil
}

// writeReport writes the HTML document and, if asked, the PDF and the raw
// Markdown next to it. Returns the paths written so far, even on error.
func writeReport(ctx context.Context, gen *physiomath.Generator, rep *physiomath.Report, htmlPath string, pdf, markdown bool) ([]string, error) {
	if err := os.MkdirAll(filepath.Dir(htmlPath), dirPermissions); err != nil {
		return nil, fmt.Errorf("%w: creating output directory: %v", ErrWriteOutput, err)
	}

	var written []string
	if err := fileutil.WriteFileAtomic(htmlPath, []byte(rep.HTML), filePermissions); err != nil {
		return written, fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	written = append(written, htmlPath)

	base := strings.TrimSuffix(htmlPath, filepath.Ext(htmlPath))
	if markdown {
		mdPath := base + ".md"
		if err := fileutil.WriteFileAtomic(mdPath, []byte(rep.Markdown), filePermissions); err != nil {
			return written, fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		written = append(written, mdPath)
	}
	if pdf {
		data, err := gen.ExportPDF(ctx, rep.HTML)
		if err != nil {
			return written, err
		}
		pdfPath := base + ".pdf"
		if err := fileutil.WriteFileAtomic(pdfPath, data, filePermissions); err != nil {
			return written, fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		written = append(written, pdfPath)
	}
	return written, nil
}
