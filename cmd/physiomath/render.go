package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/physiomath/go-physiomath"
)

// Sentinel errors for file discovery.
var (
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrServiceInit        = errors.New("failed to initialize generator")
)

// fileToRender pairs a Markdown input with its HTML output.
type fileToRender struct {
	InputPath  string
	OutputPath string
}

// renderResult holds the outcome of a single file.
type renderResult struct {
	InputPath string
	Written   []string
	Failed    int // formulas that did not render
	Err       error
	Duration  time.Duration
}

// renderParams is what every worker needs besides its generator.
type renderParams struct {
	title string
	lang  physiomath.Language
	pdf   bool
	plain bool
}

// generatorPool abstracts the generator pool for testability.
type generatorPool interface {
	Acquire() (*physiomath.Generator, error)
	Release(*physiomath.Generator)
	Size() int
}

var _ generatorPool = (*physiomath.GeneratorPool)(nil)

// runRender handles the render command: offline Markdown to HTML (and PDF).
func runRender(ctx context.Context, args []string, env *Environment) error {
	f := &renderFlags{}
	fs := buildRenderFlagSet(f, env.Stderr)
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return ErrNoInput
	}

	s, err := loadSettings(f.common, f.rendering, env)
	if err != nil {
		return err
	}

	workers := f.workers
	if workers == 0 {
		workers = s.env.Workers
	}
	if err := validateWorkers(workers); err != nil {
		return err
	}

	outputDir := f.output
	if outputDir == "" {
		outputDir = s.cfg.Output.DefaultDir
	}
	var files []fileToRender
	for _, in := range fs.Args() {
		found, err := discoverFiles(in, outputDir)
		if err != nil {
			return err
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		if !s.quiet {
			fmt.Fprintln(env.Stderr, "No markdown files found")
		}
		return nil
	}
	if len(files) > 1 && strings.HasSuffix(strings.ToLower(outputDir), ".html") {
		return fmt.Errorf("%w: -o names a single file but %d inputs were found", ErrUsage, len(files))
	}

	size := min(physiomath.ResolvePoolSize(workers), len(files))
	pool := physiomath.NewGeneratorPool(size, s.generatorOptions(env.Options...)...)
	defer func() {
		if err := pool.Close(); err != nil {
			s.logger.Warn("closing generator pool", "error", err)
		}
	}()

	params := &renderParams{title: f.title, lang: s.lang, pdf: s.cfg.Output.PDF, plain: f.plain}
	results := renderBatch(ctx, pool, files, params)
	if failed := printResults(results, s.quiet, s.verbose, env); failed > 0 {
		if len(results) == 1 {
			return results[0].Err
		}
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

// renderBatch processes files concurrently using the generator pool.
func renderBatch(ctx context.Context, pool generatorPool, files []fileToRender, params *renderParams) []renderResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))
	results := make([]renderResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			gen, err := pool.Acquire()
			if err != nil {
				// Generator creation failed, mark remaining jobs as failed
				for idx := range jobs {
					results[idx] = renderResult{
						InputPath: files[idx].InputPath,
						Err:       fmt.Errorf("%w: %w", ErrServiceInit, err),
					}
				}
				return
			}
			defer pool.Release(gen)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = renderResult{InputPath: files[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = renderFile(ctx, gen, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// renderFile renders a single Markdown file and writes its outputs.
func renderFile(ctx context.Context, gen *physiomath.Generator, f fileToRender, params *renderParams) renderResult {
	start := time.Now()
	result := renderResult{InputPath: f.InputPath}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrReadMarkdown, err)
		result.Duration = time.Since(start)
		return result
	}

	rep, err := gen.Render(ctx, physiomath.RenderInput{
		Markdown:  string(content),
		Title:     params.title,
		Language:  params.lang,
		SourceDir: filepath.Dir(f.InputPath),
		Plain:     params.plain,
	})
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}
	result.Failed = rep.Math.Failed

	result.Written, result.Err = writeReport(ctx, gen, rep, f.OutputPath, params.pdf, false)
	result.Duration = time.Since(start)
	return result
}

// discoverFiles finds all Markdown files under inputPath.
func discoverFiles(inputPath, outputDir string) ([]fileToRender, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateMarkdownExtension(inputPath); err != nil {
			return nil, err
		}
		return []fileToRender{{InputPath: inputPath, OutputPath: resolveOutputPath(inputPath, outputDir, "")}}, nil
	}

	var files []fileToRender
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !isMarkdown(path) {
			return nil
		}
		files = append(files, fileToRender{InputPath: path, OutputPath: resolveOutputPath(path, outputDir, inputPath)})
		return nil
	})
	return files, err
}

// resolveOutputPath determines the HTML output path for a Markdown file.
// Directory inputs are mirrored under outputDir.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base+".html")
	}
	if strings.HasSuffix(strings.ToLower(outputDir), ".html") {
		return outputDir
	}
	if baseInputDir != "" {
		if rel, err := filepath.Rel(baseInputDir, inputPath); err == nil {
			return filepath.Join(outputDir, filepath.Dir(rel), base+".html")
		}
	}
	return filepath.Join(outputDir, base+".html")
}

func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

// validateMarkdownExtension checks that the file has a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	if !isMarkdown(path) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > physiomath.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, physiomath.MaxPoolSize)
	}
	return nil
}

// printResults outputs render results and returns the failure count.
func printResults(results []renderResult, quiet, verbose bool, env *Environment) int {
	var succeeded, failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			// A single failure is reported by the caller.
			if len(results) > 1 {
				fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			}
			continue
		}
		succeeded++
		if r.Failed > 0 {
			fmt.Fprintf(env.Stderr, "warning: %s: %d formula(s) could not be rendered\n", r.InputPath, r.Failed)
		}
		if quiet {
			continue
		}
		for _, p := range r.Written {
			if verbose {
				fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, p, r.Duration.Round(time.Millisecond))
			} else {
				fmt.Fprintf(env.Stdout, "Created %s\n", p)
			}
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", succeeded, failed)
	}
	return failed
}
