// Package physiomath generates localized physiology reports with rendered
// mathematics.
//
// # Quick Start
//
// Create a generator, request a report, and close when done:
//
//	gen, err := physiomath.NewGenerator(physiomath.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gen.Close()
//
//	rep, err := gen.MineTheories(ctx, physiomath.Request{
//	    Topic:    "Neuro-Immune Interaction",
//	    Language: physiomath.French,
//	})
//	if err != nil {
//	    fmt.Println(physiomath.Localize(physiomath.French, err))
//	    return
//	}
//	os.WriteFile("report.html", []byte(rep.HTML), 0644)
//
// The report carries the raw model answer (rep.Markdown), the complete HTML
// document (rep.HTML), and the rendered body fragment (rep.Body).
//
// # Rendering Pipeline
//
// Model answers and local Markdown go through the same stages:
//
//  1. Line normalization and math protection ($$...$$ blocks, $...$ inline)
//  2. Markdown to HTML via Goldmark (GFM, syntax highlighting)
//  3. Formula rendering (KaTeX or MathML) in place of the placeholders
//  4. Layout, table of contents, and stylesheet injection
//
// Use Render for Markdown that does not come from the model, and ExportPDF
// to print any report through headless Chrome.
//
// # Errors
//
// Completion failures fall into three kinds, reported by ErrorKindOf:
// MissingCredential, ConnectionFailure, and GenerationFailure. Localize maps
// any error to the user-facing message in French or Arabic.
//
// # Sessions
//
// A Session allows one generation at a time and rejects overlapping
// requests with ErrBusy:
//
//	s := physiomath.NewSession(gen)
//	rep, err := s.GenerateArticle(ctx, physiomath.Request{Topic: "Hypertension"})
//
// # Parallel Processing
//
// For batch rendering, use GeneratorPool. Each generator owns its browser:
//
//	pool := physiomath.NewGeneratorPool(4, physiomath.WithMathEngine("mathml"))
//	defer pool.Close()
//
//	gen, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(gen)
//
// # Browser Requirements
//
// PDF export requires Chrome/Chromium. The go-rod library downloads a managed
// Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package physiomath
