package physiomath

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/physiomath/go-physiomath/internal/fileutil"
	"github.com/physiomath/go-physiomath/internal/hints"
	"github.com/physiomath/go-physiomath/internal/process"
)

// pdfExporter turns a complete HTML report into PDF bytes.
type pdfExporter interface {
	ToPDF(ctx context.Context, htmlContent string, opts *pdfOptions) ([]byte, error)
	Close() error
}

// filePrinter prints an HTML file already on disk.
type filePrinter interface {
	PrintFile(ctx context.Context, path string, opts *pdfOptions) ([]byte, error)
	Close() error
}

var (
	_ pdfExporter = (*htmlExporter)(nil)
	_ filePrinter = (*chromePrinter)(nil)
)

// pdfOptions holds options for PDF generation.
type pdfOptions struct {
	Page        *PageSettings // nil = DefaultPageSettings
	PageNumbers bool
}

// launchSettings controls how the browser process starts.
type launchSettings struct {
	bin       string // empty: rod looks up or downloads Chromium
	noSandbox bool
}

// launchSettingsFrom reads ROD_BROWSER_BIN and the shared sandbox rule.
func launchSettingsFrom(e hints.Env) launchSettings {
	s := launchSettings{noSandbox: e.NoSandbox()}
	if e.Getenv != nil {
		s.bin = e.Getenv("ROD_BROWSER_BIN")
	}
	return s
}

// htmlExporter writes the report to a temp file so relative file:// assets
// resolve, then hands the file to a printer.
type htmlExporter struct {
	printer filePrinter
}

func newHTMLExporter(timeout time.Duration, launch launchSettings) *htmlExporter {
	return &htmlExporter{printer: newChromePrinter(timeout, launch)}
}

func (e *htmlExporter) ToPDF(ctx context.Context, htmlContent string, opts *pdfOptions) ([]byte, error) {
	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return e.printer.PrintFile(ctx, tmpPath, opts)
}

func (e *htmlExporter) Close() error {
	if e.printer == nil {
		return nil
	}
	return e.printer.Close()
}

// chromePrinter owns one headless Chrome, started on first use. Prints are
// serialized; a GeneratorPool gives parallelism.
type chromePrinter struct {
	mu       sync.Mutex
	launch   launchSettings
	timeout  time.Duration
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func newChromePrinter(timeout time.Duration, launch launchSettings) *chromePrinter {
	return &chromePrinter{timeout: timeout, launch: launch}
}

// start launches and connects the browser. Callers hold mu.
func (c *chromePrinter) start() error {
	if c.browser != nil {
		return nil
	}

	l := launcher.New().NoSandbox(c.launch.noSandbox)
	if c.launch.bin != "" {
		l = l.Bin(c.launch.bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		process.KillProcessGroup(l.PID())
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	c.launcher, c.browser = l, browser
	return nil
}

// Close shuts the browser down and kills its process group, so no
// renderer or GPU helper outlives the generator.
func (c *chromePrinter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.browser != nil {
		err = c.browser.Close()
		c.browser = nil
	}
	if c.launcher != nil {
		process.KillProcessGroup(c.launcher.PID())
		c.launcher.Kill()
		c.launcher = nil
	}
	return err
}

func (c *chromePrinter) PrintFile(ctx context.Context, path string, opts *pdfOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout, err := loadTimeout(ctx, c.timeout)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.start(); err != nil {
		return nil, err
	}

	page, err := c.browser.Page(proto.TargetCreateTarget{URL: "file://" + path})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	return printPage(ctx, page.Context(ctx), timeout, opts)
}

// loadTimeout is the time left for loading a page: the context deadline
// when there is one, otherwise fallback.
func loadTimeout(ctx context.Context, fallback time.Duration) (time.Duration, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return fallback, nil
	}
	left := time.Until(deadline)
	if left <= 0 {
		return 0, context.DeadlineExceeded
	}
	return left, nil
}

func printPage(ctx context.Context, page *rod.Page, timeout time.Duration, opts *pdfOptions) ([]byte, error) {
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stream, err := page.PDF(buildPDFOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return data, nil
}

// paperSizes maps page sizes to portrait width and height in inches.
var paperSizes = map[string][2]float64{
	PageSizeLetter: {8.5, 11},
	PageSizeA4:     {8.27, 11.69},
	PageSizeLegal:  {8.5, 14},
}

// footerReserve is the extra bottom margin for page numbers, in inches.
const footerReserve = 0.25

// pageNumberTemplate uses Chrome's pageNumber and totalPages classes.
const pageNumberTemplate = `<div style="font-size: 9px; color: #888; width: 100%; text-align: center;">` +
	`<span class="pageNumber"></span> / <span class="totalPages"></span></div>`

// buildPDFOptions maps page settings to Chrome print parameters. Unknown
// sizes print as A4.
func buildPDFOptions(opts *pdfOptions) *proto.PagePrintToPDF {
	var o pdfOptions
	if opts != nil {
		o = *opts
	}
	page := o.Page
	if page == nil {
		page = DefaultPageSettings()
	}

	size, ok := paperSizes[strings.ToLower(page.Size)]
	if !ok {
		size = paperSizes[PageSizeA4]
	}
	margin := page.Margin
	if margin == 0 {
		margin = DefaultMargin
	}
	bottom := margin
	if o.PageNumbers {
		bottom += footerReserve
	}

	params := &proto.PagePrintToPDF{
		Landscape:       strings.EqualFold(page.Orientation, OrientationLandscape),
		PaperWidth:      &size[0],
		PaperHeight:     &size[1],
		MarginTop:       &margin,
		MarginBottom:    &bottom,
		MarginLeft:      &margin,
		MarginRight:     &margin,
		PrintBackground: true,
	}
	if o.PageNumbers {
		params.DisplayHeaderFooter = true
		params.HeaderTemplate = "<span></span>"
		params.FooterTemplate = pageNumberTemplate
	}
	return params
}
