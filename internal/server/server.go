package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/physiomath/go-physiomath"
	"github.com/physiomath/go-physiomath/internal/assets"
	"github.com/physiomath/go-physiomath/internal/locale"
	"github.com/physiomath/go-physiomath/internal/logfields"
	"github.com/physiomath/go-physiomath/internal/metrics"
)

// Server defaults.
const (
	DefaultAddr           = "127.0.0.1:8080"
	DefaultReportCapacity = 64
	DefaultSessionTTL     = 12 * time.Hour
	maxRenderBody         = 1 << 20
	shutdownTimeout       = 10 * time.Second
)

// ErrNoGenerator is returned by New when Options.Generator is nil.
var ErrNoGenerator = errors.New("server requires a generator")

// PDFExporter prints a standalone HTML report.
type PDFExporter interface {
	ExportPDF(ctx context.Context, html string) ([]byte, error)
}

// Options configures a Server.
type Options struct {
	Generator      *physiomath.Generator
	PDF            PDFExporter     // nil = Generator
	DisablePDF     bool            // Hide PDF downloads
	AssetPath      string          // Empty = embedded templates and styles
	Language       locale.Language // Fallback when neither ?lang= nor Accept-Language decide
	Logger         *slog.Logger
	Metrics        metrics.Recorder
	MetricsHandler http.Handler // nil = no /metrics route
	ReportCapacity int
	SessionTTL     time.Duration
}

// Server serves the web interface. Each browser session owns one
// physiomath.Session, so it can run one generation at a time.
type Server struct {
	gen      *physiomath.Generator
	pdf      PDFExporter
	lang     locale.Language
	strings  *locale.Table
	index    *template.Template
	result   *template.Template
	appCSS   string
	sessions *sessionStore
	reports  *reportStore
	logger   *slog.Logger
	metrics  metrics.Recorder
	handler  http.Handler
}

// New parses the interface templates and wires the routes.
func New(opts Options) (*Server, error) {
	if opts.Generator == nil {
		return nil, ErrNoGenerator
	}

	lib, err := assets.Open(opts.AssetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", physiomath.ErrInvalidAssetPath, err)
	}
	set, err := lib.TemplateSet(assets.DefaultTemplateSetName)
	if err != nil {
		return nil, fmt.Errorf("loading template set: %w", err)
	}
	appCSS, err := lib.Style(assets.AppStyleName)
	if err != nil {
		return nil, fmt.Errorf("loading interface style: %w", err)
	}

	s := &Server{
		gen:     opts.Generator,
		pdf:     opts.PDF,
		lang:    opts.Language,
		strings: locale.Default(),
		appCSS:  appCSS,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	if s.index, err = template.New("index").Parse(set.Index); err != nil {
		return nil, fmt.Errorf("parsing index template: %w", err)
	}
	if s.result, err = template.New("result").Parse(set.Result); err != nil {
		return nil, fmt.Errorf("parsing result template: %w", err)
	}
	switch {
	case opts.DisablePDF:
		s.pdf = nil
	case s.pdf == nil:
		s.pdf = opts.Generator
	}
	if !s.lang.Valid() {
		s.lang = locale.DefaultLanguage
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.metrics == nil {
		s.metrics = metrics.NoopRecorder{}
	}

	capacity := opts.ReportCapacity
	if capacity <= 0 {
		capacity = DefaultReportCapacity
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	s.reports = newReportStore(capacity)
	s.sessions = newSessionStore(opts.Generator, ttl)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /mine", s.handleMine)
	mux.HandleFunc("POST /article", s.handleArticle)
	mux.HandleFunc("POST /api/render", s.handleRender)
	mux.HandleFunc("GET /reports/{file}", s.handleReport)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", opts.MetricsHandler)
	}
	s.handler = chain(s.logger, s.metrics, mux)
	return s, nil
}

// Handler returns the root handler with logging, recovery, and metrics.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Requests outlive ctx so Shutdown can drain running generations.
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("http shutdown", logfields.Error(err))
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}
