package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/physiomath/go-physiomath"
	"github.com/physiomath/go-physiomath/internal/metrics"
	"github.com/physiomath/go-physiomath/internal/server"
)

// runServe handles the serve command: the web interface until ctx ends.
func runServe(ctx context.Context, args []string, env *Environment) error {
	f := &serveFlags{}
	fs := buildServeFlagSet(f, env.Stderr)
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, fs.Args())
	}

	s, err := loadSettings(f.common, f.rendering, env)
	if err != nil {
		return err
	}
	if f.model != "" {
		s.cfg.Completion.Model = f.model
	}
	addr := s.cfg.Server.Addr
	if f.addr != "" {
		addr = f.addr
	}
	if addr == "" {
		addr = server.DefaultAddr
	}

	var (
		rec            metrics.Recorder = metrics.NoopRecorder{}
		metricsHandler http.Handler
	)
	if s.cfg.Server.Metrics && !f.noMetrics {
		prom := metrics.NewPrometheusRecorder(nil)
		rec, metricsHandler = prom, prom.Handler()
	}

	gen, err := physiomath.NewGenerator(s.generatorOptions(append([]physiomath.Option{physiomath.WithMetrics(rec)}, env.Options...)...)...)
	if err != nil {
		return err
	}
	defer func() { _ = gen.Close() }()

	srv, err := server.New(server.Options{
		Generator:      gen,
		DisablePDF:     f.noPDF,
		AssetPath:      s.cfg.Assets.BasePath,
		Language:       s.lang,
		Logger:         s.logger,
		Metrics:        rec,
		MetricsHandler: metricsHandler,
	})
	if err != nil {
		return err
	}

	if s.apiKey == "" {
		fmt.Fprintln(env.Stderr, "warning: no API key set (GEMINI_API_KEY), generation requests will fail")
	}
	if !s.quiet {
		fmt.Fprintf(env.Stderr, "Serving on http://%s (Ctrl+C to stop)\n", addr)
	}
	return srv.ListenAndServe(ctx, addr)
}
