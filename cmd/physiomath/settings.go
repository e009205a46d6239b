package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/physiomath/go-physiomath"
	"github.com/physiomath/go-physiomath/internal/config"
)

// settings is the merged configuration of one command run.
type settings struct {
	cfg     *config.Config
	env     *envConfig
	apiKey  string
	lang    physiomath.Language
	logger  *slog.Logger
	quiet   bool
	verbose bool
}

// loadSettings resolves config file, environment, and flags, in increasing
// priority, then validates the result.
func loadSettings(common commonFlags, rendering renderingFlags, env *Environment) (*settings, error) {
	ev := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Stderr, env.Environ())

	cfg := config.DefaultConfig()
	path := common.config
	if path == "" {
		path = ev.ConfigPath
	}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	applyEnvConfig(ev, cfg)
	mergeRenderingFlags(rendering, cfg)
	mergeCommonFlags(common, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lang, err := physiomath.ParseLanguage(cfg.Language)
	if err != nil {
		return nil, err
	}

	return &settings{
		cfg:     cfg,
		env:     ev,
		apiKey:  resolveAPIKey(env.Getenv, cfg),
		lang:    lang,
		logger:  newLogger(env.Stderr, cfg.Log, common.verbose),
		quiet:   common.quiet,
		verbose: common.verbose,
	}, nil
}

// mergeRenderingFlags applies explicitly set rendering flags over cfg.
func mergeRenderingFlags(f renderingFlags, cfg *config.Config) {
	if f.lang != "" {
		cfg.Language = f.lang
	}
	if f.mathEngine != "" {
		cfg.Math.Engine = f.mathEngine
	}
	if f.style != "" {
		cfg.CSS.Style = f.style
	}
	if f.assetPath != "" {
		cfg.Assets.BasePath = f.assetPath
	}
	if f.timeout != "" {
		cfg.Completion.Timeout = f.timeout
	}
	if f.pdf {
		cfg.Output.PDF = true
	}
	if f.toc {
		cfg.TOC.Enabled = true
	}
	if f.footer {
		cfg.Footer.Enabled = true
	}
}

func mergeCommonFlags(f commonFlags, cfg *config.Config) {
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
}

// newLogger builds the slog logger for cfg. Verbose runs log at info
// unless a level is configured. The default level is warn.
func newLogger(w io.Writer, cfg config.LogConfig, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	case "":
		if verbose {
			level = slog.LevelInfo
		}
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// generatorOptions turns the settings into generator options. extra comes last.
func (s *settings) generatorOptions(extra ...physiomath.Option) []physiomath.Option {
	cfg := s.cfg
	opts := []physiomath.Option{
		physiomath.WithTimeout(cfg.Timeout()),
		physiomath.WithAPIKey(s.apiKey),
		physiomath.WithModels(cfg.Models()),
		physiomath.WithMathEngine(cfg.Math.Engine),
		physiomath.WithFlagInlineErrors(cfg.Math.FlagInlineErrors),
		physiomath.WithMathEscapes(!cfg.Math.NoEscapes),
		physiomath.WithStyle(cfg.CSS.Style),
		physiomath.WithAssetPath(cfg.Assets.BasePath),
		physiomath.WithLogger(s.logger),
	}
	if cfg.Completion.Model != "" {
		opts = append(opts, physiomath.WithModel(cfg.Completion.Model))
	}
	if cfg.Completion.BaseURL != "" {
		opts = append(opts, physiomath.WithBaseURL(cfg.Completion.BaseURL))
	}
	if cfg.Completion.Temperature != nil {
		opts = append(opts, physiomath.WithTemperature(*cfg.Completion.Temperature))
	}
	if cfg.Math.StylesheetURL != "" {
		opts = append(opts, physiomath.WithStylesheetURL(cfg.Math.StylesheetURL))
	}
	if page := buildPageSettings(cfg); page != nil {
		opts = append(opts, physiomath.WithPage(page))
	}
	if cfg.Footer.Enabled {
		opts = append(opts, physiomath.WithFooter(&physiomath.Footer{
			Text:           cfg.Footer.Text,
			Date:           cfg.Footer.Date,
			ShowPageNumber: cfg.Footer.PageNumber,
		}))
	}
	if cfg.TOC.Enabled {
		opts = append(opts, physiomath.WithTOC(&physiomath.TOC{
			Title:    cfg.TOC.Title,
			MaxDepth: cfg.TOC.MaxDepth,
		}))
	}
	return append(opts, extra...)
}

// buildPageSettings returns nil when no page field is configured.
// Unset fields take the defaults.
func buildPageSettings(cfg *config.Config) *physiomath.PageSettings {
	p := cfg.Page
	if p.Size == "" && p.Orientation == "" && p.Margin == 0 {
		return nil
	}
	page := physiomath.DefaultPageSettings()
	if p.Size != "" {
		page.Size = p.Size
	}
	if p.Orientation != "" {
		page.Orientation = p.Orientation
	}
	if p.Margin != 0 {
		page.Margin = p.Margin
	}
	return page
}
