package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/physiomath/go-physiomath"
	"github.com/physiomath/go-physiomath/internal/config"
)

const testConfigYAML = `language: ar
math:
  engine: mathml
css:
  style: default
page:
  size: letter
log:
  level: debug
  format: json
`

// ---------------------------------------------------------------------------
// TestLoadSettings_Precedence - flags > env > config > defaults
// ---------------------------------------------------------------------------

func TestLoadSettings_Precedence(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "physiomath.yaml")
	writeFile(t, cfgPath, testConfigYAML)

	tests := []struct {
		name       string
		vars       map[string]string
		common     commonFlags
		rendering  renderingFlags
		wantLang   physiomath.Language
		wantEngine string
	}{
		{
			name:       "defaults",
			wantLang:   physiomath.French,
			wantEngine: "katex",
		},
		{
			name:       "config file from flag",
			common:     commonFlags{config: cfgPath},
			wantLang:   physiomath.Arabic,
			wantEngine: "mathml",
		},
		{
			name:       "config file from env",
			vars:       map[string]string{"PHYSIOMATH_CONFIG": cfgPath},
			wantLang:   physiomath.Arabic,
			wantEngine: "mathml",
		},
		{
			name:       "env over config",
			vars:       map[string]string{"PHYSIOMATH_LANG": "fr"},
			common:     commonFlags{config: cfgPath},
			wantLang:   physiomath.French,
			wantEngine: "mathml",
		},
		{
			name:       "flag over env",
			vars:       map[string]string{"PHYSIOMATH_LANG": "fr", "PHYSIOMATH_MATH_ENGINE": "katex"},
			common:     commonFlags{config: cfgPath},
			rendering:  renderingFlags{lang: "ar", mathEngine: "mathml"},
			wantLang:   physiomath.Arabic,
			wantEngine: "mathml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, tt.vars, nil)
			s, err := loadSettings(tt.common, tt.rendering, env.Environment)
			if err != nil {
				t.Fatalf("loadSettings: %v", err)
			}
			if s.lang != tt.wantLang {
				t.Errorf("lang = %q, want %q", s.lang, tt.wantLang)
			}
			if s.cfg.Math.Engine != tt.wantEngine {
				t.Errorf("engine = %q, want %q", s.cfg.Math.Engine, tt.wantEngine)
			}
		})
	}
}

func TestLoadSettings_Errors(t *testing.T) {
	t.Parallel()

	badYAML := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, badYAML, "language: [fr\n")

	tests := []struct {
		name      string
		vars      map[string]string
		common    commonFlags
		rendering renderingFlags
		wantCode  int
	}{
		{"missing config", nil, commonFlags{config: "./missing/physiomath.yaml"}, renderingFlags{}, ExitUsage},
		{"unparsable config", nil, commonFlags{config: badYAML}, renderingFlags{}, ExitUsage},
		{"bad language flag", nil, commonFlags{}, renderingFlags{lang: "en"}, ExitUsage},
		{"bad timeout env", map[string]string{"PHYSIOMATH_TIMEOUT": "soon"}, commonFlags{}, renderingFlags{}, ExitUsage},
		{"bad log level flag", nil, commonFlags{logLevel: "trace"}, renderingFlags{}, ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, tt.vars, nil)
			_, err := loadSettings(tt.common, tt.rendering, env.Environment)
			if err == nil {
				t.Fatal("expected error")
			}
			if code := exitCodeFor(err); code != tt.wantCode {
				t.Errorf("exitCodeFor(%v) = %d, want %d", err, code, tt.wantCode)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestNewLogger - Level and format selection
// ---------------------------------------------------------------------------

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cfg       config.LogConfig
		verbose   bool
		wantLevel slog.Level
		wantJSON  bool
	}{
		{"default warn", config.LogConfig{}, false, slog.LevelWarn, false},
		{"verbose info", config.LogConfig{}, true, slog.LevelInfo, false},
		{"configured level wins over verbose", config.LogConfig{Level: "error"}, true, slog.LevelError, false},
		{"debug json", config.LogConfig{Level: "DEBUG", Format: "json"}, false, slog.LevelDebug, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := newLogger(&buf, tt.cfg, tt.verbose)
			ctx := context.Background()

			if !logger.Enabled(ctx, tt.wantLevel) {
				t.Errorf("level %v should be enabled", tt.wantLevel)
			}
			if logger.Enabled(ctx, tt.wantLevel-1) {
				t.Errorf("level below %v should be disabled", tt.wantLevel)
			}

			logger.Log(ctx, tt.wantLevel, "message")
			if got := strings.HasPrefix(buf.String(), "{"); got != tt.wantJSON {
				t.Errorf("JSON output = %v, want %v (%q)", got, tt.wantJSON, buf.String())
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestBuildPageSettings - Partial page config
// ---------------------------------------------------------------------------

func TestBuildPageSettings(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	if got := buildPageSettings(cfg); got != nil {
		t.Errorf("empty page config should give nil, got %+v", got)
	}

	cfg.Page.Orientation = "landscape"
	got := buildPageSettings(cfg)
	want := physiomath.DefaultPageSettings()
	want.Orientation = "landscape"
	if got == nil || *got != *want {
		t.Errorf("buildPageSettings() = %+v, want %+v", got, want)
	}
}

func TestGeneratorOptions_BuildsGenerator(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "physiomath.yaml")
	writeFile(t, cfgPath, testConfigYAML+"footer:\n  enabled: true\n  date: auto:long\ntoc:\n  enabled: true\n  maxDepth: 2\n")

	env := newTestEnv(t, map[string]string{"GEMINI_API_KEY": "k"}, nil)
	s, err := loadSettings(commonFlags{config: cfgPath}, renderingFlags{}, env.Environment)
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	if s.apiKey != "k" {
		t.Errorf("apiKey = %q, want k", s.apiKey)
	}

	gen, err := physiomath.NewGenerator(s.generatorOptions(env.Options...)...)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	defer func() { _ = gen.Close() }()

	rep, err := gen.Render(context.Background(), physiomath.RenderInput{Markdown: "# A\n\n## B\n\n$x$", Language: s.lang})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if rep.Language != physiomath.Arabic {
		t.Errorf("Language = %q, want ar", rep.Language)
	}
	if rep.Math.Inline != 1 {
		t.Errorf("Math.Inline = %d, want 1", rep.Math.Inline)
	}
}

func TestGeneratorOptions_MathEscapes(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "physiomath.yaml")
	writeFile(t, cfgPath, "math:\n  engine: mathml\n  noEscapes: true\n")

	env := newTestEnv(t, nil, nil)
	s, err := loadSettings(commonFlags{config: cfgPath}, renderingFlags{}, env.Environment)
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	gen, err := physiomath.NewGenerator(s.generatorOptions(env.Options...)...)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	defer func() { _ = gen.Close() }()

	// With escapes off the backslash no longer protects the first $.
	segs := gen.Segments(`\$a$`)
	if len(segs) != 2 || segs[1].Body != "a" {
		t.Errorf("Segments = %v, want text then inline a", segs)
	}
}
