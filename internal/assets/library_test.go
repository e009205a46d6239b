package assets

import (
	"errors"
	"html/template"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// writeAsset creates base/rel with content, making parent directories.
func writeAsset(t *testing.T, base, rel, content string) {
	t.Helper()
	path := filepath.Join(base, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

// ---------------------------------------------------------------------------
// Builtin assets
// ---------------------------------------------------------------------------

func TestBuiltin_Styles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want []string
	}{
		{DefaultStyleName, []string{".math-block", "code.math-error", "nav.toc", `[dir="rtl"]`, "@media print"}},
		{AppStyleName, []string{".toast"}},
	}

	lib := Builtin()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			css, err := lib.Style(tt.name)
			if err != nil {
				t.Fatalf("Style(%q) error = %v", tt.name, err)
			}
			for _, want := range tt.want {
				if !strings.Contains(css, want) {
					t.Errorf("%s.css should contain %q", tt.name, want)
				}
			}
		})
	}
}

func TestBuiltin_DefaultTemplateSet(t *testing.T) {
	t.Parallel()

	ts, err := Builtin().TemplateSet(DefaultTemplateSetName)
	if err != nil {
		t.Fatalf("TemplateSet() error = %v", err)
	}
	if ts.Name != DefaultTemplateSetName {
		t.Errorf("Name = %q, want %q", ts.Name, DefaultTemplateSetName)
	}

	pages := []struct {
		name    string
		content string
		want    []string
	}{
		{"report", ts.Report, []string{"{{.Body}}", "{{.Title}}", "{{range .Stylesheets}}"}},
		{"index", ts.Index, []string{`action="/mine"`, `action="/article"`, `name="researcher"`, "{{range .Models}}"}},
		{"result", ts.Result, []string{"{{.Body}}", `index .T "close"`, "if .PDF"}},
	}
	for _, p := range pages {
		if _, err := template.New(p.name).Parse(p.content); err != nil {
			t.Errorf("%s does not parse: %v", p.name, err)
		}
		for _, want := range p.want {
			if !strings.Contains(p.content, want) {
				t.Errorf("%s template should contain %q", p.name, want)
			}
		}
	}
}

func TestBuiltin_Errors(t *testing.T) {
	t.Parallel()

	lib := Builtin()
	if lib.Custom() {
		t.Error("Builtin().Custom() = true")
	}

	if _, err := lib.Style("neon"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("Style(neon) error = %v, want ErrStyleNotFound", err)
	}
	if _, err := lib.Style("../go"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Style(../go) error = %v, want ErrInvalidName", err)
	}
	if _, err := lib.TemplateSet("minimal"); !errors.Is(err, ErrTemplateSetNotFound) {
		t.Errorf("TemplateSet(minimal) error = %v, want ErrTemplateSetNotFound", err)
	}
	if _, err := lib.TemplateSet(""); !errors.Is(err, ErrInvalidName) {
		t.Errorf("TemplateSet(\"\") error = %v, want ErrInvalidName", err)
	}
}

// ---------------------------------------------------------------------------
// Open
// ---------------------------------------------------------------------------

func TestOpen_BasePath(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "assets.txt")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		basePath   string
		wantErr    error
		wantCustom bool
	}{
		{name: "empty is builtin", basePath: ""},
		{name: "directory", basePath: t.TempDir(), wantCustom: true},
		{name: "missing directory", basePath: "/nonexistent/physiomath-assets", wantErr: ErrInvalidBasePath},
		{name: "regular file", basePath: file, wantErr: ErrInvalidBasePath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lib, err := Open(tt.basePath)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Open() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if lib.Custom() != tt.wantCustom {
				t.Errorf("Custom() = %v, want %v", lib.Custom(), tt.wantCustom)
			}
		})
	}
}

func TestOpen_StyleOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeAsset(t, dir, "styles/default.css", "body { color: teal; }")
	writeAsset(t, dir, "styles/print-only.css", "@page { size: A5; }")

	lib, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		style string
		want  string
	}{
		{"overridden", "default", "color: teal"},
		{"custom only", "print-only", "size: A5"},
		{"falls back to builtin", "app", ".toast"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			css, err := lib.Style(tt.style)
			if err != nil {
				t.Fatalf("Style(%q) error = %v", tt.style, err)
			}
			if !strings.Contains(css, tt.want) {
				t.Errorf("Style(%q) = %q, want it to contain %q", tt.style, css, tt.want)
			}
		})
	}
}

func TestOpen_TemplateSet(t *testing.T) {
	t.Parallel()

	t.Run("complete custom set", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		for _, file := range templateFiles {
			writeAsset(t, dir, "templates/default/"+file, "<!-- custom "+file+" -->")
		}
		lib, err := Open(dir)
		if err != nil {
			t.Fatal(err)
		}
		ts, err := lib.TemplateSet(DefaultTemplateSetName)
		if err != nil {
			t.Fatalf("TemplateSet() error = %v", err)
		}
		if ts.Report != "<!-- custom report.html -->" || ts.Result != "<!-- custom result.html -->" {
			t.Errorf("custom set not used: %+v", ts)
		}
	})

	t.Run("missing set falls back", func(t *testing.T) {
		t.Parallel()

		lib, err := Open(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		ts, err := lib.TemplateSet(DefaultTemplateSetName)
		if err != nil {
			t.Fatalf("TemplateSet() error = %v", err)
		}
		if !strings.Contains(ts.Index, `action="/mine"`) {
			t.Error("expected the builtin index page")
		}
	})

	t.Run("incomplete set does not fall back", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeAsset(t, dir, "templates/default/report.html", "<html></html>")
		lib, err := Open(dir)
		if err != nil {
			t.Fatal(err)
		}
		_, err = lib.TemplateSet(DefaultTemplateSetName)
		if !errors.Is(err, ErrIncompleteTemplateSet) {
			t.Fatalf("TemplateSet() error = %v, want ErrIncompleteTemplateSet", err)
		}
		for _, file := range []string{IndexTemplateFile, ResultTemplateFile} {
			if !strings.Contains(err.Error(), file) {
				t.Errorf("error %q should name %s", err, file)
			}
		}
	})
}

func TestOpen_SymlinkEscape(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	outside := filepath.Join(t.TempDir(), "secret.css")
	if err := os.WriteFile(outside, []byte("secret"), 0o600); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "styles"), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(dir, "styles", "leak.css")); err != nil {
		t.Fatal(err)
	}

	lib, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	css, err := lib.Style("leak")
	if !errors.Is(err, ErrAssetRead) {
		t.Errorf("Style(leak) = %q, %v, want ErrAssetRead", css, err)
	}
}

// ---------------------------------------------------------------------------
// ResolveStyle
// ---------------------------------------------------------------------------

func TestResolveStyle(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.css")
	if err := os.WriteFile(path, []byte("h2 { color: navy; }"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		option  string
		want    string
		wantErr error
	}{
		{name: "empty selects default", option: "", want: ".math-block"},
		{name: "name", option: "app", want: ".toast"},
		{name: "file path", option: path, want: "color: navy"},
		{name: "css text", option: "h1 { margin: 0 }", want: "h1 { margin: 0 }"},
		{name: "css text with url", option: "body { background: url(/img/grid.png) }", want: "url(/img/grid.png)"},
		{name: "unknown name", option: "neon", wantErr: ErrStyleNotFound},
		{name: "missing file", option: "./missing/physiomath.css", wantErr: os.ErrNotExist},
	}

	lib := Builtin()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			css, err := lib.ResolveStyle(tt.option)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ResolveStyle(%q) error = %v, want %v", tt.option, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveStyle(%q) error = %v", tt.option, err)
			}
			if !strings.Contains(css, tt.want) {
				t.Errorf("ResolveStyle(%q) missing %q", tt.option, tt.want)
			}
		})
	}
}
