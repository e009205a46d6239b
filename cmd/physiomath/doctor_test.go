package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/physiomath/go-physiomath/internal/config"
)

func fakeDeps(t *testing.T, vars map[string]string, chrome string) doctorDeps {
	t.Helper()
	dir := t.TempDir()
	return doctorDeps{
		getenv: mapEnv(vars),
		environ: func() []string {
			kvs := make([]string, 0, len(vars))
			for k, v := range vars {
				kvs = append(kvs, k+"="+v)
			}
			return kvs
		},
		lookPath: func() (string, bool) { return chrome, chrome != "" },
		stat: func(path string) (os.FileInfo, error) {
			if path == chrome && chrome != "" {
				return os.Stat(dir)
			}
			return nil, os.ErrNotExist
		},
		version: func(string) (string, error) { return "Chromium 140.0", nil },
		tempDir: func() string { return dir },
		loadConfig: func(name string) (*config.Config, error) {
			if name == "broken" {
				return nil, config.ErrInvalidValue
			}
			return config.DefaultConfig(), nil
		},
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctor - Diagnostic checks
// ---------------------------------------------------------------------------

func TestRunDoctor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		vars         map[string]string
		chrome       string
		wantStatus   string
		wantWarnings []string
	}{
		{
			name:       "ready",
			vars:       map[string]string{"GEMINI_API_KEY": "k"},
			chrome:     "/usr/bin/chromium",
			wantStatus: "ready",
		},
		{
			name:         "no browser",
			vars:         map[string]string{"API_KEY": "k"},
			wantStatus:   "warnings",
			wantWarnings: []string{"PDF export is unavailable"},
		},
		{
			name:         "no API key",
			chrome:       "/usr/bin/chromium",
			wantStatus:   "warnings",
			wantWarnings: []string{"No API key found"},
		},
		{
			name:         "container without sandbox flag",
			vars:         map[string]string{"GEMINI_API_KEY": "k", "PHYSIOMATH_CONTAINER": "1"},
			chrome:       "/usr/bin/chromium",
			wantStatus:   "warnings",
			wantWarnings: []string{"ROD_NO_SANDBOX"},
		},
		{
			name:       "container with sandbox disabled",
			vars:       map[string]string{"GEMINI_API_KEY": "k", "PHYSIOMATH_CONTAINER": "1", "ROD_NO_SANDBOX": "1"},
			chrome:     "/usr/bin/chromium",
			wantStatus: "ready",
		},
		{
			name:       "config loads",
			vars:       map[string]string{"GEMINI_API_KEY": "k", "PHYSIOMATH_CONFIG": "lab"},
			chrome:     "/usr/bin/chromium",
			wantStatus: "ready",
		},
		{
			name:       "config fails",
			vars:       map[string]string{"GEMINI_API_KEY": "k", "PHYSIOMATH_CONFIG": "broken"},
			chrome:     "/usr/bin/chromium",
			wantStatus: "errors",
		},
		{
			name:         "unknown variable",
			vars:         map[string]string{"GEMINI_API_KEY": "k", "PHYSIOMATH_MODLE": "x"},
			chrome:       "/usr/bin/chromium",
			wantStatus:   "warnings",
			wantWarnings: []string{"PHYSIOMATH_MODLE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := runDoctor(fakeDeps(t, tt.vars, tt.chrome))
			if r.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q (warnings %v, errors %v)", r.Status, tt.wantStatus, r.Warnings, r.Errors)
			}
			for _, want := range tt.wantWarnings {
				found := false
				for _, w := range r.Warnings {
					if strings.Contains(w, want) {
						found = true
					}
				}
				if !found {
					t.Errorf("no warning contains %q: %v", want, r.Warnings)
				}
			}
			if len(r.Math) != 2 {
				t.Errorf("math checks = %d, want 2", len(r.Math))
			}
			for _, m := range r.Math {
				if !m.OK {
					t.Errorf("engine %s failed: %s", m.Name, m.Error)
				}
			}
			if !r.System.TempWritable {
				t.Error("temp dir should be writable")
			}
		})
	}
}

func TestRunDoctor_KeyIsNeverReported(t *testing.T) {
	t.Parallel()

	r := runDoctor(fakeDeps(t, map[string]string{"GEMINI_API_KEY": "super-secret"}, ""))
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "super-secret") {
		t.Error("doctor output leaks the API key")
	}
	if r.Completion.KeySource != "GEMINI_API_KEY" {
		t.Errorf("KeySource = %q", r.Completion.KeySource)
	}
}

func TestRunDoctor_ChromeVersionFailure(t *testing.T) {
	t.Parallel()

	p := fakeDeps(t, map[string]string{"GEMINI_API_KEY": "k"}, "/opt/chrome")
	p.version = func(string) (string, error) { return "", errors.New("exec format error") }

	r := runDoctor(p)
	if !r.Chrome.Found || r.Chrome.Version != "" {
		t.Errorf("Chrome = %+v", r.Chrome)
	}
	if r.Status != "warnings" {
		t.Errorf("Status = %q, want warnings", r.Status)
	}
}

func TestRunDoctor_Config(t *testing.T) {
	t.Parallel()

	r := runDoctor(fakeDeps(t, map[string]string{"PHYSIOMATH_CONFIG": "broken", "PHYSIOMATH_FOO": "1"}, ""))
	if r.Config.Source != "broken" || r.Config.Loaded {
		t.Errorf("Config = %+v", r.Config)
	}
	if len(r.Config.Unknown) != 1 || r.Config.Unknown[0] != "PHYSIOMATH_FOO" {
		t.Errorf("Config.Unknown = %v", r.Config.Unknown)
	}

	var buf bytes.Buffer
	printDoctorResult(&buf, r)
	for _, want := range []string{"[ERROR] Cannot load broken", "Status: Not ready"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestPrintDoctorResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printDoctorResult(&buf, runDoctor(fakeDeps(t, nil, "")))

	out := buf.String()
	for _, want := range []string{
		"physiomath doctor",
		"[WARN] Not found (PDF export disabled)",
		"[WARN] API key: not set",
		"[OK] katex",
		"[OK] mathml",
		"[OK] Using defaults (PHYSIOMATH_CONFIG not set)",
		"Status: Ready with warnings",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
