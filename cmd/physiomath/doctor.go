package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/physiomath/go-physiomath/internal/config"
	"github.com/physiomath/go-physiomath/internal/hints"
	"github.com/physiomath/go-physiomath/internal/mathrender"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status     string         `json:"status"` // "ready", "warnings", "errors"
	Chrome     chromeInfo     `json:"chrome"`
	Completion completionInfo `json:"completion"`
	Math       []engineInfo   `json:"math"`
	Config     configInfo     `json:"config"`
	Env        envInfo        `json:"environment"`
	System     systemInfo     `json:"system"`
	Warnings   []string       `json:"warnings,omitempty"`
	Errors     []string       `json:"errors,omitempty"`
}

type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// completionInfo reports where the API key comes from, never the key.
type completionInfo struct {
	APIKey    bool   `json:"api_key"`
	KeySource string `json:"key_source,omitempty"`
}

// engineInfo is the smoke test result of one math engine.
type engineInfo struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// configInfo describes the config file PHYSIOMATH_CONFIG selects, if any.
type configInfo struct {
	Source  string   `json:"source"` // file name or "defaults"
	Loaded  bool     `json:"loaded"`
	Unknown []string `json:"unknown_env,omitempty"`
}

type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// doctorDeps isolates the host lookups for tests.
type doctorDeps struct {
	getenv     func(string) string
	environ    func() []string
	lookPath   func() (string, bool)
	stat       func(string) (os.FileInfo, error)
	version    func(path string) (string, error)
	tempDir    func() string
	loadConfig func(nameOrPath string) (*config.Config, error)
}

func defaultDeps(env *Environment) doctorDeps {
	return doctorDeps{
		getenv:   env.Getenv,
		environ:  env.Environ,
		lookPath: launcher.LookPath,
		stat:     os.Stat,
		version: func(path string) (string, error) {
			out, err := exec.Command(path, "--version").Output() // #nosec G204 -- browser path from rod or ROD_BROWSER_BIN
			return strings.TrimSpace(string(out)), err
		},
		tempDir:    os.TempDir,
		loadConfig: config.LoadConfig,
	}
}

// hintEnv exposes the doctor environment to the hints package.
func (p doctorDeps) hintEnv() hints.Env {
	return hints.Env{
		Getenv: p.getenv,
		Exists: func(path string) bool {
			_, err := p.stat(path)
			return err == nil
		},
	}
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Warnings still exit 0; only errors exit 1.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		switch arg {
		case "--json":
			jsonOutput = true
		case "-h", "--help":
			printDoctorUsage(env.Stdout)
			return ExitSuccess
		default:
			fmt.Fprintf(env.Stderr, "error: unknown doctor argument %q\n", arg)
			return ExitUsage
		}
	}

	result := runDoctor(defaultDeps(env))

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

func runDoctor(p doctorDeps) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  p.getenv("ROD_NO_SANDBOX"),
			BrowserBin: p.getenv("ROD_BROWSER_BIN"),
		},
	}

	checkChrome(result, p)
	checkCompletion(result, p)
	checkMath(result)
	checkConfig(result, p)
	checkEnvironment(result, p)
	checkSystem(result, p)

	switch {
	case len(result.Errors) > 0:
		result.Status = "errors"
	case len(result.Warnings) > 0:
		result.Status = "warnings"
	}
	return result
}

func (r *doctorResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *doctorResult) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// checkChrome detects Chrome/Chromium. Only PDF export needs it, so a
// missing browser is a warning.
func checkChrome(result *doctorResult, p doctorDeps) {
	chromePath := result.Env.BrowserBin
	if chromePath == "" {
		var found bool
		if chromePath, found = p.lookPath(); !found {
			result.warn("Chrome/Chromium not found, PDF export is unavailable. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}
	if _, err := p.stat(chromePath); err != nil {
		result.warn("Chrome not found at %s", chromePath)
		return
	}

	result.Chrome = chromeInfo{Found: true, Path: chromePath, Sandbox: !p.hintEnv().NoSandbox()}
	if v, err := p.version(chromePath); err == nil {
		result.Chrome.Version = v
	} else {
		result.warn("Could not get Chrome version: %v", err)
	}
}

// checkCompletion reports whether mine and article can authenticate.
func checkCompletion(result *doctorResult, p doctorDeps) {
	for _, name := range []string{envGeminiKey, envAPIKey} {
		if strings.TrimSpace(p.getenv(name)) != "" {
			result.Completion = completionInfo{APIKey: true, KeySource: name}
			return
		}
	}
	result.warn("No API key found. Set GEMINI_API_KEY (or API_KEY) to use mine and article")
}

// checkMath renders a sample formula with every engine.
func checkMath(result *doctorResult) {
	for _, name := range mathrender.EngineNames() {
		info := engineInfo{Name: name}
		engine, err := mathrender.NewEngine(name)
		if err == nil {
			err = engine.Render(io.Discard, `\frac{dV}{dt} = -\beta V`, true)
		}
		if err != nil {
			info.Error = err.Error()
			result.fail("Math engine %s failed: %v", name, err)
		} else {
			info.OK = true
		}
		result.Math = append(result.Math, info)
	}
}

// checkConfig loads the file named by PHYSIOMATH_CONFIG and lists
// PHYSIOMATH_* variables nothing reads.
func checkConfig(result *doctorResult, p doctorDeps) {
	result.Config.Source = "defaults"
	if name := p.getenv(envPrefix + "CONFIG"); name != "" {
		result.Config.Source = name
		if _, err := p.loadConfig(name); err != nil {
			result.fail("Config %s: %v", name, err)
		} else {
			result.Config.Loaded = true
		}
	}

	if p.environ == nil {
		return
	}
	for _, kv := range p.environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, envPrefix) && !knownEnvVars[name] {
			result.Config.Unknown = append(result.Config.Unknown, name)
			result.warn("Unknown environment variable %s (typo?)", name)
		}
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, p doctorDeps) {
	he := p.hintEnv()
	result.Env.Container, result.Env.ContainerHint = he.Container()
	result.Env.CI = he.CI()

	if (result.Env.Container || result.Env.CI) && !he.NoSandbox() {
		result.warn("Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// checkSystem verifies the temp directory used for PDF export is writable.
func checkSystem(result *doctorResult, p doctorDeps) {
	tmpDir := p.tempDir()
	f, err := os.CreateTemp(tmpDir, "physiomath-doctor-*")
	if err != nil {
		result.fail("Temp directory not writable: %s", tmpDir)
		return
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(filepath.Clean(name))
	result.System.TempWritable = true
}

// doctorWriter prints one tagged line per check.
type doctorWriter struct{ w io.Writer }

func (d doctorWriter) section(title string) { fmt.Fprintf(d.w, "\n%s\n", title) }

func (d doctorWriter) line(tag, format string, args ...any) {
	fmt.Fprintf(d.w, "  [%s] %s\n", tag, fmt.Sprintf(format, args...))
}

func (d doctorWriter) check(ok bool, failTag, okFormat, failFormat string, args ...any) {
	if ok {
		d.line("OK", okFormat, args...)
	} else {
		d.line(failTag, failFormat, args...)
	}
}

func printDoctorResult(w io.Writer, r *doctorResult) {
	d := doctorWriter{w}
	fmt.Fprintln(w, "physiomath doctor")

	d.section("Chrome/Chromium")
	if r.Chrome.Found {
		d.line("OK", "Found at %s", r.Chrome.Path)
		if r.Chrome.Version != "" {
			d.line("OK", "Version: %s", r.Chrome.Version)
		}
		d.check(r.Chrome.Sandbox, "OK", "Sandbox: enabled", "Sandbox: disabled")
	} else {
		d.line("WARN", "Not found (PDF export disabled)")
	}

	d.section("Completion")
	if r.Completion.APIKey {
		d.line("OK", "API key: set (%s)", r.Completion.KeySource)
	} else {
		d.line("WARN", "API key: not set")
	}

	d.section("Math engines")
	for _, m := range r.Math {
		if m.OK {
			d.line("OK", "%s", m.Name)
		} else {
			d.line("ERROR", "%s: %s", m.Name, m.Error)
		}
	}

	d.section("Config")
	switch {
	case r.Config.Source == "defaults":
		d.line("OK", "Using defaults (PHYSIOMATH_CONFIG not set)")
	case r.Config.Loaded:
		d.line("OK", "Loaded %s", r.Config.Source)
	default:
		d.line("ERROR", "Cannot load %s", r.Config.Source)
	}

	d.section("Environment")
	d.line("OK", "Platform: %s/%s", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		d.line("OK", "Container: detected (%s)", r.Env.ContainerHint)
	}
	if r.Env.CI {
		d.line("OK", "CI: detected")
	}

	d.section("System")
	d.check(r.System.TempWritable, "ERROR", "Temp directory: writable", "Temp directory: not writable")

	if len(r.Warnings) > 0 {
		d.section("Warnings:")
		for _, warn := range r.Warnings {
			d.line("WARN", "%s", warn)
		}
	}
	if len(r.Errors) > 0 {
		d.section("Errors:")
		for _, err := range r.Errors {
			d.line("ERROR", "%s", err)
		}
	}

	fmt.Fprintln(w)
	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
