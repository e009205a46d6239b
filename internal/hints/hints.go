// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"

	"github.com/physiomath/go-physiomath/internal/fileutil"
)

// Env is the part of the process environment some hints depend on.
// Zero fields mean "unset" and "no such file".
type Env struct {
	Getenv func(string) string
	Exists func(path string) bool
}

// OSEnv reads the real environment and filesystem.
func OSEnv(getenv func(string) string) Env {
	return Env{Getenv: getenv, Exists: fileutil.FileExists}
}

func (e Env) get(key string) string {
	if e.Getenv == nil {
		return ""
	}
	return e.Getenv(key)
}

// Container reports whether the process looks containerized and which
// signal said so. PHYSIOMATH_CONTAINER=1 forces detection for images
// without the usual markers.
func (e Env) Container() (bool, string) {
	switch {
	case e.get("PHYSIOMATH_CONTAINER") == "1":
		return true, "PHYSIOMATH_CONTAINER=1"
	case e.Exists != nil && e.Exists("/.dockerenv"):
		return true, "/.dockerenv"
	case e.get("container") != "":
		return true, "container=" + e.get("container")
	case e.get("KUBERNETES_SERVICE_HOST") != "":
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// CI reports whether a CI system's marker variable is set.
func (e Env) CI() bool {
	for _, key := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if e.get(key) != "" {
			return true
		}
	}
	return false
}

// NoSandbox reports whether Chrome should start without its sandbox:
// ROD_NO_SANDBOX=1, CI=true, or a custom ROD_BROWSER_BIN, which container
// images use for their bundled Chromium.
func (e Env) NoSandbox() bool {
	return e.get("ROD_NO_SANDBOX") == "1" || e.get("CI") == "true" || e.get("ROD_BROWSER_BIN") != ""
}

// ForBrowserConnect returns hints for a Chrome that failed to start,
// which only matters for PDF export.
func (e Env) ForBrowserConnect() string {
	var hints []string
	inContainer, _ := e.Container()
	if (e.CI() || inContainer) && !e.NoSandbox() {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if e.get("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	hints = append(hints, "or drop --pdf to keep the HTML report only")
	return formatHints(hints)
}

// ForConnection returns hints for an unreachable Gemini endpoint.
func (e Env) ForConnection() string {
	if e.get("HTTPS_PROXY") != "" || e.get("https_proxy") != "" {
		return format("check the HTTPS_PROXY setting")
	}
	return format("check network access to generativelanguage.googleapis.com")
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("long articles can take minutes, use --timeout 5m")
}

// ForMissingCredential returns hints for a missing API key.
func ForMissingCredential() string {
	return format("set GEMINI_API_KEY (or API_KEY) in the environment or in a .env file")
}

// ForUnknownModel returns hints listing the models that can be selected.
func ForUnknownModel(available []string) string {
	if len(available) == 0 {
		return format("add models under completion.models in the config file")
	}
	return format("available models: " + strings.Join(available, ", "))
}

// ForMathEngine returns hints listing the supported math engines.
func ForMathEngine(available []string) string {
	return format("supported engines: " + strings.Join(available, ", "))
}

// ForConfigNotFound suggests --config, or creating the first user config
// path among searchedPaths.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(p, "physiomath") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForStyleNotFound lists the built-in styles and how to pass a file.
func ForStyleNotFound(available []string) string {
	hint := "pass a .css path or CSS text to --style"
	if len(available) > 0 {
		hint = "available: " + strings.Join(available, ", ") + "; or " + hint
	}
	return format(hint)
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
