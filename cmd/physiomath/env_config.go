package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/physiomath/go-physiomath/internal/config"
)

// envPrefix starts every physiomath environment variable.
const envPrefix = "PHYSIOMATH_"

// API key variables, in lookup order.
const (
	envGeminiKey = "GEMINI_API_KEY"
	envAPIKey    = "API_KEY"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // PHYSIOMATH_CONFIG: config file name or path
	Lang       string // PHYSIOMATH_LANG: fr, ar
	Model      string // PHYSIOMATH_MODEL: model ID
	Timeout    string // PHYSIOMATH_TIMEOUT: completion timeout
	MathEngine string // PHYSIOMATH_MATH_ENGINE: katex, mathml
	Style      string // PHYSIOMATH_STYLE: CSS style name or path
	OutputDir  string // PHYSIOMATH_OUTPUT_DIR: default output directory
	Addr       string // PHYSIOMATH_ADDR: server listen address
	LogLevel   string // PHYSIOMATH_LOG_LEVEL
	LogFormat  string // PHYSIOMATH_LOG_FORMAT
	Workers    int    // PHYSIOMATH_WORKERS: parallel render workers
}

// knownEnvVars lists valid PHYSIOMATH_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"PHYSIOMATH_CONFIG":      true,
	"PHYSIOMATH_LANG":        true,
	"PHYSIOMATH_MODEL":       true,
	"PHYSIOMATH_TIMEOUT":     true,
	"PHYSIOMATH_MATH_ENGINE": true,
	"PHYSIOMATH_STYLE":       true,
	"PHYSIOMATH_OUTPUT_DIR":  true,
	"PHYSIOMATH_ADDR":        true,
	"PHYSIOMATH_LOG_LEVEL":   true,
	"PHYSIOMATH_LOG_FORMAT":  true,
	"PHYSIOMATH_WORKERS":     true,
	"PHYSIOMATH_CONTAINER":   true, // doctor
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("PHYSIOMATH_CONFIG"),
		Lang:       getenv("PHYSIOMATH_LANG"),
		Model:      getenv("PHYSIOMATH_MODEL"),
		Timeout:    getenv("PHYSIOMATH_TIMEOUT"),
		MathEngine: getenv("PHYSIOMATH_MATH_ENGINE"),
		Style:      getenv("PHYSIOMATH_STYLE"),
		OutputDir:  getenv("PHYSIOMATH_OUTPUT_DIR"),
		Addr:       getenv("PHYSIOMATH_ADDR"),
		LogLevel:   getenv("PHYSIOMATH_LOG_LEVEL"),
		LogFormat:  getenv("PHYSIOMATH_LOG_FORMAT"),
	}

	// Parse int for workers
	if workers := getenv("PHYSIOMATH_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized PHYSIOMATH_* variables.
// Helps catch typos like PHYSIOMATH_LANGUAGE instead of PHYSIOMATH_LANG.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if strings.HasPrefix(env, envPrefix) {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Set variables override the config file; flags are merged afterwards,
// giving: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Language, env.Lang)
	set(&cfg.Completion.Model, env.Model)
	set(&cfg.Completion.Timeout, env.Timeout)
	set(&cfg.Math.Engine, env.MathEngine)
	set(&cfg.CSS.Style, env.Style)
	set(&cfg.Output.DefaultDir, env.OutputDir)
	set(&cfg.Server.Addr, env.Addr)
	set(&cfg.Log.Level, env.LogLevel)
	set(&cfg.Log.Format, env.LogFormat)
}

// resolveAPIKey returns the first API key found: GEMINI_API_KEY, API_KEY,
// then the variable named by completion.apiKeyEnv.
func resolveAPIKey(getenv func(string) string, cfg *config.Config) string {
	for _, name := range []string{envGeminiKey, envAPIKey, cfg.Completion.APIKeyEnv} {
		if name == "" {
			continue
		}
		if v := strings.TrimSpace(getenv(name)); v != "" {
			return v
		}
	}
	return ""
}
