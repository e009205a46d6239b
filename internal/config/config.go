package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/physiomath/go-physiomath/internal/completion"
	"github.com/physiomath/go-physiomath/internal/dateutil"
	"github.com/physiomath/go-physiomath/internal/fileutil"
	"github.com/physiomath/go-physiomath/internal/locale"
	"github.com/physiomath/go-physiomath/internal/mathrender"
	"github.com/physiomath/go-physiomath/internal/yamlutil"
)

// AppName names the user config directory (~/.config/physiomath).
const AppName = "physiomath"

// Sentinel errors for config operations.
var (
	ErrConfigNotFound    = errors.New("config file not found")
	ErrEmptyConfigName   = errors.New("config name cannot be empty")
	ErrConfigParse       = errors.New("failed to parse config")
	ErrFieldTooLong      = errors.New("field exceeds maximum length")
	ErrInvalidModel      = errors.New("invalid model")
	ErrInvalidMathEngine = errors.New("invalid math engine")
	ErrInvalidValue      = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxModelIDLength    = 100  // "gemini-3-flash-preview"
	MaxLabelLength      = 100  // Model label shown in the UI
	MaxURLLength        = 2048 // Browser limit
	MaxPathLength       = 4096 // PATH_MAX
	MaxStyleLength      = 100  // Style name or path
	MaxTextLength       = 500  // Footer free-form text
	MaxPageSizeLength   = 10   // "letter", "a4", "legal"
	MaxOrientLength     = 10   // "portrait", "landscape"
	MaxAddrLength       = 255  // host:port
	MaxTOCTitleLength   = 100  // TOC title
	MaxDurationLength   = 20   // "2m30s"
	MaxLevelLength      = 10   // "debug", "info"
	MaxLogFormatLength  = 10   // "text", "json"
	MaxEnvVarNameLength = 100  // "GEMINI_API_KEY"
)

// Defaults.
const (
	DefaultTimeout = 2 * time.Minute
	DefaultAddr    = "127.0.0.1:8080"
	DefaultStyle   = "default"
	DefaultWorkers = 0 // auto
	MaxWorkers     = 8
)

// Config holds all configuration for report generation.
type Config struct {
	Language   string           `yaml:"language"` // "fr" or "ar" (default: "fr")
	Completion CompletionConfig `yaml:"completion"`
	Math       MathConfig       `yaml:"math"`
	Output     OutputConfig     `yaml:"output"`
	CSS        CSSConfig        `yaml:"css"`
	Assets     AssetsConfig     `yaml:"assets"`
	Page       PageConfig       `yaml:"page"`
	Footer     FooterConfig     `yaml:"footer"`
	TOC        TOCConfig        `yaml:"toc"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
}

// CompletionConfig defines the generative model endpoint.
type CompletionConfig struct {
	Model       string             `yaml:"model"`       // Default model ID (empty = first of models)
	Models      []completion.Model `yaml:"models"`      // Offered models (empty = built-in list)
	Timeout     string             `yaml:"timeout"`     // Go duration (default: 2m)
	Temperature *float32           `yaml:"temperature"` // Optional, 0.0 to 2.0
	BaseURL     string             `yaml:"baseURL"`     // Optional endpoint override
	APIKeyEnv   string             `yaml:"apiKeyEnv"`   // Extra env var checked for the key
}

// MathConfig defines formula rendering.
type MathConfig struct {
	Engine           string `yaml:"engine"`           // "katex" or "mathml" (default: "katex")
	FlagInlineErrors bool   `yaml:"flagInlineErrors"` // Mark failed inline formulas like block ones
	NoEscapes        bool   `yaml:"noEscapes"`        // Treat \$ as a delimiter like any other $
	StylesheetURL    string `yaml:"stylesheetURL"`    // Optional KaTeX stylesheet link
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = current directory)
	PDF        bool   `yaml:"pdf"`        // Also export PDF
	Markdown   bool   `yaml:"markdown"`   // Also save the raw Markdown
}

// CSSConfig defines CSS styling options.
type CSSConfig struct {
	Style string `yaml:"style"` // Name of style in internal/assets/styles/ or a path (default: "default")
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "letter", "a4", "legal" (default: "a4")
	Orientation string  `yaml:"orientation"` // "portrait", "landscape" (default: "portrait")
	Margin      float64 `yaml:"margin"`      // inches (default: 0.5)
}

// FooterConfig defines the report footer.
type FooterConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Text       string `yaml:"text"`       // Optional free-form text (default: localized "generated with")
	Date       string `yaml:"date"`       // "auto", "auto:FORMAT", a literal, or empty for no date
	PageNumber bool   `yaml:"pageNumber"` // Page numbers in exported PDFs
}

// TOCConfig defines table of contents options.
type TOCConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Title    string `yaml:"title"`    // Empty = localized "table of contents"
	MaxDepth int    `yaml:"maxDepth"` // 1-6, default 3
}

// ServerConfig defines the HTTP UI.
type ServerConfig struct {
	Addr    string `yaml:"addr"`    // Listen address (default: 127.0.0.1:8080)
	Metrics bool   `yaml:"metrics"` // Expose /metrics
}

// LogConfig defines structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error" (default: "warn")
	Format string `yaml:"format"` // "text" or "json" (default: "text")
}

// Validate checks field lengths and enumerated values.
// Called automatically by LoadConfig, but available for callers that
// build a Config from flags and environment.
func (c *Config) Validate() error {
	if c.Language != "" {
		if _, err := locale.ParseLanguage(c.Language); err != nil {
			return fmt.Errorf("language: %w", err)
		}
	}

	if err := c.validateCompletion(); err != nil {
		return err
	}

	if c.Math.Engine != "" {
		if _, err := mathrender.NewEngine(c.Math.Engine); err != nil {
			return fmt.Errorf("%w: math.engine %q (must be one of %s)",
				ErrInvalidMathEngine, c.Math.Engine, strings.Join(mathrender.EngineNames(), ", "))
		}
	}
	if err := validateURL("math.stylesheetURL", c.Math.StylesheetURL); err != nil {
		return err
	}

	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("css.style", c.CSS.Style, MaxStyleLength); err != nil {
		return err
	}
	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}

	if err := validateFieldLength("page.size", c.Page.Size, MaxPageSizeLength); err != nil {
		return err
	}
	if err := validateFieldLength("page.orientation", c.Page.Orientation, MaxOrientLength); err != nil {
		return err
	}

	if err := validateFieldLength("footer.text", c.Footer.Text, MaxTextLength); err != nil {
		return err
	}

	if err := validateFieldLength("footer.date", c.Footer.Date, MaxTextLength); err != nil {
		return err
	}
	if _, err := dateutil.ResolveDate(c.Footer.Date, time.Time{}, locale.DefaultLanguage); err != nil {
		return fmt.Errorf("%w: footer.date: %v", ErrInvalidValue, err)
	}
	if err := validateFieldLength("toc.title", c.TOC.Title, MaxTOCTitleLength); err != nil {
		return err
	}
	if c.TOC.Enabled && c.TOC.MaxDepth != 0 {
		if c.TOC.MaxDepth < 1 || c.TOC.MaxDepth > 6 {
			return fmt.Errorf("%w: toc.maxDepth must be between 1 and 6, got %d", ErrInvalidValue, c.TOC.MaxDepth)
		}
	}

	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}

	if err := validateFieldLength("log.level", c.Log.Level, MaxLevelLength); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q (must be debug, info, warn, or error)", ErrInvalidValue, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q (must be text or json)", ErrInvalidValue, c.Log.Format)
	}

	return nil
}

func (c *Config) validateCompletion() error {
	cc := c.Completion
	for i, m := range cc.Models {
		if m.ID == "" {
			return fmt.Errorf("%w: completion.models[%d].id is required", ErrInvalidModel, i)
		}
		if err := validateFieldLength(fmt.Sprintf("completion.models[%d].id", i), m.ID, MaxModelIDLength); err != nil {
			return err
		}
		if err := validateFieldLength(fmt.Sprintf("completion.models[%d].label", i), m.Label, MaxLabelLength); err != nil {
			return err
		}
	}
	if err := validateFieldLength("completion.model", cc.Model, MaxModelIDLength); err != nil {
		return err
	}
	if cc.Model != "" {
		if _, err := completion.LookupModel(c.Models(), cc.Model); err != nil {
			return fmt.Errorf("%w: completion.model %q is not in completion.models", ErrInvalidModel, cc.Model)
		}
	}

	if err := validateFieldLength("completion.timeout", cc.Timeout, MaxDurationLength); err != nil {
		return err
	}
	if cc.Timeout != "" {
		d, err := time.ParseDuration(cc.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: completion.timeout %q (must be a positive duration like 90s)", ErrInvalidValue, cc.Timeout)
		}
	}
	if cc.Temperature != nil && (*cc.Temperature < 0 || *cc.Temperature > 2) {
		return fmt.Errorf("%w: completion.temperature must be between 0 and 2, got %.2f", ErrInvalidValue, *cc.Temperature)
	}
	if err := validateURL("completion.baseURL", cc.BaseURL); err != nil {
		return err
	}
	return validateFieldLength("completion.apiKeyEnv", cc.APIKeyEnv, MaxEnvVarNameLength)
}

// validateURL accepts an empty value or an http(s) URL within MaxURLLength.
func validateURL(field, value string) error {
	if err := validateFieldLength(field, value, MaxURLLength); err != nil {
		return err
	}
	if value != "" && !fileutil.IsURL(value) {
		return fmt.Errorf("%w: %s %q (must start with http:// or https://)", ErrInvalidValue, field, value)
	}
	return nil
}

// Models returns the configured model list, or the built-in one.
func (c *Config) Models() []completion.Model {
	if len(c.Completion.Models) > 0 {
		return c.Completion.Models
	}
	return completion.DefaultModels()
}

// Timeout returns the completion timeout. Call after Validate.
func (c *Config) Timeout() time.Duration {
	if d, err := time.ParseDuration(c.Completion.Timeout); err == nil && d > 0 {
		return d
	}
	return DefaultTimeout
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() *Config {
	return &Config{
		Language: string(locale.DefaultLanguage),
		Math:     MathConfig{Engine: mathrender.DefaultEngine},
		CSS:      CSSConfig{Style: DefaultStyle},
		Server:   ServerConfig{Addr: DefaultAddr, Metrics: true},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalSource(configPath, data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/physiomath/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, AppName, name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
