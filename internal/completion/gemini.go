package completion

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/physiomath/go-physiomath/internal/logfields"
)

// GeminiOption configures a GeminiCompleter.
type GeminiOption func(*GeminiCompleter)

// WithBaseURL points the client at another endpoint, e.g. a proxy.
func WithBaseURL(u string) GeminiOption {
	return func(g *GeminiCompleter) { g.baseURL = u }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) GeminiOption {
	return func(g *GeminiCompleter) { g.httpClient = c }
}

// WithRequestTimeout bounds each request. Zero means no per-request limit.
func WithRequestTimeout(d time.Duration) GeminiOption {
	return func(g *GeminiCompleter) { g.timeout = d }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) GeminiOption {
	return func(g *GeminiCompleter) { g.temperature = genai.Ptr(t) }
}

// WithGeminiLogger sets the logger.
func WithGeminiLogger(l *slog.Logger) GeminiOption {
	return func(g *GeminiCompleter) {
		if l != nil {
			g.logger = l
		}
	}
}

// GeminiCompleter completes prompts with the Gemini API. The client is
// created on first use and shared afterwards; GeminiCompleter is safe for
// concurrent use.
type GeminiCompleter struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	temperature *float32
	logger      *slog.Logger

	once    sync.Once
	client  *genai.Client
	initErr error
}

var _ Completer = (*GeminiCompleter)(nil)

// NewGemini creates a GeminiCompleter. An empty apiKey is accepted here and
// reported as ErrMissingCredential by Complete.
func NewGemini(apiKey string, opts ...GeminiOption) *GeminiCompleter {
	g := &GeminiCompleter{
		apiKey: strings.TrimSpace(apiKey),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// HasCredential reports whether an API key is configured.
func (g *GeminiCompleter) HasCredential() bool {
	return g.apiKey != ""
}

// Complete sends prompt to model and returns the response text.
func (g *GeminiCompleter) Complete(ctx context.Context, model, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", ErrMissingCredential
	}

	client, err := g.getClient(ctx)
	if err != nil {
		return "", Classify(err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), g.requestConfig())
	if err != nil {
		err = Classify(err)
		g.logger.Debug("completion failed",
			logfields.Model(model),
			logfields.Duration(time.Since(start)),
			logfields.Error(err))
		return "", err
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailure, ErrEmptyResponse)
	}

	g.logger.Debug("completion done",
		logfields.Model(model),
		logfields.Bytes(len(text)),
		logfields.Duration(time.Since(start)))
	return text, nil
}

func (g *GeminiCompleter) getClient(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		cfg := &genai.ClientConfig{
			APIKey:     g.apiKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: g.httpClient,
		}
		if g.baseURL != "" {
			cfg.HTTPOptions.BaseURL = g.baseURL
		}
		g.client, g.initErr = genai.NewClient(context.WithoutCancel(ctx), cfg)
	})
	return g.client, g.initErr
}

func (g *GeminiCompleter) requestConfig() *genai.GenerateContentConfig {
	if g.temperature == nil {
		return nil
	}
	return &genai.GenerateContentConfig{Temperature: g.temperature}
}
