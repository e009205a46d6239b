package completion

// Notes:
// - GeminiCompleter is exercised against an httptest server through
//   WithBaseURL; no request leaves the machine.

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Test Infrastructure
// ---------------------------------------------------------------------------

func textResponse(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	})
	return string(body)
}

func errorResponse(code int, status, message string) string {
	body, _ := json.Marshal(map[string]any{
		"error": map[string]any{"code": code, "status": status, "message": message},
	})
	return string(body)
}

func newGeminiServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

// ---------------------------------------------------------------------------
// TestGeminiCompleter
// ---------------------------------------------------------------------------

func TestGeminiCompleter_Success(t *testing.T) {
	t.Parallel()

	var (
		mu              sync.Mutex
		gotPath, gotKey string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPath, gotKey = r.URL.Path, r.Header.Get("x-goog-api-key")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, textResponse("## Theory\n$$\\Psi$$"))
	}))
	t.Cleanup(srv.Close)

	g := NewGemini(" key-123 ", WithBaseURL(srv.URL), WithTemperature(0.7))
	got, err := g.Complete(context.Background(), DefaultModel, "prompt")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "## Theory\n$$\\Psi$$" {
		t.Errorf("Complete = %q", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if !strings.HasSuffix(gotPath, DefaultModel+":generateContent") {
		t.Errorf("path = %q, want suffix %q", gotPath, DefaultModel+":generateContent")
	}
	if gotKey != "key-123" {
		t.Errorf("api key header = %q, want trimmed key", gotKey)
	}
}

func TestGeminiCompleter_MissingCredential(t *testing.T) {
	t.Parallel()

	srv, calls := newGeminiServer(t, http.StatusOK, textResponse("x"))
	g := NewGemini("   ", WithBaseURL(srv.URL))

	if g.HasCredential() {
		t.Error("HasCredential() = true for blank key")
	}
	_, err := g.Complete(context.Background(), DefaultModel, "p")
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("error = %v, want ErrMissingCredential", err)
	}
	if calls.Load() != 0 {
		t.Errorf("server called %d times, want 0", calls.Load())
	}
}

func TestGeminiCompleter_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{
			name:   "rejected key",
			status: http.StatusForbidden,
			body:   errorResponse(403, "PERMISSION_DENIED", "API key rejected"),
			want:   ErrMissingCredential,
		},
		{
			name:   "server overloaded",
			status: http.StatusServiceUnavailable,
			body:   errorResponse(503, "UNAVAILABLE", "The model is overloaded"),
			want:   ErrGenerationFailure,
		},
		{
			name:   "empty text",
			status: http.StatusOK,
			body:   textResponse("   "),
			want:   ErrEmptyResponse,
		},
		{
			name:   "no candidates",
			status: http.StatusOK,
			body:   `{"candidates":[]}`,
			want:   ErrGenerationFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv, _ := newGeminiServer(t, tt.status, tt.body)
			_, err := NewGemini("k", WithBaseURL(srv.URL)).Complete(context.Background(), DefaultModel, "p")
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGeminiCompleter_ConnectionFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewGemini("k", WithBaseURL(url)).Complete(context.Background(), DefaultModel, "p")
	if !errors.Is(err, ErrConnectionFailure) {
		t.Errorf("error = %v, want ErrConnectionFailure", err)
	}
}

func TestGeminiCompleter_RequestTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	g := NewGemini("k", WithBaseURL(srv.URL), WithRequestTimeout(50*time.Millisecond))
	_, err := g.Complete(context.Background(), DefaultModel, "p")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
	if Outcome(err) != "connection" {
		t.Errorf("Outcome = %q, want connection", Outcome(err))
	}
}

func TestGeminiCompleter_ReusesClient(t *testing.T) {
	t.Parallel()

	srv, calls := newGeminiServer(t, http.StatusOK, textResponse("ok"))
	g := NewGemini("k", WithBaseURL(srv.URL))

	for range 3 {
		if _, err := g.Complete(context.Background(), DefaultModel, "p"); err != nil {
			t.Fatalf("Complete: %v", err)
		}
	}
	first := g.client
	if _, err := g.Complete(context.Background(), DefaultModel, "p"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if g.client != first {
		t.Error("client was recreated")
	}
	if calls.Load() != 4 {
		t.Errorf("server calls = %d, want 4", calls.Load())
	}
}
