package completion

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"
)

// ---------------------------------------------------------------------------
// TestClassify - Failure Kinds
// ---------------------------------------------------------------------------

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

var _ net.Error = timeoutError{}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "403 api error",
			err:  genai.APIError{Code: 403, Message: "forbidden", Status: "PERMISSION_DENIED"},
			want: ErrMissingCredential,
		},
		{
			name: "401 api error",
			err:  genai.APIError{Code: 401},
			want: ErrMissingCredential,
		},
		{
			name: "invalid key reported as 400",
			err:  genai.APIError{Code: 400, Message: "API key not valid. Please pass a valid API key.", Status: "INVALID_ARGUMENT"},
			want: ErrMissingCredential,
		},
		{
			name: "wrapped api error",
			err:  fmt.Errorf("call: %w", genai.APIError{Code: 403}),
			want: ErrMissingCredential,
		},
		{
			name: "403 in plain message",
			err:  errors.New("request failed with status 403"),
			want: ErrMissingCredential,
		},
		{
			name: "url error",
			err:  &url.Error{Op: "Post", URL: "https://x", Err: errors.New("dial tcp: refused")},
			want: ErrConnectionFailure,
		},
		{
			name: "net error",
			err:  timeoutError{},
			want: ErrConnectionFailure,
		},
		{
			name: "network in message",
			err:  errors.New("Network unreachable"),
			want: ErrConnectionFailure,
		},
		{
			name: "fetch in message",
			err:  errors.New("failed to fetch"),
			want: ErrConnectionFailure,
		},
		{
			name: "server error is generation",
			err:  genai.APIError{Code: 503, Message: "The model is overloaded", Status: "UNAVAILABLE"},
			want: ErrGenerationFailure,
		},
		{
			name: "bad request is generation",
			err:  genai.APIError{Code: 400, Message: "invalid model", Status: "INVALID_ARGUMENT"},
			want: ErrGenerationFailure,
		},
		{
			name: "anything else is generation",
			err:  errors.New("boom"),
			want: ErrGenerationFailure,
		},
		{
			name: "already classified",
			err:  fmt.Errorf("%w: x", ErrConnectionFailure),
			want: ErrConnectionFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Classify(tt.err)
			if !errors.Is(got, tt.want) {
				t.Fatalf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
			if !strings.Contains(got.Error(), tt.err.Error()) {
				t.Errorf("Classify lost the original error: %v", got)
			}
			for _, other := range []error{ErrMissingCredential, ErrConnectionFailure, ErrGenerationFailure} {
				if other != tt.want && errors.Is(got, other) {
					t.Errorf("Classify(%v) also matches %v", tt.err, other)
				}
			}
		})
	}
}

func TestClassify_PassThrough(t *testing.T) {
	t.Parallel()

	if Classify(nil) != nil {
		t.Error("Classify(nil) should be nil")
	}
	for _, err := range []error{context.Canceled, context.DeadlineExceeded} {
		wrapped := &url.Error{Op: "Post", URL: "https://x", Err: err}
		if got := Classify(wrapped); got != error(wrapped) {
			t.Errorf("Classify(%v) = %v, want unchanged", wrapped, got)
		}
	}
}

func TestOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{context.Canceled, "canceled"},
		{context.DeadlineExceeded, "connection"},
		{ErrMissingCredential, "credential"},
		{fmt.Errorf("%w: x", ErrConnectionFailure), "connection"},
		{fmt.Errorf("%w: %w", ErrGenerationFailure, ErrEmptyResponse), "generation"},
		{errors.New("other"), "generation"},
	}

	for _, tt := range tests {
		if got := Outcome(tt.err); got != tt.want {
			t.Errorf("Outcome(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestLookupModel - Model Registry
// ---------------------------------------------------------------------------

func TestLookupModel(t *testing.T) {
	t.Parallel()

	models := DefaultModels()
	tests := []struct {
		name    string
		id      string
		want    string
		wantErr bool
	}{
		{name: "empty selects first", id: "", want: DefaultModel},
		{name: "flash", id: "gemini-3-flash-preview", want: "gemini-3-flash-preview"},
		{name: "pro with spaces", id: " gemini-3-pro-preview ", want: "gemini-3-pro-preview"},
		{name: "unknown", id: "gpt-4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := LookupModel(models, tt.id)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownModel) {
					t.Fatalf("LookupModel(%q) error = %v, want ErrUnknownModel", tt.id, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LookupModel(%q): %v", tt.id, err)
			}
			if got.ID != tt.want {
				t.Errorf("LookupModel(%q) = %q, want %q", tt.id, got.ID, tt.want)
			}
		})
	}
}

func TestLookupModel_Empty(t *testing.T) {
	t.Parallel()

	if _, err := LookupModel(nil, "x"); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("error = %v, want ErrUnknownModel", err)
	}
}

// ---------------------------------------------------------------------------
// TestInstrument - Observer and Logging
// ---------------------------------------------------------------------------

type recordingObserver struct {
	model, outcome string
	calls          int
}

func (r *recordingObserver) ObserveCompletion(model, outcome string, _ time.Duration) {
	r.model, r.outcome = model, outcome
	r.calls++
}

func TestInstrument(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	c := Instrument(Func(func(_ context.Context, model, prompt string) (string, error) {
		return "", ErrMissingCredential
	}), obs, nil)

	_, err := c.Complete(context.Background(), "m1", "p")
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("error = %v, want ErrMissingCredential", err)
	}
	if obs.calls != 1 || obs.model != "m1" || obs.outcome != "credential" {
		t.Errorf("observer = %+v", obs)
	}
}

func TestInstrument_PassesText(t *testing.T) {
	t.Parallel()

	c := Instrument(Func(func(_ context.Context, _, prompt string) (string, error) {
		return "echo " + prompt, nil
	}), nil, nil)

	got, err := c.Complete(context.Background(), "m", "hi")
	if err != nil || got != "echo hi" {
		t.Errorf("Complete = %q, %v", got, err)
	}
}
