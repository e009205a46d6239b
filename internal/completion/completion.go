// Package completion sends prompts to a generative text model and maps its
// failures onto three kinds: missing credential, connection failure and
// generation failure.
package completion

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"google.golang.org/genai"
)

// Sentinel errors. Every error returned by a Completer in this package wraps
// exactly one of the first three, or is a context error.
var (
	ErrMissingCredential = errors.New("missing or rejected API credential")
	ErrConnectionFailure = errors.New("cannot reach the generation service")
	ErrGenerationFailure = errors.New("generation failed")

	// ErrEmptyResponse is wrapped together with ErrGenerationFailure when the
	// model returns no text.
	ErrEmptyResponse = errors.New("empty response")
)

// Completer turns a prompt into generated text.
type Completer interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// Func adapts a function to Completer.
type Func func(ctx context.Context, model, prompt string) (string, error)

// Complete calls f.
func (f Func) Complete(ctx context.Context, model, prompt string) (string, error) {
	return f(ctx, model, prompt)
}

var _ Completer = Func(nil)

// Classify wraps err with the sentinel of its failure kind.
// Errors already carrying a kind and context errors are returned unchanged.
// Classification is a best-effort reading of status codes and messages.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, ErrMissingCredential),
		errors.Is(err, ErrConnectionFailure),
		errors.Is(err, ErrGenerationFailure):
		return err
	case isCredentialError(err):
		return fmt.Errorf("%w: %w", ErrMissingCredential, err)
	case isConnectionError(err):
		return fmt.Errorf("%w: %w", ErrConnectionFailure, err)
	default:
		return fmt.Errorf("%w: %w", ErrGenerationFailure, err)
	}
}

func isCredentialError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 401, apiErr.Code == 403:
			return true
		case apiErr.Status == "PERMISSION_DENIED", apiErr.Status == "UNAUTHENTICATED":
			return true
		case apiErr.Code == 400 && strings.Contains(strings.ToLower(apiErr.Message), "api key"):
			return true
		}
		return false
	}
	return strings.Contains(err.Error(), "403")
}

func isConnectionError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, word := range []string{"network", "fetch", "connection"} {
		if strings.Contains(msg, word) {
			return true
		}
	}
	return false
}

// Outcome names the result of a completion for logs and metrics:
// "ok", "credential", "connection", "generation" or "canceled".
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrMissingCredential):
		return "credential"
	case errors.Is(err, ErrConnectionFailure), errors.Is(err, context.DeadlineExceeded):
		return "connection"
	default:
		return "generation"
	}
}
