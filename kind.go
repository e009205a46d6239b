package physiomath

import (
	"context"
	"errors"

	"github.com/physiomath/go-physiomath/internal/locale"
)

// ErrorKind classifies a failed generation.
type ErrorKind int

// Error kinds. KindUnknown covers nil and errors outside the completion call
// (validation, rendering).
const (
	KindUnknown ErrorKind = iota
	MissingCredential
	ConnectionFailure
	GenerationFailure
)

func (k ErrorKind) String() string {
	switch k {
	case MissingCredential:
		return "missing_credential"
	case ConnectionFailure:
		return "connection_failure"
	case GenerationFailure:
		return "generation_failure"
	default:
		return "unknown"
	}
}

// ErrorKindOf reports the kind of err. A deadline hit while waiting for the
// model counts as a connection failure.
func ErrorKindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrMissingCredential):
		return MissingCredential
	case errors.Is(err, ErrConnectionFailure), errors.Is(err, context.DeadlineExceeded):
		return ConnectionFailure
	case errors.Is(err, ErrGenerationFailure):
		return GenerationFailure
	default:
		return KindUnknown
	}
}

// Localize returns the user-facing message for err in lang. Errors of no
// known kind read as a generation failure. Returns "" for nil.
func Localize(lang Language, err error) string {
	if err == nil {
		return ""
	}
	return locale.Default().Text(lang, messageKey(err))
}

func messageKey(err error) string {
	switch {
	case errors.Is(err, ErrBusy):
		return "errorBusy"
	case errors.Is(err, ErrEmptyTopic):
		return "errorEmptyTopic"
	}
	switch ErrorKindOf(err) {
	case MissingCredential:
		return "errorApiKey"
	case ConnectionFailure:
		return "errorConnection"
	default:
		return "errorGeneration"
	}
}
