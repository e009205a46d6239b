package main

import (
	"errors"
	"os"

	"github.com/physiomath/go-physiomath"
	"github.com/physiomath/go-physiomath/internal/config"
)

// Exit codes for the physiomath CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess    = 0 // Report written
	ExitGeneral    = 1 // General/unexpected error
	ExitUsage      = 2 // Invalid flags, config, or input
	ExitIO         = 3 // File not found, permission denied
	ExitBrowser    = 4 // Browser/Chrome errors
	ExitCredential = 5 // No API key
	ExitConnection = 6 // Model endpoint unreachable or timed out
	ExitGeneration = 7 // Model refused or returned nothing
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, physiomath.ErrBrowserConnect) ||
		errors.Is(err, physiomath.ErrPageCreate) ||
		errors.Is(err, physiomath.ErrPageLoad) ||
		errors.Is(err, physiomath.ErrPDFGeneration) {
		return ExitBrowser
	}

	// Completion failures (exit 5-7)
	switch physiomath.ErrorKindOf(err) {
	case physiomath.MissingCredential:
		return ExitCredential
	case physiomath.ConnectionFailure:
		return ExitConnection
	case physiomath.GenerationFailure:
		return ExitGeneration
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidModel) ||
		errors.Is(err, config.ErrInvalidMathEngine) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, physiomath.ErrEmptyContent) ||
		errors.Is(err, physiomath.ErrEmptyTopic) ||
		errors.Is(err, physiomath.ErrTopicTooLong) ||
		errors.Is(err, physiomath.ErrUnknownModel) ||
		errors.Is(err, physiomath.ErrInvalidLanguage) ||
		errors.Is(err, physiomath.ErrUnknownMathEngine) ||
		errors.Is(err, physiomath.ErrInvalidPageSize) ||
		errors.Is(err, physiomath.ErrInvalidOrientation) ||
		errors.Is(err, physiomath.ErrInvalidMargin) ||
		errors.Is(err, physiomath.ErrInvalidTOCDepth) ||
		errors.Is(err, physiomath.ErrStyleNotFound) ||
		errors.Is(err, physiomath.ErrInvalidAssetPath) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}
