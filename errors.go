package physiomath

import (
	"errors"

	"github.com/physiomath/go-physiomath/internal/assets"
	"github.com/physiomath/go-physiomath/internal/completion"
	"github.com/physiomath/go-physiomath/internal/locale"
	"github.com/physiomath/go-physiomath/internal/mathrender"
	"github.com/physiomath/go-physiomath/internal/prompt"
)

// Sentinel errors for library operations.
var (
	ErrEmptyContent     = errors.New("markdown content cannot be empty")
	ErrBusy             = errors.New("a generation is already in progress")
	ErrPDFGeneration    = errors.New("PDF generation failed")
	ErrBrowserConnect   = errors.New("failed to connect to browser")
	ErrPageCreate       = errors.New("failed to create browser page")
	ErrPageLoad         = errors.New("failed to load page")
	ErrInvalidAssetPath = errors.New("invalid asset path")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")

	// TOC validation errors.
	ErrInvalidTOCDepth = errors.New("invalid TOC depth")
)

// Errors of the underlying components, re-exported for errors.Is.
var (
	ErrMissingCredential = completion.ErrMissingCredential
	ErrConnectionFailure = completion.ErrConnectionFailure
	ErrGenerationFailure = completion.ErrGenerationFailure
	ErrEmptyResponse     = completion.ErrEmptyResponse
	ErrUnknownModel      = completion.ErrUnknownModel
	ErrEmptyTopic        = prompt.ErrEmptyTopic
	ErrTopicTooLong      = prompt.ErrTopicTooLong
	ErrInvalidLanguage   = locale.ErrInvalidLanguage
	ErrUnknownMathEngine = mathrender.ErrUnknownEngine
	ErrStyleNotFound     = assets.ErrStyleNotFound
)
