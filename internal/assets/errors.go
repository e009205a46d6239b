package assets

import "errors"

var (
	ErrStyleNotFound         = errors.New("style not found")
	ErrTemplateSetNotFound   = errors.New("template set not found")
	ErrIncompleteTemplateSet = errors.New("template set missing required template")
	ErrInvalidName           = errors.New("invalid asset name")
	ErrInvalidBasePath       = errors.New("invalid asset directory")

	// ErrAssetRead covers I/O failures, including reads refused because the
	// file resolves outside the asset directory.
	ErrAssetRead = errors.New("failed to read asset")
)
