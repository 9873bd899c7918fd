// Package apperr holds the sentinel errors shared across the thumbnail pipeline.
package apperr

import "errors"

var (
	// ErrExtraction marks an unreadable or corrupt input file.
	ErrExtraction = errors.New("extraction failed")
	// ErrDocumentNotFound marks a manifest without a plausible animation document.
	ErrDocumentNotFound = errors.New("animation document not found")
	// ErrInvalidDocument marks a located document that fails the schema predicate.
	ErrInvalidDocument = errors.New("invalid animation document")
	// ErrOutputWrite marks a missing or empty thumbnail after writing.
	ErrOutputWrite = errors.New("output write failed")
	// ErrCanvasUnavailable marks a rendering tier that cannot obtain a canvas.
	ErrCanvasUnavailable = errors.New("canvas unavailable")
)
