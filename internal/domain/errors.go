// Package domain holds error values shared across the pipeline.
package domain

import "errors"

var (
	// ErrInvalidReference indicates a document link without a usable file handle.
	ErrInvalidReference = errors.New("invalid document reference")

	// ErrNotFound indicates a missing lookup entry or artifact directory.
	ErrNotFound = errors.New("not found")

	// ErrFetchFailed indicates the document source could not deliver bytes.
	ErrFetchFailed = errors.New("document fetch failed")

	// ErrExtractFailed indicates the document bytes could not be parsed.
	ErrExtractFailed = errors.New("text extraction failed")

	// ErrNoMatch indicates no artifact matched a lookup pattern.
	ErrNoMatch = errors.New("no matching artifact")

	// ErrConflict indicates an insert would change an existing lookup entry.
	ErrConflict = errors.New("conflicting lookup entry")
)
