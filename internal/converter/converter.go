// Package converter runs the idempotent document-to-text pipeline: fetch a
// source document once, extract its text, and remember the result so later
// passes short-circuit.
package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lunalabs/intakeflow/internal/docsource"
	"github.com/lunalabs/intakeflow/internal/ident"
	"github.com/lunalabs/intakeflow/internal/logger"
	"github.com/lunalabs/intakeflow/internal/lookup"
	"github.com/lunalabs/intakeflow/internal/pdftext"
)

// Converter converts linked documents into text files under textDir, keyed by
// a derived identifier, exactly once per distinct reference.
type Converter struct {
	cache   *lookup.Cache
	source  docsource.Source
	textDir string
	extract func([]byte) (string, error)
}

// Option configures a Converter.
type Option func(*Converter)

// WithExtractor swaps the text-extraction function. Used by tests and by
// callers that handle non-PDF document types.
func WithExtractor(fn func([]byte) (string, error)) Option {
	return func(c *Converter) {
		c.extract = fn
	}
}

// New creates a Converter writing text artifacts into textDir.
func New(cache *lookup.Cache, source docsource.Source, textDir string, opts ...Option) *Converter {
	c := &Converter{
		cache:   cache,
		source:  source,
		textDir: textDir,
		extract: pdftext.Extract,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ConvertOnce converts the document behind link and returns its derived
// identifier. A reference already present in the lookup cache returns the
// recorded identifier without touching the document source. On any failure
// during fetch, extract, or persist, nothing is recorded and the error is
// surfaced so a later pass can retry.
func (c *Converter) ConvertOnce(ctx context.Context, link string) (string, bool, error) {
	reference, err := ident.ParseLink(link)
	if err != nil {
		return "", false, err
	}

	if c.cache.Has(reference) {
		id, err := c.cache.Get(reference)
		if err != nil {
			return "", false, err
		}
		logger.Debug("document already converted", "reference", reference, "id", id)
		return id, true, nil
	}

	id, err := ident.Derive(reference)
	if err != nil {
		return "", false, err
	}

	data, err := c.source.FetchBytes(ctx, reference)
	if err != nil {
		return "", false, err
	}

	text, err := c.extract(data)
	if err != nil {
		return "", false, err
	}

	if err := c.saveText(id, text); err != nil {
		return "", false, err
	}

	if err := c.cache.Put(reference, id); err != nil {
		return "", false, err
	}

	logger.Info("document converted", "reference", reference, "id", id, "bytes", len(data))
	return id, false, nil
}

// TextPath returns the artifact path for a derived identifier.
func (c *Converter) TextPath(id string) string {
	return filepath.Join(c.textDir, id+".txt")
}

func (c *Converter) saveText(id, text string) error {
	if err := os.MkdirAll(c.textDir, 0o755); err != nil {
		return fmt.Errorf("create text dir: %w", err)
	}
	if err := os.WriteFile(c.TextPath(id), []byte(text), 0o644); err != nil {
		return fmt.Errorf("write text artifact %s: %w", id, err)
	}
	return nil
}
