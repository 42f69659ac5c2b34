// Package lookup persists the reference-to-identifier map that makes
// document conversion idempotent.
package lookup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lunalabs/intakeflow/internal/domain"
)

// Cache is a flat JSON key/value file mapping document references to derived
// identifiers. The whole file is loaded on every access and rewritten through
// a temp file on update. Single writer assumed; concurrent processes writing
// the same file are unsupported.
type Cache struct {
	path string
}

// New creates a Cache backed by the JSON file at path. The file does not need
// to exist yet; it is created on the first Put.
func New(path string) *Cache {
	return &Cache{path: path}
}

// Has reports whether an entry exists for reference.
func (c *Cache) Has(reference string) bool {
	entries, err := c.load()
	if err != nil {
		return false
	}
	_, ok := entries[reference]
	return ok
}

// Get returns the identifier recorded for reference.
func (c *Cache) Get(reference string) (string, error) {
	entries, err := c.load()
	if err != nil {
		return "", err
	}
	id, ok := entries[reference]
	if !ok {
		return "", fmt.Errorf("no entry for %q: %w", reference, domain.ErrNotFound)
	}
	return id, nil
}

// Put records reference -> identifier. Inserting the same pair again is a
// no-op. Inserting a different identifier for an existing reference returns
// ErrConflict; the stored value is never overwritten.
func (c *Cache) Put(reference, identifier string) error {
	entries, err := c.load()
	if err != nil {
		return err
	}

	if existing, ok := entries[reference]; ok {
		if existing == identifier {
			return nil
		}
		return fmt.Errorf("entry for %q already holds %q: %w", reference, existing, domain.ErrConflict)
	}

	entries[reference] = identifier
	return c.store(entries)
}

// Len returns the number of recorded entries.
func (c *Cache) Len() int {
	entries, err := c.load()
	if err != nil {
		return 0
	}
	return len(entries)
}

func (c *Cache) load() (map[string]string, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read lookup file: %w", err)
	}

	entries := map[string]string{}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse lookup file: %w", err)
	}
	return entries, nil
}

func (c *Cache) store(entries map[string]string) error {
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create lookup dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode lookup file: %w", err)
	}

	// Write-then-rename so readers never observe a half-written file.
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write lookup file: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace lookup file: %w", err)
	}
	return nil
}
