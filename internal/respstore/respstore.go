// Package respstore persists pipeline artifacts (filled prompts and model
// responses) under timestamped filenames and looks the latest of them up.
package respstore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lunalabs/intakeflow/internal/domain"
)

const (
	timestampLayout = "20060102_150405"
	artifactExt     = ".txt"
)

// Store writes artifacts into a single directory. Filenames follow
// "{category}_{YYYYMMDD_HHMMSS}.txt"; two saves of the same category within
// the same second collide and the last write wins.
type Store struct {
	dir string
	now func() time.Time
}

// New creates a Store rooted at dir. The directory is created on the first
// save.
func New(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// NewWithClock creates a Store with an injectable clock.
func NewWithClock(dir string, now func() time.Time) *Store {
	return &Store{dir: dir, now: now}
}

// Save writes content under a category-prefixed, second-resolution filename
// and returns the full path.
func (s *Store) Save(content, category string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s%s", category, s.now().Format(timestampLayout), artifactExt)
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", name, err)
	}
	return path, nil
}

// MostRecent returns the path of the artifact matching the glob pattern (the
// ".txt" suffix is appended) with the greatest modification time. A missing
// store directory yields ErrNotFound; an empty match set yields ErrNoMatch.
func (s *Store) MostRecent(pattern string) (string, error) {
	if info, err := os.Stat(s.dir); err != nil || !info.IsDir() {
		return "", fmt.Errorf("artifact dir %q: %w", s.dir, domain.ErrNotFound)
	}

	matches, err := filepath.Glob(filepath.Join(s.dir, pattern+artifactExt))
	if err != nil {
		return "", fmt.Errorf("bad pattern %q: %w", pattern, err)
	}

	var (
		newest     string
		newestTime time.Time
	)
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		if newest == "" || info.ModTime().After(newestTime) {
			newest = m
			newestTime = info.ModTime()
		}
	}

	if newest == "" {
		return "", fmt.Errorf("no artifact matches %q in %s: %w", pattern, s.dir, domain.ErrNoMatch)
	}
	return newest, nil
}
