// Package watcher polls the intake table for new rows and turns each one
// into a filled prompt, an LLM call, and a persisted response.
package watcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lunalabs/intakeflow/internal/llm"
	"github.com/lunalabs/intakeflow/internal/logger"
	"github.com/lunalabs/intakeflow/internal/sheet"
	"github.com/lunalabs/intakeflow/internal/template"
)

// Artifact categories used for saved prompts and responses.
const (
	CategoryPrompt   = "filled"
	CategoryResponse = "response"
)

// ArtifactStore persists named pipeline artifacts.
type ArtifactStore interface {
	Save(content, category string) (string, error)
}

// Config holds watcher settings.
type Config struct {
	// PollInterval is the wait between polls when no new row exists.
	PollInterval time.Duration

	// StartRow is the last row index considered already handled; processing
	// begins at StartRow+1. The cursor lives only in memory, so a restarted
	// watcher replays from here.
	StartRow int

	// FieldNames is the column order used to zip row cells into fields.
	FieldNames []string

	// MaxAttempts bounds retries of a single failing row; 0 retries forever.
	// Once exceeded, Run returns an error rather than silently spinning.
	MaxAttempts int

	// Backoff is the extra wait added per consecutive failure of a row, on
	// top of the poll interval.
	Backoff time.Duration
}

// Watcher detects newly appended rows and processes them strictly in order.
// All state is held on the struct; there are no package-level globals.
type Watcher struct {
	rows         sheet.RowSource
	provider     llm.Provider
	store        ArtifactStore
	templateText string
	cfg          Config

	mu     sync.Mutex
	cursor int // last successfully processed row
}

// New creates a Watcher. templateText is the prompt template whose {field}
// placeholders are filled from each row.
func New(rows sheet.RowSource, provider llm.Provider, store ArtifactStore, templateText string, cfg Config) *Watcher {
	return &Watcher{
		rows:         rows,
		provider:     provider,
		store:        store,
		templateText: templateText,
		cfg:          cfg,
		cursor:       cfg.StartRow,
	}
}

// Cursor returns the last successfully processed row index.
func (w *Watcher) Cursor() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cursor
}

func (w *Watcher) setCursor(row int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cursor = row
}

// Run polls until ctx is canceled or a row exhausts its retry budget.
// Cancellation is observed only between cycles; an in-flight row is never
// abandoned halfway through its sequence.
func (w *Watcher) Run(ctx context.Context) error {
	logger.Info("watcher started",
		"poll_interval", w.cfg.PollInterval,
		"start_row", w.cfg.StartRow,
		"max_attempts", w.cfg.MaxAttempts)

	timer := time.NewTimer(0)
	defer timer.Stop()

	attempts := 0 // consecutive failures of the row at cursor+1
	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher stopped", "cursor", w.Cursor())
			return nil
		case <-timer.C:
		}

		processed, err := w.PollOnce(ctx)
		switch {
		case err == nil:
			attempts = 0
			if processed {
				logger.Info("row processed", "row", w.Cursor())
			}
			timer.Reset(w.cfg.PollInterval)
		case ctx.Err() != nil:
			// The failure came from cancellation mid-call; exit cleanly.
			logger.Info("watcher stopped", "cursor", w.Cursor())
			return nil
		default:
			attempts++
			logger.Error("row processing failed",
				"row", w.Cursor()+1,
				"attempt", attempts,
				"error", err)
			if w.cfg.MaxAttempts > 0 && attempts >= w.cfg.MaxAttempts {
				return fmt.Errorf("row %d failed %d times, giving up: %w", w.Cursor()+1, attempts, err)
			}
			timer.Reset(w.cfg.PollInterval + w.cfg.Backoff*time.Duration(attempts))
		}
	}
}

// PollOnce runs a single poll-detect-process cycle. It returns true when a
// row was processed and the cursor advanced. On failure the cursor is held so
// the same row is retried on the next cycle; no row is ever skipped, and a
// processed row is never revisited.
func (w *Watcher) PollOnce(ctx context.Context) (bool, error) {
	next := w.Cursor() + 1

	exists, err := w.rows.RowExists(ctx, next)
	if err != nil {
		return false, fmt.Errorf("poll row %d: %w", next, err)
	}
	if !exists {
		logger.Debug("no new row", "next", next)
		return false, nil
	}

	values, err := w.rows.ReadRow(ctx, next)
	if err != nil {
		return false, fmt.Errorf("read row %d: %w", next, err)
	}

	fields := template.FromRow(w.cfg.FieldNames, values)
	filled, missing := template.Fill(w.templateText, fields)
	if len(missing) > 0 {
		logger.Warn("template filled with missing fields", "row", next, "missing", missing)
	}

	if _, err := w.store.Save(filled, CategoryPrompt); err != nil {
		return false, fmt.Errorf("save prompt for row %d: %w", next, err)
	}

	reply, err := llm.Invoke(ctx, w.provider, filled)
	if err != nil {
		return false, fmt.Errorf("invoke model for row %d: %w", next, err)
	}

	if _, err := w.store.Save(reply, CategoryResponse); err != nil {
		return false, fmt.Errorf("save response for row %d: %w", next, err)
	}

	w.setCursor(next)
	return true, nil
}
