package watcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lunalabs/intakeflow/internal/llm"
)

// fakeRows serves rows 1..len(rows) and can inject failures per row.
type fakeRows struct {
	mu     sync.Mutex
	rows   [][]string
	failOn map[int]error // row -> error returned by ReadRow
	polls  int
}

func (f *fakeRows) RowExists(_ context.Context, row int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	return row >= 1 && row <= len(f.rows), nil
}

func (f *fakeRows) ReadRow(_ context.Context, row int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failOn[row]; ok && err != nil {
		return nil, err
	}
	if row < 1 || row > len(f.rows) {
		return nil, nil
	}
	return f.rows[row-1], nil
}

func (f *fakeRows) clearFailure(row int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failOn, row)
}

type echoProvider struct {
	err   error
	calls int
}

func (p *echoProvider) Complete(_ context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	p.calls++
	if p.err != nil {
		return llm.CompletionResponse{}, p.err
	}
	return llm.CompletionResponse{Content: "reply to: " + req.Messages[0].Content}, nil
}

func (p *echoProvider) Name() string { return "echo" }

type memStore struct {
	mu    sync.Mutex
	saved []struct{ content, category string }
	err   error
}

func (s *memStore) Save(content, category string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, struct{ content, category string }{content, category})
	return category + ".txt", nil
}

func (s *memStore) categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.saved))
	for i, a := range s.saved {
		out[i] = a.category
	}
	return out
}

func newTestWatcher(rows *fakeRows, provider *echoProvider, store *memStore, cfg Config) *Watcher {
	if cfg.FieldNames == nil {
		cfg.FieldNames = []string{"name", "problem"}
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = time.Millisecond
	}
	return New(rows, provider, store, "Evaluate {name}: {problem}", cfg)
}

func TestPollOnce_ProcessesNextRow(t *testing.T) {
	rows := &fakeRows{rows: [][]string{{"header", "header"}, {"WidgetCo", "logistics"}}}
	provider := &echoProvider{}
	store := &memStore{}
	w := newTestWatcher(rows, provider, store, Config{StartRow: 1})

	processed, err := w.PollOnce(context.Background())
	if err != nil {
		t.Fatalf("PollOnce() error: %v", err)
	}
	if !processed {
		t.Fatal("PollOnce() should process the appended row")
	}
	if w.Cursor() != 2 {
		t.Errorf("Cursor() = %d, want 2", w.Cursor())
	}

	cats := store.categories()
	if len(cats) != 2 || cats[0] != CategoryPrompt || cats[1] != CategoryResponse {
		t.Errorf("saved categories = %v, want [filled response]", cats)
	}
	if got := store.saved[0].content; got != "Evaluate WidgetCo: logistics" {
		t.Errorf("filled prompt = %q", got)
	}
	if got := store.saved[1].content; !strings.HasPrefix(got, "reply to: ") {
		t.Errorf("response = %q", got)
	}
}

func TestPollOnce_IdleWhenNoNewRow(t *testing.T) {
	rows := &fakeRows{rows: [][]string{{"only row"}}}
	w := newTestWatcher(rows, &echoProvider{}, &memStore{}, Config{StartRow: 1})

	processed, err := w.PollOnce(context.Background())
	if err != nil {
		t.Fatalf("PollOnce() error: %v", err)
	}
	if processed {
		t.Error("PollOnce() must not process when no row past the cursor exists")
	}
	if w.Cursor() != 1 {
		t.Errorf("Cursor() = %d, want unchanged 1", w.Cursor())
	}
}

func TestPollOnce_FailureHoldsCursor(t *testing.T) {
	rowErr := fmt.Errorf("source unavailable")
	rows := &fakeRows{
		rows:   [][]string{{"h"}, {"row2"}, {"row3"}},
		failOn: map[int]error{2: rowErr},
	}
	provider := &echoProvider{}
	w := newTestWatcher(rows, provider, &memStore{}, Config{StartRow: 1})
	ctx := context.Background()

	// Row 2 fails on every attempt; the cursor must stay at 1 and row 3
	// must never be touched first.
	for i := 0; i < 3; i++ {
		processed, err := w.PollOnce(ctx)
		if processed || !errors.Is(err, rowErr) {
			t.Fatalf("attempt %d: processed=%v err=%v, want failure", i, processed, err)
		}
		if w.Cursor() != 1 {
			t.Fatalf("attempt %d: Cursor() = %d, want 1", i, w.Cursor())
		}
	}

	// Once row 2 recovers, processing resumes in order: 2 then 3.
	rows.clearFailure(2)
	for want := 2; want <= 3; want++ {
		processed, err := w.PollOnce(ctx)
		if err != nil || !processed {
			t.Fatalf("recovery poll: processed=%v err=%v", processed, err)
		}
		if w.Cursor() != want {
			t.Fatalf("Cursor() = %d, want %d", w.Cursor(), want)
		}
	}
}

func TestPollOnce_LLMFailureSavesPromptOnly(t *testing.T) {
	rows := &fakeRows{rows: [][]string{{"h"}, {"row2"}}}
	provider := &echoProvider{err: fmt.Errorf("quota exceeded")}
	store := &memStore{}
	w := newTestWatcher(rows, provider, store, Config{StartRow: 1})

	processed, err := w.PollOnce(context.Background())
	if processed || err == nil {
		t.Fatalf("PollOnce() = %v, %v; want failure", processed, err)
	}
	if w.Cursor() != 1 {
		t.Errorf("Cursor() = %d, want held at 1", w.Cursor())
	}

	cats := store.categories()
	if len(cats) != 1 || cats[0] != CategoryPrompt {
		t.Errorf("saved categories = %v, want only the filled prompt", cats)
	}
}

func TestRun_ProcessesAllRowsThenIdles(t *testing.T) {
	rows := &fakeRows{rows: [][]string{{"h"}, {"a"}, {"b"}, {"c"}}}
	provider := &echoProvider{}
	store := &memStore{}
	w := newTestWatcher(rows, provider, store, Config{StartRow: 1})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for w.Cursor() < 4 {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("watcher stalled at cursor %d", w.Cursor())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() after cancel = %v, want nil", err)
	}
	if provider.calls != 3 {
		t.Errorf("provider calls = %d, want 3 (one per data row)", provider.calls)
	}
}

func TestRun_MaxAttemptsExceeded(t *testing.T) {
	rows := &fakeRows{
		rows:   [][]string{{"h"}, {"poison"}},
		failOn: map[int]error{2: fmt.Errorf("malformed row")},
	}
	w := newTestWatcher(rows, &echoProvider{}, &memStore{}, Config{
		StartRow:    1,
		MaxAttempts: 3,
		Backoff:     time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := w.Run(ctx)
	if err == nil {
		t.Fatal("Run() should fail once the retry budget is exhausted")
	}
	if !strings.Contains(err.Error(), "giving up") {
		t.Errorf("Run() error = %v", err)
	}
	if w.Cursor() != 1 {
		t.Errorf("Cursor() = %d, want held at 1", w.Cursor())
	}
}

func TestRun_RestartReplaysFromStartRow(t *testing.T) {
	rows := &fakeRows{rows: [][]string{{"h"}, {"a"}}}
	store := &memStore{}
	cfg := Config{StartRow: 1}

	first := newTestWatcher(rows, &echoProvider{}, store, cfg)
	if _, err := first.PollOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if first.Cursor() != 2 {
		t.Fatalf("Cursor() = %d, want 2", first.Cursor())
	}

	// A fresh watcher has no durable checkpoint: it starts back at the
	// configured row and reprocesses row 2.
	second := newTestWatcher(rows, &echoProvider{}, store, cfg)
	if second.Cursor() != 1 {
		t.Errorf("fresh watcher Cursor() = %d, want StartRow 1", second.Cursor())
	}
	processed, err := second.PollOnce(context.Background())
	if err != nil || !processed {
		t.Errorf("restarted watcher should reprocess row 2, processed=%v err=%v", processed, err)
	}
}
