package lookup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lunalabs/intakeflow/internal/domain"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "lookup.json"))
}

func TestCache_PutGet(t *testing.T) {
	c := testCache(t)

	if c.Has("ref-1") {
		t.Error("Has() should be false before Put")
	}

	if err := c.Put("ref-1", "00001234"); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	if !c.Has("ref-1") {
		t.Error("Has() should be true after Put")
	}

	id, err := c.Get("ref-1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if id != "00001234" {
		t.Errorf("Get() = %q, want %q", id, "00001234")
	}
}

func TestCache_Get_Missing(t *testing.T) {
	c := testCache(t)

	_, err := c.Get("nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestCache_Put_Idempotent(t *testing.T) {
	c := testCache(t)

	if err := c.Put("ref-1", "00001234"); err != nil {
		t.Fatalf("first Put() error: %v", err)
	}
	if err := c.Put("ref-1", "00001234"); err != nil {
		t.Errorf("repeat Put() with same value should be a no-op, got %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCache_Put_Conflict(t *testing.T) {
	c := testCache(t)

	if err := c.Put("ref-1", "00001234"); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	err := c.Put("ref-1", "99990000")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("Put() with differing value error = %v, want ErrConflict", err)
	}

	// The stored value must be untouched.
	id, err := c.Get("ref-1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if id != "00001234" {
		t.Errorf("Get() after conflict = %q, want original %q", id, "00001234")
	}
}

func TestCache_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lookup.json")

	if err := New(path).Put("ref-1", "00001234"); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	id, err := New(path).Get("ref-1")
	if err != nil {
		t.Fatalf("Get() from fresh instance error: %v", err)
	}
	if id != "00001234" {
		t.Errorf("Get() = %q, want %q", id, "00001234")
	}
}

func TestCache_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lookup.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(path)
	if c.Has("anything") {
		t.Error("Has() on empty file should be false")
	}
	if err := c.Put("ref", "id"); err != nil {
		t.Errorf("Put() on empty file error: %v", err)
	}
}
