// ABOUTME: Tests for the memory and file envelope caches
// ABOUTME: Covers miss/hit behavior, aliasing safety and corrupt entries
package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()

	if _, ok := c.Get("rec-a"); ok {
		t.Fatal("expected miss on empty cache")
	}

	if err := c.Put("rec-a", []float64{0.1, 0.5, 1.0}); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	envelope, ok := c.Get("rec-a")
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if len(envelope) != 3 || envelope[2] != 1.0 {
		t.Errorf("unexpected envelope %v", envelope)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", c.Len())
	}

	c.Delete("rec-a")
	if _, ok := c.Get("rec-a"); ok {
		t.Error("expected miss after Delete")
	}
}

func TestMemoryCacheDoesNotAliasCallerSlices(t *testing.T) {
	c := NewMemoryCache()

	original := []float64{0.5, 0.5}
	if err := c.Put("rec-a", original); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	original[0] = 99 // caller mutation must not reach the cache

	got, _ := c.Get("rec-a")
	if got[0] != 0.5 {
		t.Errorf("cache aliased caller slice: got %v", got)
	}

	got[1] = 99 // reader mutation must not reach the cache either
	again, _ := c.Get("rec-a")
	if again[1] != 0.5 {
		t.Errorf("cache aliased returned slice: got %v", again)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := NewFileCache(filepath.Join(t.TempDir(), "waveforms"), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}

	if _, ok := c.Get("rec-a"); ok {
		t.Fatal("expected miss on empty cache")
	}

	want := []float64{0, 0.25, 0.5, 1.0}
	if err := c.Put("rec-a", want); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	got, ok := c.Get("rec-a")
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d = %f, want %f", i, got[i], want[i])
		}
	}

	// Entries survive a reopen of the same directory.
	reopened, err := NewFileCache(c.Dir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFileCache() reopen error: %v", err)
	}
	if _, ok := reopened.Get("rec-a"); !ok {
		t.Error("expected entry to survive reopen")
	}
}

func TestFileCacheCorruptEntryIsAMiss(t *testing.T) {
	c, err := NewFileCache(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}

	if err := c.Put("rec-a", []float64{1}); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if err := os.WriteFile(c.path("rec-a"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("corrupting entry: %v", err)
	}

	if _, ok := c.Get("rec-a"); ok {
		t.Error("expected corrupt entry to read as a miss")
	}
}

func TestFileCacheDeleteAndClear(t *testing.T) {
	c, err := NewFileCache(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}

	if err := c.Delete("absent"); err != nil {
		t.Errorf("Delete() of absent entry: %v", err)
	}

	if err := c.Put("rec-a", []float64{1}); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if err := c.Delete("rec-a"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, ok := c.Get("rec-a"); ok {
		t.Error("expected miss after Delete")
	}

	if err := c.Put("rec-b", []float64{1}); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, ok := c.Get("rec-b"); ok {
		t.Error("expected miss after Clear")
	}
	// The directory is usable again after Clear.
	if err := c.Put("rec-c", []float64{1}); err != nil {
		t.Errorf("Put() after Clear: %v", err)
	}
}
