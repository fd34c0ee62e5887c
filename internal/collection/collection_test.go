package collection

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeCollections(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "collections.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing collections file: %v", err)
	}
	return path
}

func TestLoadRegistry(t *testing.T) {
	path := writeCollections(t, `{"sigir": "119271", "cikm": "119606", "www": "119622"}`)

	r, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}

	c, err := r.Get("sigir")
	if err != nil {
		t.Fatalf("Get(sigir) error = %v", err)
	}
	if c.ConceptID != "119271" {
		t.Errorf("ConceptID = %q, want 119271", c.ConceptID)
	}

	all := r.All()
	if len(all) != 3 {
		t.Fatalf("All() returned %d collections, want 3", len(all))
	}
	// Sorted by id for stable iteration order across runs.
	if all[0].ID != "cikm" || all[1].ID != "sigir" || all[2].ID != "www" {
		t.Errorf("All() order = %v", all)
	}
}

func TestLoadRegistry_InvalidID(t *testing.T) {
	path := writeCollections(t, `{"bad id!": "1"}`)
	if _, err := LoadRegistry(path); err == nil {
		t.Fatal("LoadRegistry() error = nil, want invalid id error")
	}
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	if _, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("LoadRegistry() error = nil, want read error")
	}
}

func TestSelect(t *testing.T) {
	path := writeCollections(t, `{"sigir": "119271", "cikm": "119606"}`)
	r, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}

	got, err := r.Select([]string{"cikm"})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "cikm" {
		t.Errorf("Select(cikm) = %v", got)
	}

	got, err = r.Select([]string{"all"})
	if err != nil {
		t.Fatalf("Select(all) error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Select(all) returned %d collections, want 2", len(got))
	}

	if _, err := r.Select([]string{"sigir", "unknown"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Select(unknown) error = %v, want ErrNotFound", err)
	}
}
