package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWorkspacePaths(t *testing.T) {
	root := "/ws"
	cases := []struct {
		got, want string
	}{
		{StatePath(root), "/ws/crawl_state.json"},
		{AuthorCachePath(root), "/ws/author_cache.json"},
		{CollectionsPath(root), "/ws/collections.json"},
		{TemplatesPath(root), "/ws/query_templates.json"},
		{ExportPath(root), "/ws/export"},
		{DBPath(root), "/ws/cache/papers.db"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("path = %q, want %q", c.got, c.want)
		}
	}
}

func TestIsWorkspace(t *testing.T) {
	dir := t.TempDir()
	if IsWorkspace(dir) {
		t.Error("empty directory treated as workspace")
	}

	if err := os.WriteFile(CollectionsPath(dir), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if !IsWorkspace(dir) {
		t.Error("directory with collections table not treated as workspace")
	}
}

func TestEnsureLayout(t *testing.T) {
	root := filepath.Join(t.TempDir(), "ws")
	if err := EnsureLayout(root); err != nil {
		t.Fatalf("EnsureLayout() error = %v", err)
	}

	for _, dir := range []string{root, ExportPath(root), filepath.Join(root, CacheDir)} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("%s not created: %v", dir, err)
		}
	}

	// Idempotent on an existing layout.
	if err := EnsureLayout(root); err != nil {
		t.Errorf("second EnsureLayout() error = %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	if got := ExpandPath("~/ws"); got != filepath.Join(home, "ws") {
		t.Errorf("ExpandPath(~/ws) = %q", got)
	}
	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandPath(/abs/path) = %q", got)
	}
	if got := ExpandPath(""); got != "" {
		t.Errorf("ExpandPath(\"\") = %q", got)
	}
}
