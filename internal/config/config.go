// Package config handles workspace layout and global configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// A workspace is the directory a crawl operates in: the state file, the
// author cache, the input tables, and the export output all live under it.
const (
	StateFile       = "crawl_state.json"
	AuthorCacheFile = "author_cache.json"
	CollectionsFile = "collections.json"
	TemplatesFile   = "query_templates.json"
	ExportDir       = "export"
	CacheDir        = "cache"
	DBFile          = "papers.db"
)

// StatePath returns the path to the crawl state file from a workspace root.
func StatePath(root string) string {
	return filepath.Join(root, StateFile)
}

// AuthorCachePath returns the path to the author cache from a workspace root.
func AuthorCachePath(root string) string {
	return filepath.Join(root, AuthorCacheFile)
}

// CollectionsPath returns the path to collections.json from a workspace root.
func CollectionsPath(root string) string {
	return filepath.Join(root, CollectionsFile)
}

// TemplatesPath returns the path to query_templates.json from a workspace root.
func TemplatesPath(root string) string {
	return filepath.Join(root, TemplatesFile)
}

// ExportPath returns the path to the export directory from a workspace root.
func ExportPath(root string) string {
	return filepath.Join(root, ExportDir)
}

// DBPath returns the path to papers.db from a workspace root.
func DBPath(root string) string {
	return filepath.Join(root, CacheDir, DBFile)
}

// IsWorkspace checks whether the given path looks like an initialized
// workspace. The collections table is the marker: a crawl cannot run
// without it.
func IsWorkspace(root string) bool {
	info, err := os.Stat(CollectionsPath(root))
	return err == nil && !info.IsDir()
}

// EnsureLayout creates the workspace directories that commands write into.
func EnsureLayout(root string) error {
	for _, dir := range []string{root, ExportPath(root), filepath.Join(root, CacheDir)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
