// Package authorcache persists resolved author details across runs.
//
// Looking up an author means navigating away from the result listing to the
// profile page and back, the most expensive operation in a crawl. An id seen
// once is therefore never fetched again: entries are written once and never
// invalidated.
package authorcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Entry is the cached detail for one author id.
type Entry struct {
	Name  string  `json:"display_name"`
	Email *string `json:"email"`
}

// Cache maps author id to resolved detail. Not safe for concurrent use;
// crawl access is strictly sequential.
type Cache struct {
	path    string
	entries map[string]Entry
}

// Load reads the cache file, or starts empty if it does not exist yet.
func Load(path string) (*Cache, error) {
	c := &Cache{path: path, entries: make(map[string]Entry)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("reading author cache: %w", err)
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("parsing author cache: %w", err)
	}
	return c, nil
}

// Get returns the cached entry for id.
func (c *Cache) Get(id string) (Entry, bool) {
	e, ok := c.entries[id]
	return e, ok
}

// Put stores an entry in memory. Call Flush to make it durable.
func (c *Cache) Put(id string, e Entry) {
	c.entries[id] = e
}

// Len returns the number of cached authors.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Flush rewrites the cache file in full, via temp file + rename so an
// interrupted flush never leaves a torn cache.
func (c *Cache) Flush() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding author cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".tmp-authors-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing author cache: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing author cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("replacing author cache: %w", err)
	}

	success = true
	return nil
}
