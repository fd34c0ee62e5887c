// Package collection defines the registry of crawlable collections.
//
// A collection is a named slice of the digital library (a conference series
// or sponsor) identified upstream by an opaque concept id that is spliced
// into search URLs.
package collection

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
)

// Collection maps a short human id to the service's concept id.
type Collection struct {
	ID        string `json:"id"`
	ConceptID string `json:"concept_id"`
}

// IDPattern is the regex pattern for valid collection IDs.
var IDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// Registry errors.
var (
	ErrEmptyID  = errors.New("collection id is required")
	ErrNotFound = errors.New("collection not found")
)

// Registry holds the known collections, loaded from a collections file.
type Registry struct {
	byID  map[string]Collection
	order []string
}

// LoadRegistry reads a collections file: a JSON object mapping collection id
// to concept id, e.g. {"sigir": "119271", "cikm": "119606"}.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading collections file: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing collections file: %w", err)
	}

	r := &Registry{byID: make(map[string]Collection, len(raw))}
	for id, conceptID := range raw {
		if err := ValidateID(id); err != nil {
			return nil, fmt.Errorf("collection %q: %w", id, err)
		}
		r.byID[id] = Collection{ID: id, ConceptID: conceptID}
		r.order = append(r.order, id)
	}
	sort.Strings(r.order)

	return r, nil
}

// ValidateID validates a collection id.
func ValidateID(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if !IDPattern.MatchString(id) {
		return fmt.Errorf("invalid collection id %q: must be alphanumeric with hyphens or underscores", id)
	}
	return nil
}

// Get returns the collection with the given id.
func (r *Registry) Get(id string) (Collection, error) {
	c, ok := r.byID[id]
	if !ok {
		return Collection{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return c, nil
}

// All returns every registered collection in stable (sorted-id) order.
func (r *Registry) All() []Collection {
	out := make([]Collection, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Select resolves a list of requested ids, or every collection when the
// single literal "all" is requested. Unknown ids fail before any crawling.
func (r *Registry) Select(ids []string) ([]Collection, error) {
	if len(ids) == 1 && ids[0] == "all" {
		return r.All(), nil
	}

	out := make([]Collection, 0, len(ids))
	for _, id := range ids {
		c, err := r.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
