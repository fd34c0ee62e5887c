// Package query assembles search URLs from a named template file.
//
// The templates file is a JSON object of named URL templates with {query}
// and {concept_id} placeholders, plus two special suffix templates:
// "after_before_year_attrs" ({after_year}, {before_year}) and
// "page_crawling_attrs" ({page_size}, {start_page}). Year and paging
// attributes are bound when the template is built; query and concept id are
// bound per (query, collection) pair.
package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Names of the suffix templates appended to a base template.
const (
	YearAttrsTemplate = "after_before_year_attrs"
	PageAttrsTemplate = "page_crawling_attrs"
)

// ErrUnknownTemplate is returned when a requested template name is not in
// the templates file.
var ErrUnknownTemplate = errors.New("unknown query template")

// Templates is the set of named URL templates loaded from disk.
type Templates map[string]string

// LoadTemplates reads a JSON templates file.
func LoadTemplates(path string) (Templates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading templates file: %w", err)
	}

	var ts Templates
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, fmt.Errorf("parsing templates file: %w", err)
	}
	return ts, nil
}

// Template is a search-URL template with year and paging attributes already
// bound. Only {query} and {concept_id} remain to be filled.
type Template struct {
	urlTemplate string
}

// Build resolves a named base template and appends the year-filter and
// paging suffixes when their attributes are provided. years and pageAttrs
// must each be empty or hold exactly two values ([after, before] and
// [page_size, start_page] respectively).
func (ts Templates) Build(name string, years, pageAttrs []string) (Template, error) {
	base, ok := ts[name]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}

	if len(years) > 0 {
		if len(years) != 2 {
			return Template{}, fmt.Errorf("year interval needs exactly two values, got %d", len(years))
		}
		suffix, ok := ts[YearAttrsTemplate]
		if !ok {
			return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, YearAttrsTemplate)
		}
		base += expand(suffix, map[string]string{
			"after_year":  years[0],
			"before_year": years[1],
		})
	}

	if len(pageAttrs) > 0 {
		if len(pageAttrs) != 2 {
			return Template{}, fmt.Errorf("page attributes need exactly two values (page size, start page), got %d", len(pageAttrs))
		}
		suffix, ok := ts[PageAttrsTemplate]
		if !ok {
			return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, PageAttrsTemplate)
		}
		base += expand(suffix, map[string]string{
			"page_size":  pageAttrs[0],
			"start_page": pageAttrs[1],
		})
	}

	return Template{urlTemplate: base}, nil
}

// URL produces the final search URL for one (query, collection) pair.
func (t Template) URL(query, conceptID string) string {
	return expand(t.urlTemplate, map[string]string{
		"query":      url.QueryEscape(query),
		"concept_id": conceptID,
	})
}

// expand substitutes {name} placeholders.
func expand(template string, vars map[string]string) string {
	out := template
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out
}
