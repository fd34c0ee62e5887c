// Package paper defines the core domain types for extracted bibliographic records.
package paper

import (
	"errors"
	"fmt"
	"strings"
)

// Paper represents one bibliographic record from a result listing.
//
// Nullable fields use pointers: a nil CitationCount means the metric widget
// was not rendered for this record, which is distinct from a rendered "0".
type Paper struct {
	PubMonth      string      `json:"publication_month"`
	PubYear       string      `json:"publication_year"`
	Title         string      `json:"title"`
	ShortAbstract string      `json:"short_abstract"`
	Venue         string      `json:"venue"`
	DOI           *string     `json:"doi"`
	RecordType    string      `json:"record_type"`
	CitationCount *string     `json:"citation_count"`
	DownloadCount *string     `json:"download_count"`
	OpenAccess    *bool       `json:"open_access"`
	Authors       []AuthorRef `json:"authors"`
}

// AuthorRef is one author attribution on one paper.
//
// ID is the profile identifier when the author has a profile page. Authors
// without a profile fall back to ID == Name; those IDs are not globally
// unique, since distinct people can share a display name.
type AuthorRef struct {
	Name  string  `json:"display_name"`
	ID    string  `json:"id"`
	Email *string `json:"email"`
}

// ErrMalformedDate is returned when a publication date field does not split
// into exactly a month and a year.
var ErrMalformedDate = errors.New("publication date is not of the form \"Month Year\"")

// SplitPubDate splits a "Month Year" field into its two tokens.
func SplitPubDate(text string) (month, year string, err error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedDate, text)
	}
	return fields[0], fields[1], nil
}

// StripEllipsis removes a trailing excerpt marker from abstract text, both
// the ASCII "..." and the single-rune ellipsis, along with the space that
// precedes it in the listing markup.
func StripEllipsis(text string) string {
	text = strings.ReplaceAll(text, " ...", "")
	text = strings.ReplaceAll(text, "…", "")
	return strings.TrimRight(text, " ")
}

// VenueLabel reduces a venue label to the part before its first colon.
// ACM renders venues as "CHI '21: Proceedings of ...": only the short name
// is kept.
func VenueLabel(text string) string {
	label, _, _ := strings.Cut(text, ":")
	return label
}

// DOISuffix extracts the last two path segments of a DOI link, the
// "prefix/suffix" pair that identifies the record. Returns false when the
// href has fewer than two segments, which indicates a link scheme this
// heuristic cannot interpret.
func DOISuffix(href string) (string, bool) {
	trimmed := strings.TrimRight(href, "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 || parts[len(parts)-1] == "" || parts[len(parts)-2] == "" {
		return "", false
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1], true
}

// IsProceedings reports whether a record-type label classifies the record as
// a proceedings entry. Proceedings records legitimately lack venue, DOI,
// authors, and access metadata, so several extraction fallbacks key on this.
func IsProceedings(recordType string) bool {
	return strings.Contains(strings.ToUpper(recordType), "PROCEEDING")
}
