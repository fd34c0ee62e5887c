package extract

import "fmt"

// StructuralError marks a record missing a field that no type-based fallback
// exempts. It is fatal for the record (and the pair being crawled) because
// it usually means the upstream layout changed, not that data is absent.
type StructuralError struct {
	Field  string // which field could not be read
	Title  string // record title if it was read before the failure
	Detail string // optional extra context (e.g. the malformed value)
}

func (e *StructuralError) Error() string {
	msg := "missing " + e.Field
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Title != "" {
		msg += fmt.Sprintf(" (record %q)", e.Title)
	}
	return msg
}
