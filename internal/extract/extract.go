// Package extract turns record elements from a result listing into Paper
// values, tolerating the fields that legitimately go missing.
//
// Two kinds of absence are distinguished. Proceedings-type records simply do
// not carry venue, DOI, authors, or access metadata: those fall back
// silently. On any other record type, a missing venue or author list is a
// structural failure worth stopping on, while metrics, open-access, and DOI
// absences are recorded as unknown with a diagnostic, since pre-release
// records lack them for legitimate reasons.
package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/scholium/acmgrab/internal/browse"
	"github.com/scholium/acmgrab/internal/paper"
)

// OpenAccessLabel is the accessibility label on the footer link that marks a
// record as freely readable.
const OpenAccessLabel = "View online with eReader"

// Extractor reads Paper records off the current listing page.
type Extractor struct {
	Session  browse.Session
	Resolver *AuthorResolver
	// Logf receives non-fatal diagnostics. Defaults to stderr.
	Logf func(format string, args ...any)
}

func (x *Extractor) logf(format string, args ...any) {
	if x.Logf != nil {
		x.Logf(format, args...)
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// ExtractPaper extracts one Paper from a record element.
func (x *Extractor) ExtractPaper(ctx context.Context, rec browse.Element) (paper.Paper, error) {
	var p paper.Paper

	// Date and title are load-bearing: a record without them is broken,
	// not sparse.
	dateEl, ok := rec.Find(browse.PubDate)
	if !ok {
		return p, &StructuralError{Field: "publication date"}
	}
	month, year, err := paper.SplitPubDate(dateEl.Text())
	if err != nil {
		return p, &StructuralError{Field: "publication date", Detail: err.Error()}
	}
	p.PubMonth, p.PubYear = month, year

	titleEl, ok := rec.Find(browse.ItemTitle)
	if !ok {
		return p, &StructuralError{Field: "title"}
	}
	p.Title = titleEl.Text()

	if err := x.extractAbstract(ctx, rec, &p); err != nil {
		return p, err
	}

	// The type label is read once and drives every fallback below.
	typeEl, ok := rec.Find(browse.RecordType)
	if !ok {
		return p, &StructuralError{Field: "record type", Title: p.Title}
	}
	p.RecordType = typeEl.Text()
	proceedings := paper.IsProceedings(p.RecordType)

	if err := x.extractVenue(rec, &p, proceedings); err != nil {
		return p, err
	}
	x.extractDOI(rec, &p, proceedings)
	x.extractMetrics(rec, &p)
	x.extractOpenAccess(rec, &p, proceedings)

	if err := x.extractAuthors(ctx, rec, &p, proceedings); err != nil {
		return p, err
	}

	return p, nil
}

func (x *Extractor) extractAbstract(ctx context.Context, rec browse.Element, p *paper.Paper) error {
	abstractEl, ok := rec.Find(browse.Abstract)
	if !ok {
		p.ShortAbstract = ""
		return nil
	}
	// Expand the excerpt before reading so the text reflects the fuller
	// version.
	if more, ok := rec.Find(browse.AbstractMore); ok {
		if err := x.Session.Activate(ctx, more); err != nil {
			return fmt.Errorf("expanding abstract: %w", err)
		}
	}
	p.ShortAbstract = paper.StripEllipsis(abstractEl.Text())
	return nil
}

func (x *Extractor) extractVenue(rec browse.Element, p *paper.Paper, proceedings bool) error {
	venueEl, ok := rec.Find(browse.Venue)
	if ok {
		p.Venue = paper.VenueLabel(venueEl.Text())
		return nil
	}
	if proceedings {
		p.Venue = ""
		return nil
	}
	return &StructuralError{Field: "venue", Title: p.Title}
}

func (x *Extractor) extractDOI(rec browse.Element, p *paper.Paper, proceedings bool) {
	if doiEl, ok := rec.Find(browse.DOILink); ok {
		if href, ok := doiEl.Attr("href"); ok {
			if doi, ok := paper.DOISuffix(href); ok {
				p.DOI = &doi
				return
			}
			x.logf("unrecognized DOI href %q for record %q", href, p.Title)
		}
	}
	if proceedings {
		empty := ""
		p.DOI = &empty
		return
	}
	// Some records legitimately predate DOI assignment.
	x.logf("no DOI for record %q; recording as unknown", p.Title)
	p.DOI = nil
}

func (x *Extractor) extractMetrics(rec browse.Element, p *paper.Paper) {
	if el, ok := rec.Find(browse.Citations); ok {
		text := el.Text()
		p.CitationCount = &text
	}
	if el, ok := rec.Find(browse.Downloads); ok {
		text := el.Text()
		p.DownloadCount = &text
	} else {
		// Happens when a record was pre-uploaded ahead of its release.
		x.logf("no download count for record %q", p.Title)
	}
}

func (x *Extractor) extractOpenAccess(rec browse.Element, p *paper.Paper, proceedings bool) {
	if el, ok := rec.Find(browse.FreeAccess); ok {
		label, _ := el.Attr("aria-label")
		open := label == OpenAccessLabel
		p.OpenAccess = &open
		return
	}
	if !proceedings {
		x.logf("no open-access marker for record %q", p.Title)
	}
	p.OpenAccess = nil
}

func (x *Extractor) extractAuthors(ctx context.Context, rec browse.Element, p *paper.Paper, proceedings bool) error {
	list, ok := rec.Find(browse.AuthorsList)
	if !ok {
		if proceedings {
			p.Authors = nil
			return nil
		}
		return &StructuralError{Field: "authors list", Title: p.Title}
	}

	authors, err := x.Resolver.Resolve(ctx, list)
	if err != nil {
		return fmt.Errorf("resolving authors for %q: %w", p.Title, err)
	}
	p.Authors = authors
	return nil
}
