// Package crawl drives the page-by-page traversal of result listings and
// commits progress after every page.
//
// One (query, collection) pair is processed to completion before the next
// begins: the browsing session is a single shared context that author-profile
// detours navigate away from and back to, so nothing here is concurrent.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/scholium/acmgrab/internal/browse"
	"github.com/scholium/acmgrab/internal/checkpoint"
	"github.com/scholium/acmgrab/internal/extract"
	"github.com/scholium/acmgrab/internal/paper"
)

// DefaultPageSize is the service's default number of records per page.
const DefaultPageSize = 20

// ErrResultListMissing means a page carried neither records nor any
// exhaustion indicator. That points at an upstream layout change and is
// surfaced rather than skipped.
var ErrResultListMissing = errors.New("result list missing without exhaustion signal")

// resultCapNotice matches the service behavior of refusing to page past its
// displayable maximum and asking for a refined query instead.
const resultCapNotice = "service caps results per query; skipping to the next collection"

// Outcome is the terminal state of one (query, collection) pair.
type Outcome int

const (
	// Exhausted means every result page was processed.
	Exhausted Outcome = iota
	// ResultCapped means the service refused to page further.
	ResultCapped
	// Skipped means a prior run already exhausted the pair.
	Skipped
)

// Pair is one unit of crawl work.
type Pair struct {
	Query      string
	Collection string
	// URL is the fresh search URL, used only when no checkpoint exists.
	URL string
}

// Crawler walks queries × collections sequentially.
type Crawler struct {
	Session   browse.Session
	Store     *checkpoint.Store
	Extractor *extract.Extractor
	PageSize  int
	// Logf receives progress and notices. Defaults to stderr.
	Logf func(format string, args ...any)
}

func (c *Crawler) logf(format string, args ...any) {
	if c.Logf != nil {
		c.Logf(format, args...)
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func (c *Crawler) pageSize() int {
	if c.PageSize > 0 {
		return c.PageSize
	}
	return DefaultPageSize
}

// Run processes every pair in order. A fatal condition aborts the whole run
// with the failing location attached; pages committed before it stay valid,
// so the next invocation resumes precisely.
func (c *Crawler) Run(ctx context.Context, pairs []Pair) error {
	for _, p := range pairs {
		c.logf("query %q, collection %q", p.Query, p.Collection)
		outcome, err := c.runPair(ctx, p)
		if err != nil {
			return fmt.Errorf("crawling (%s, %s) at %s: %w", p.Query, p.Collection, c.Session.Location(), err)
		}
		switch outcome {
		case Skipped:
			c.logf("  already extracted, skipping")
		case ResultCapped:
			c.logf("  %s", resultCapNotice)
		case Exhausted:
			c.logf("  exhausted")
		}
	}
	return nil
}

// runPair is the pagination state machine for one pair.
func (c *Crawler) runPair(ctx context.Context, p Pair) (Outcome, error) {
	// Start: resolve the resume target.
	target := c.Store.Resume(p.Query, p.Collection)
	switch target.Kind {
	case checkpoint.Done:
		return Skipped, nil
	case checkpoint.ResumeAt:
		if err := c.Session.Navigate(ctx, target.URL); err != nil {
			return 0, err
		}
	default:
		if err := c.Session.Navigate(ctx, p.URL); err != nil {
			return 0, err
		}
		// Fresh queries need a settling delay; resumed pages do not.
		c.Session.Settle(ctx)
	}

	c.dismissCookieDialog(ctx)

	hits, err := c.readHits()
	if err != nil {
		return 0, err
	}
	c.logf("  %d results", hits)

	size := c.pageSize()
	pagesTotal := (hits + size - 1) / size
	pagesDone := startPageOffset(c.Session.Location())

	// The accumulator spans process runs: prior pages come from the
	// checkpoint store.
	papers := append([]paper.Paper(nil), c.Store.Papers(p.Query, p.Collection)...)

	for {
		// CheckingExhaustion: the refinement marker means the service
		// truncated the result set itself.
		if _, capped := c.Session.Find(browse.NoResults); capped {
			return ResultCapped, nil
		}

		// ExtractingPage.
		list, ok := c.Session.Find(browse.ResultList)
		if !ok {
			return 0, ErrResultListMissing
		}
		for _, item := range list.FindAll(browse.ResultItem) {
			c.Session.ScrollIntoView(item)
			extracted, err := c.Extractor.ExtractPaper(ctx, item)
			if err != nil {
				return 0, err
			}
			papers = append(papers, extracted)
		}

		pagesDone++
		c.logf("  page %d/%d (%d papers so far)", pagesDone, pagesTotal, len(papers))

		// Advancing: commit this page with the next resume value, then
		// move. Committing first keeps the invariant that the
		// checkpoint never points past records missing from the
		// accumulator.
		next, hasNext := c.Session.Find(browse.NextPage)
		nextURL := ""
		if hasNext {
			if href, ok := next.Attr("href"); ok {
				nextURL = resolveAgainst(c.Session.Location(), href)
			}
		}
		if err := c.Store.Commit(p.Query, p.Collection, papers, nextURL); err != nil {
			return 0, err
		}
		if nextURL == "" {
			return Exhausted, nil
		}

		c.Session.ScrollIntoView(next)
		if err := c.Session.Activate(ctx, next); err != nil {
			return 0, err
		}
	}
}

// dismissCookieDialog declines the consent banner when it renders. Absence
// is the normal case.
func (c *Crawler) dismissCookieDialog(ctx context.Context) {
	if dialog, ok := c.Session.Find(browse.CookieDecline); ok {
		// Best effort: a consent banner that cannot be dismissed does
		// not block reading the listing.
		if err := c.Session.Activate(ctx, dialog); err != nil {
			c.logf("  cookie dialog: %v", err)
		}
	}
}

// readHits parses the total-hit counter, which renders with thousands
// separators.
func (c *Crawler) readHits() (int, error) {
	el, ok := c.Session.Find(browse.HitsLength)
	if !ok {
		return 0, fmt.Errorf("hit counter not found at %s", c.Session.Location())
	}
	text := strings.ReplaceAll(el.Text(), ",", "")
	hits, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("parsing hit count %q: %w", el.Text(), err)
	}
	return hits, nil
}

// startPageOffset recovers how many pages a resumed URL already covers, for
// progress reporting only. Stopping is governed by the page affordances.
// Pages are zero-indexed in the startPage parameter, so a resume URL with
// startPage=N means N pages are already committed.
func startPageOffset(location string) int {
	u, err := url.Parse(location)
	if err != nil {
		return 0
	}
	v := u.Query().Get("startPage")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// resolveAgainst makes href absolute relative to the current location.
// Opaque or unparsable values pass through untouched.
func resolveAgainst(location, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	base, err := url.Parse(location)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
