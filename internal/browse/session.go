// Package browse abstracts the rendered search interface behind a small
// navigation contract. Extraction code depends only on Session and Element;
// the HTTP implementation (resty + goquery) and the in-memory fake both
// satisfy it.
package browse

import (
	"context"
	"errors"
)

// Selector locates elements within a page or within another element.
// Values are CSS selectors understood by the underlying DOM engine.
type Selector string

// Selectors for every element class the crawler reads. Centralized so a
// layout change upstream is a one-file fix.
const (
	NoResults     Selector = "div.search-result__no-result"
	CookieDecline Selector = "#CybotCookiebotDialogBodyLevelButtonLevelOptinDeclineAll"
	HitsLength    Selector = "span.hitsLength"
	NextPage      Selector = `a[title="Next Page"]`
	ResultList    Selector = "div.search-result ul.items-results"
	ResultItem    Selector = "li.issue-item-container"
	PubDate       Selector = "div.bookPubDate"
	ItemTitle     Selector = "h5.issue-item__title"
	Abstract      Selector = "div.issue-item__abstract p"
	AbstractMore  Selector = "div.issue-item__abstract p span"
	Venue         Selector = "div.issue-item__detail a span.epub-section__title"
	DOILink       Selector = "div.issue-item__detail a.issue-item__doi"
	RecordType    Selector = "div.issue-item__citation div.issue-heading"
	Citations     Selector = "li.metric-holder span.citation"
	Downloads     Selector = "li.metric-holder span.metric"
	FreeAccess    Selector = "div.issue-item__footer-links ul:nth-of-type(2) li:first-child"
	AuthorsList   Selector = `ul[aria-label="authors"]`
	AuthorItem    Selector = "li"
	AuthorLink    Selector = "a"
	AuthorExpand  Selector = "li.count-list a"
	ProfileEmail  Selector = `a[data-title="Author’s Email"]`
)

// Element is one node of a rendered page. Lookups are optional: absence is a
// normal outcome that callers branch on, never an error.
type Element interface {
	// Text returns the node's visible text, whitespace-normalized.
	Text() string
	// Attr returns the named attribute and whether it is present.
	Attr(name string) (string, bool)
	// Find returns the first descendant matching sel.
	Find(sel Selector) (Element, bool)
	// FindAll returns all descendants matching sel, in document order.
	FindAll(sel Selector) []Element
}

// Session is one browsing context over the search interface. It is not safe
// for concurrent use: navigating away (author profiles) and back is a
// stateful operation on the single context.
type Session interface {
	// Navigate loads the target URL, replacing the current page.
	Navigate(ctx context.Context, target string) error
	// Location returns the URL of the current page.
	Location() string
	// Back returns to the previously loaded page.
	Back(ctx context.Context) error
	// Find returns the first element on the current page matching sel.
	Find(sel Selector) (Element, bool)
	// FindAll returns all elements on the current page matching sel.
	FindAll(sel Selector) []Element
	// Activate triggers an element: following its link if it has one,
	// otherwise toggling it in place.
	Activate(ctx context.Context, el Element) error
	// ScrollIntoView brings an element into the viewport where the
	// rendering engine requires it before interaction.
	ScrollIntoView(el Element)
	// Settle waits out the fixed delay a freshly issued query needs
	// before its results are dependable.
	Settle(ctx context.Context)
}

// Session errors.
var (
	ErrNoHistory  = errors.New("no page to go back to")
	ErrNavigation = errors.New("navigation failed")
)
