package browse

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// normalizeText trims and collapses whitespace the way a rendering engine
// would present it.
func normalizeText(s string) string {
	s = strings.TrimSpace(s)
	return innerWhitespace.ReplaceAllString(s, " ")
}

// htmlElement wraps a goquery selection as an Element.
type htmlElement struct {
	sel *goquery.Selection
}

func (e htmlElement) Text() string {
	return normalizeText(e.sel.Text())
}

func (e htmlElement) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

func (e htmlElement) Find(sel Selector) (Element, bool) {
	found := e.sel.Find(string(sel))
	if found.Length() == 0 {
		return nil, false
	}
	return htmlElement{sel: found.First()}, true
}

func (e htmlElement) FindAll(sel Selector) []Element {
	var out []Element
	e.sel.Find(string(sel)).Each(func(_ int, s *goquery.Selection) {
		out = append(out, htmlElement{sel: s})
	})
	return out
}

// page holds the parsed document for the current location and answers the
// session-level lookups shared by the HTTP session and the fake.
type page struct {
	doc *goquery.Document
}

func (p *page) find(sel Selector) (Element, bool) {
	if p.doc == nil {
		return nil, false
	}
	found := p.doc.Find(string(sel))
	if found.Length() == 0 {
		return nil, false
	}
	return htmlElement{sel: found.First()}, true
}

func (p *page) findAll(sel Selector) []Element {
	if p.doc == nil {
		return nil
	}
	var out []Element
	p.doc.Find(string(sel)).Each(func(_ int, s *goquery.Selection) {
		out = append(out, htmlElement{sel: s})
	})
	return out
}

func parsePage(html string) (*page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return &page{doc: doc}, nil
}

// hrefOf returns an element's link target, if it is a link.
func hrefOf(el Element) (string, bool) {
	if el == nil {
		return "", false
	}
	href, ok := el.Attr("href")
	if !ok || href == "" {
		return "", false
	}
	return href, true
}
