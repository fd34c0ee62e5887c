package browse

import (
	"context"
	"fmt"
)

// FakeSession is an in-memory Session over canned HTML pages, for tests and
// offline runs. It shares the goquery element implementation with
// HTTPSession so selector behavior is identical.
type FakeSession struct {
	// Pages maps URL to its HTML document.
	Pages map[string]string
	// Visits records every navigated URL in order, including Back targets.
	Visits []string

	current string
	history []string
	page    *page
}

// NewFakeSession creates a fake session over the given pages.
func NewFakeSession(pages map[string]string) *FakeSession {
	return &FakeSession{Pages: pages}
}

func (s *FakeSession) Navigate(ctx context.Context, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.load(target); err != nil {
		return err
	}
	if s.current != "" {
		s.history = append(s.history, s.current)
	}
	s.current = target
	return nil
}

func (s *FakeSession) load(target string) error {
	html, ok := s.Pages[target]
	if !ok {
		return fmt.Errorf("%w: no page at %s", ErrNavigation, target)
	}
	p, err := parsePage(html)
	if err != nil {
		return err
	}
	s.page = p
	s.Visits = append(s.Visits, target)
	return nil
}

func (s *FakeSession) Location() string {
	return s.current
}

func (s *FakeSession) Back(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(s.history) == 0 {
		return ErrNoHistory
	}
	prev := s.history[len(s.history)-1]
	if err := s.load(prev); err != nil {
		return err
	}
	s.history = s.history[:len(s.history)-1]
	s.current = prev
	return nil
}

func (s *FakeSession) Find(sel Selector) (Element, bool) {
	if s.page == nil {
		return nil, false
	}
	return s.page.find(sel)
}

func (s *FakeSession) FindAll(sel Selector) []Element {
	if s.page == nil {
		return nil
	}
	return s.page.findAll(sel)
}

func (s *FakeSession) Activate(ctx context.Context, el Element) error {
	href, ok := hrefOf(el)
	if !ok {
		return nil
	}
	return s.Navigate(ctx, href)
}

func (s *FakeSession) ScrollIntoView(el Element) {}

func (s *FakeSession) Settle(ctx context.Context) {}
