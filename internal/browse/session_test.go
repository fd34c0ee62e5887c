package browse

import (
	"context"
	"errors"
	"testing"
)

const listingHTML = `<html><body>
<div class="search-result">
  <span class="hitsLength">1,234</span>
  <ul class="items-results">
    <li class="issue-item-container">
      <h5 class="issue-item__title">First   Paper
        Title</h5>
    </li>
    <li class="issue-item-container">
      <h5 class="issue-item__title">Second Paper</h5>
    </li>
  </ul>
</div>
<a title="Next Page" href="/page/2">&gt;</a>
</body></html>`

func TestFakeSession_FindAndText(t *testing.T) {
	s := NewFakeSession(map[string]string{"https://example.org/search": listingHTML})
	ctx := context.Background()

	if err := s.Navigate(ctx, "https://example.org/search"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}

	hits, ok := s.Find(HitsLength)
	if !ok {
		t.Fatal("Find(HitsLength) not found")
	}
	if hits.Text() != "1,234" {
		t.Errorf("hits text = %q, want 1,234", hits.Text())
	}

	list, ok := s.Find(ResultList)
	if !ok {
		t.Fatal("Find(ResultList) not found")
	}
	items := list.FindAll(ResultItem)
	if len(items) != 2 {
		t.Fatalf("FindAll(ResultItem) returned %d items, want 2", len(items))
	}

	title, ok := items[0].Find(ItemTitle)
	if !ok {
		t.Fatal("Find(ItemTitle) not found")
	}
	// Inner whitespace collapses like a rendering engine would show it.
	if title.Text() != "First Paper Title" {
		t.Errorf("title = %q, want %q", title.Text(), "First Paper Title")
	}

	if _, ok := s.Find(NoResults); ok {
		t.Error("Find(NoResults) found, want absent")
	}
}

func TestFakeSession_ActivateLinkNavigates(t *testing.T) {
	s := NewFakeSession(map[string]string{
		"https://example.org/search": listingHTML,
		"/page/2":                    `<html><body><span class="hitsLength">5</span></body></html>`,
	})
	ctx := context.Background()

	if err := s.Navigate(ctx, "https://example.org/search"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}

	next, ok := s.Find(NextPage)
	if !ok {
		t.Fatal("Find(NextPage) not found")
	}
	if err := s.Activate(ctx, next); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if s.Location() != "/page/2" {
		t.Errorf("Location() = %q, want /page/2", s.Location())
	}

	if err := s.Back(ctx); err != nil {
		t.Fatalf("Back() error = %v", err)
	}
	if s.Location() != "https://example.org/search" {
		t.Errorf("Location() after Back = %q", s.Location())
	}
}

func TestFakeSession_ActivateNonLinkIsNoop(t *testing.T) {
	s := NewFakeSession(map[string]string{
		"p": `<html><body><div class="issue-item__abstract"><p>text <span>Show More</span></p></div></body></html>`,
	})
	ctx := context.Background()
	if err := s.Navigate(ctx, "p"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}

	more, ok := s.Find(AbstractMore)
	if !ok {
		t.Fatal("Find(AbstractMore) not found")
	}
	if err := s.Activate(ctx, more); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if s.Location() != "p" {
		t.Errorf("Location() = %q, want p (no navigation)", s.Location())
	}
}

func TestFakeSession_NavigateUnknownPage(t *testing.T) {
	s := NewFakeSession(nil)
	err := s.Navigate(context.Background(), "missing")
	if !errors.Is(err, ErrNavigation) {
		t.Errorf("Navigate() error = %v, want ErrNavigation", err)
	}
}

func TestFakeSession_BackWithoutHistory(t *testing.T) {
	s := NewFakeSession(map[string]string{"p": "<html></html>"})
	ctx := context.Background()
	if err := s.Navigate(ctx, "p"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if err := s.Back(ctx); !errors.Is(err, ErrNoHistory) {
		t.Errorf("Back() error = %v, want ErrNoHistory", err)
	}
}
