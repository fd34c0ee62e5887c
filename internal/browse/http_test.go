package browse

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		html, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPSession_NavigateAndFind(t *testing.T) {
	srv := newTestServer(t, map[string]string{"/search": listingHTML})
	s := NewHTTPSession(WithRateLimit(1000), WithSettleDelay(0))
	ctx := context.Background()

	if err := s.Navigate(ctx, srv.URL+"/search"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if s.Location() != srv.URL+"/search" {
		t.Errorf("Location() = %q", s.Location())
	}

	hits, ok := s.Find(HitsLength)
	if !ok {
		t.Fatal("Find(HitsLength) not found")
	}
	if hits.Text() != "1,234" {
		t.Errorf("hits = %q, want 1,234", hits.Text())
	}
}

func TestHTTPSession_ActivateResolvesRelativeHref(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/search": listingHTML,
		"/page/2": `<html><body><span class="hitsLength">5</span></body></html>`,
	})
	s := NewHTTPSession(WithRateLimit(1000), WithSettleDelay(0))
	ctx := context.Background()

	if err := s.Navigate(ctx, srv.URL+"/search"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	next, ok := s.Find(NextPage)
	if !ok {
		t.Fatal("Find(NextPage) not found")
	}
	if err := s.Activate(ctx, next); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if s.Location() != srv.URL+"/page/2" {
		t.Errorf("Location() = %q, want %s/page/2", s.Location(), srv.URL)
	}

	if err := s.Back(ctx); err != nil {
		t.Fatalf("Back() error = %v", err)
	}
	if s.Location() != srv.URL+"/search" {
		t.Errorf("Location() after Back = %q", s.Location())
	}
}

func TestHTTPSession_NavigateError(t *testing.T) {
	srv := newTestServer(t, nil)
	s := NewHTTPSession(WithRateLimit(1000))

	err := s.Navigate(context.Background(), srv.URL+"/missing")
	if !errors.Is(err, ErrNavigation) {
		t.Errorf("Navigate() error = %v, want ErrNavigation", err)
	}
}
