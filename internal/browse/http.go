package browse

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 60 * time.Second

	// DefaultRateLimit caps requests per second against the service.
	DefaultRateLimit = 1.0

	// DefaultSettleDelay is the wait after a freshly issued query.
	DefaultSettleDelay = 2 * time.Second

	// DefaultUserAgent identifies the crawler politely.
	DefaultUserAgent = "acmgrab/1.0 (+https://github.com/scholium/acmgrab)"
)

// HTTPSession is a Session over plain HTTP: it fetches pages with a
// rate-limited client and exposes the server-rendered DOM. Affordances that
// a browser would click are handled structurally: link activation navigates,
// non-link activation is a no-op because server-rendered markup already
// carries the expanded content.
type HTTPSession struct {
	client  *resty.Client
	limiter *rate.Limiter
	settle  time.Duration

	current string
	history []string
	page    *page
}

// HTTPOption configures an HTTPSession.
type HTTPOption func(*HTTPSession)

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(s *HTTPSession) {
		s.client.SetHeader("User-Agent", ua)
	}
}

// WithRateLimit overrides the requests-per-second cap.
func WithRateLimit(perSecond float64) HTTPOption {
	return func(s *HTTPSession) {
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithSettleDelay overrides the fresh-query settling delay.
func WithSettleDelay(d time.Duration) HTTPOption {
	return func(s *HTTPSession) {
		s.settle = d
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSession) {
		s.client.SetTimeout(d)
	}
}

// NewHTTPSession creates an HTTP-backed browsing session.
func NewHTTPSession(opts ...HTTPOption) *HTTPSession {
	s := &HTTPSession{
		client:  resty.New().SetTimeout(DefaultTimeout).SetHeader("User-Agent", DefaultUserAgent),
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		settle:  DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Navigate fetches the target and makes it the current page.
func (s *HTTPSession) Navigate(ctx context.Context, target string) error {
	if err := s.fetch(ctx, target); err != nil {
		return err
	}
	if s.current != "" {
		s.history = append(s.history, s.current)
	}
	s.current = target
	return nil
}

// fetch loads target into the session without touching history.
func (s *HTTPSession) fetch(ctx context.Context, target string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := s.client.R().SetContext(ctx).Get(target)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNavigation, err)
	}
	if resp.StatusCode() >= 400 {
		return fmt.Errorf("%w: status %d for %s", ErrNavigation, resp.StatusCode(), target)
	}

	p, err := parsePage(string(resp.Body()))
	if err != nil {
		return fmt.Errorf("parsing page %s: %w", target, err)
	}
	s.page = p
	return nil
}

// Location returns the current page URL.
func (s *HTTPSession) Location() string {
	return s.current
}

// Back returns to the previously visited page.
func (s *HTTPSession) Back(ctx context.Context) error {
	if len(s.history) == 0 {
		return ErrNoHistory
	}
	prev := s.history[len(s.history)-1]
	if err := s.fetch(ctx, prev); err != nil {
		return err
	}
	s.history = s.history[:len(s.history)-1]
	s.current = prev
	return nil
}

// Find returns the first element on the current page matching sel.
func (s *HTTPSession) Find(sel Selector) (Element, bool) {
	if s.page == nil {
		return nil, false
	}
	return s.page.find(sel)
}

// FindAll returns all elements on the current page matching sel.
func (s *HTTPSession) FindAll(sel Selector) []Element {
	if s.page == nil {
		return nil
	}
	return s.page.findAll(sel)
}

// Activate follows the element's link, resolved against the current
// location. Elements without a link (show-more toggles, cookie buttons) need
// no activation over HTTP: the server-rendered DOM already holds their
// expanded state.
func (s *HTTPSession) Activate(ctx context.Context, el Element) error {
	href, ok := hrefOf(el)
	if !ok {
		return nil
	}
	target, err := s.resolve(href)
	if err != nil {
		return err
	}
	return s.Navigate(ctx, target)
}

// ScrollIntoView is a no-op: HTTP responses have no viewport.
func (s *HTTPSession) ScrollIntoView(el Element) {}

// Settle waits the configured delay, or less if the context ends first.
func (s *HTTPSession) Settle(ctx context.Context) {
	if s.settle <= 0 {
		return
	}
	select {
	case <-time.After(s.settle):
	case <-ctx.Done():
	}
}

// resolve makes href absolute against the current location.
func (s *HTTPSession) resolve(href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("%w: parsing href %q: %v", ErrNavigation, href, err)
	}
	if s.current == "" {
		return ref.String(), nil
	}
	base, err := url.Parse(s.current)
	if err != nil {
		return "", fmt.Errorf("%w: parsing location %q: %v", ErrNavigation, s.current, err)
	}
	return base.ResolveReference(ref).String(), nil
}
