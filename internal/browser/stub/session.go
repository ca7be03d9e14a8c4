// Package stub provides a scripted browser.Session so state-machine ordering
// and retry semantics are testable without a real browser.
package stub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"supplier-scout/internal/browser"
)

// AlwaysFail makes a page's navigation fail on every attempt.
const AlwaysFail = -1

// Page scripts one URL's rendered content.
type Page struct {
	BodyText    string
	HTML        string
	Selectors   map[string]string   // selector -> innerText
	Links       map[string][]string // selector -> hrefs in document order
	FailNavs    int                 // navigation failures before success; AlwaysFail never succeeds
	LoseSession bool                // navigating here crashes the browser for good
}

// Session is a scripted browser.Session. URLs resolve by exact match first,
// then by longest registered prefix, so tests do not need to reproduce full
// query strings.
type Session struct {
	mu       sync.Mutex
	pages    map[string]*Page
	attempts map[string]int

	current    *Page
	currentURL string

	NavLog     []string
	Settles    int
	Dismissals int
	UserAgents []string
	Closed     bool
	Lost       bool // once true, every navigation returns ErrSessionLost
}

// NewSession creates an empty scripted session.
func NewSession() *Session {
	return &Session{
		pages:    make(map[string]*Page),
		attempts: make(map[string]int),
	}
}

// AddPage scripts the content served for a URL (or URL prefix).
func (s *Session) AddPage(url string, p *Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[url] = p
}

// CurrentURL reports the last successfully navigated URL.
func (s *Session) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentURL
}

func (s *Session) resolve(url string) *Page {
	if p, ok := s.pages[url]; ok {
		return p
	}
	var bestKey string
	var best *Page
	for key, p := range s.pages {
		if strings.HasPrefix(url, key) && len(key) > len(bestKey) {
			bestKey, best = key, p
		}
	}
	return best
}

// Navigate resolves the scripted page, honouring scripted failure counts.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return &browser.NavigationError{URL: url, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.NavLog = append(s.NavLog, url)
	if s.Lost {
		return fmt.Errorf("%w: scripted browser crash", browser.ErrSessionLost)
	}
	p := s.resolve(url)
	if p == nil {
		return &browser.NavigationError{URL: url, Err: errors.New("no scripted page")}
	}
	if p.LoseSession {
		s.Lost = true
		return fmt.Errorf("%w: scripted browser crash", browser.ErrSessionLost)
	}

	s.attempts[url]++
	if p.FailNavs == AlwaysFail || s.attempts[url] <= p.FailNavs {
		return &browser.NavigationError{URL: url, Err: errors.New("scripted navigation failure")}
	}

	s.current = p
	s.currentURL = url
	return nil
}

// Settle counts the settle call; content is already "rendered".
func (s *Session) Settle(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Settles++
	return nil
}

// DismissInterstitials counts the courtesy call.
func (s *Session) DismissInterstitials(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Dismissals++
}

// ExtractText walks the fallback chain against the scripted selector map.
func (s *Session) ExtractText(_ context.Context, selectors []string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return "", false
	}
	for _, sel := range selectors {
		if text, ok := s.current.Selectors[sel]; ok && text != "" {
			return text, true
		}
	}
	return "", false
}

// BodyText returns the scripted body text.
func (s *Session) BodyText(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return "", errors.New("no page loaded")
	}
	return s.current.BodyText, nil
}

// HTML returns the scripted markup.
func (s *Session) HTML(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return "", errors.New("no page loaded")
	}
	return s.current.HTML, nil
}

// Links returns the scripted hrefs for a selector, capped at limit.
func (s *Session) Links(_ context.Context, selector string, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, errors.New("no page loaded")
	}
	hrefs := s.current.Links[selector]
	if limit > 0 && len(hrefs) > limit {
		hrefs = hrefs[:limit]
	}
	out := make([]string, len(hrefs))
	copy(out, hrefs)
	return out, nil
}

// SetUserAgent records the rotation.
func (s *Session) SetUserAgent(_ context.Context, ua string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UserAgents = append(s.UserAgents, ua)
	return nil
}

// Close marks the session closed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

var _ browser.Session = (*Session)(nil)
