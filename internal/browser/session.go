// Package browser owns the headless page session used by the pipeline. One
// session lives for an entire run: identity and cookies persist deliberately
// so the request stream looks like one continuous human visit.
package browser

import (
	"context"
	"errors"
	"fmt"
)

// ErrSessionLost marks an unrecoverable loss of the browser session (crashed
// or closed browser process). Unlike a NavigationError it is not transient:
// every subsequent request is doomed, so callers must abort the batch rather
// than retry.
var ErrSessionLost = errors.New("browser session lost")

// NavigationError marks a navigation timeout or network failure. It is
// transient: callers decide whether to retry, and exhausting the retry
// ceiling downgrades the operation to a "not found" outcome.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// Session is the page driver contract. Navigation mutates shared session
// state: no extraction result survives a subsequent Navigate.
type Session interface {
	// Navigate loads a URL. Returns *NavigationError on timeout or network
	// failure, or an error wrapping ErrSessionLost when the browser itself
	// is gone.
	Navigate(ctx context.Context, url string) error

	// Settle waits the fixed post-load interval, scrolls to the bottom of the
	// content area and waits again so lazy-loaded attributes render. Mandatory
	// before any extraction.
	Settle(ctx context.Context) error

	// DismissInterstitials clicks a bounded number of close/dismiss-like
	// elements, best effort. Failures are swallowed; callers must not depend
	// on its success.
	DismissInterstitials(ctx context.Context)

	// ExtractText returns the text of the first selector in the ordered
	// fallback chain that matches, or ("", false) when none do.
	ExtractText(ctx context.Context, selectors []string) (string, bool)

	// BodyText returns the visible text of the whole page, the last-resort
	// extraction surface for pattern matching.
	BodyText(ctx context.Context) (string, error)

	// HTML returns the rendered document markup.
	HTML(ctx context.Context) (string, error)

	// Links returns up to limit href attributes of elements matching selector.
	Links(ctx context.Context, selector string, limit int) ([]string, error)

	// SetUserAgent swaps the session identity, used on the rotation cadence.
	SetUserAgent(ctx context.Context, ua string) error

	// Close tears down the session.
	Close() error
}
