package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Options configures the Chrome-backed session.
type Options struct {
	Headless      bool
	UserAgent     string
	Proxy         string        // optional proxy server, e.g. "http://host:port"
	NavTimeout    time.Duration // per-navigation ceiling
	PageLoadDelay time.Duration // settle wait after load
	ScrollWait    time.Duration // settle wait after scrolling
	ChromePath    string        // empty = auto-detect
}

// DefaultOptions returns the settings used by production runs.
func DefaultOptions() Options {
	return Options{
		Headless:      true,
		NavTimeout:    60 * time.Second,
		PageLoadDelay: 3 * time.Second,
		ScrollWait:    5 * time.Second,
	}
}

// ChromeSession drives one headless Chrome tab via chromedp.
type ChromeSession struct {
	opts        Options
	ctx         context.Context
	cancelChain []context.CancelFunc
}

// NewChromeSession launches the browser and prepares the shared tab. The
// stealth script and automation-flag masking follow the usual
// puppeteer-extra-plugin-stealth techniques.
func NewChromeSession(parent context.Context, opts Options) (*ChromeSession, error) {
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("exclude-switches", "enable-automation"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-service-autorun", true),
		chromedp.Flag("password-store", "basic"),
		chromedp.Flag("use-mock-keychain", true),
		chromedp.WindowSize(1920, 1080),
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}
	if opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	s := &ChromeSession{
		opts:        opts,
		ctx:         tabCtx,
		cancelChain: []context.CancelFunc{cancelTab, cancelAlloc},
	}

	err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
		return err
	}))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("start browser session: %w", err)
	}
	return s, nil
}

// Navigate loads a URL under the configured timeout. A dead browser context
// surfaces as ErrSessionLost, not as a retryable NavigationError.
func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return &NavigationError{URL: url, Err: err}
	}
	if err := s.ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionLost, err)
	}
	navCtx, cancel := context.WithTimeout(s.ctx, s.opts.NavTimeout)
	defer cancel()

	err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		// The tab context dying mid-run means the browser is gone, not that
		// this URL timed out.
		if s.ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrSessionLost, err)
		}
		return &NavigationError{URL: url, Err: err}
	}
	return nil
}

// Settle waits, scrolls to the bottom of the content area and waits again.
// Target pages render key attributes lazily, so this must precede extraction.
func (s *ChromeSession) Settle(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(s.ctx,
		chromedp.Sleep(s.opts.PageLoadDelay),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(s.opts.ScrollWait),
	)
}

// interstitial close-button candidates, most specific first
var dismissSelectors = []string{
	`[class*="close"]`,
	`[class*="dismiss"]`,
	`[aria-label*="lose"]`,
}

const maxDismissClicks = 3

// DismissInterstitials best-effort clicks up to maxDismissClicks close-like
// elements. Every failure is swallowed; this is a courtesy step.
func (s *ChromeSession) DismissInterstitials(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	clicks := 0
	for _, sel := range dismissSelectors {
		if clicks >= maxDismissClicks {
			return
		}
		var present bool
		err := chromedp.Run(s.ctx,
			chromedp.Evaluate(`document.querySelector(`+strconv.Quote(sel)+`) !== null`, &present),
		)
		if err != nil || !present {
			continue
		}
		clickCtx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
		_ = chromedp.Run(clickCtx,
			chromedp.Click(sel, chromedp.ByQuery),
			chromedp.Sleep(500*time.Millisecond),
		)
		cancel()
		clicks++
	}
}

// ExtractText walks the ordered fallback chain and returns the first
// non-empty innerText.
func (s *ChromeSession) ExtractText(ctx context.Context, selectors []string) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}
	for _, sel := range selectors {
		var text string
		script := `(() => { const el = document.querySelector(` + strconv.Quote(sel) + `); return el ? el.innerText : ""; })()`
		if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, &text)); err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			return text, true
		}
	}
	return "", false
}

// BodyText returns the page's visible text.
func (s *ChromeSession) BodyText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var text string
	if err := chromedp.Run(s.ctx, chromedp.Text("body", &text, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read body text: %w", err)
	}
	return text, nil
}

// HTML returns the rendered document markup.
func (s *ChromeSession) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var html string
	if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read document html: %w", err)
	}
	return html, nil
}

// Links returns up to limit hrefs of elements matching selector, in document
// order.
func (s *ChromeSession) Links(ctx context.Context, selector string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	script := `Array.from(document.querySelectorAll(` + strconv.Quote(selector) + `))` +
		`.slice(0, ` + strconv.Itoa(limit) + `)` +
		`.map(a => a.getAttribute("href") || "")`
	var hrefs []string
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, &hrefs)); err != nil {
		return nil, fmt.Errorf("collect links %q: %w", selector, err)
	}
	return hrefs, nil
}

// SetUserAgent overrides the session identity for subsequent requests.
func (s *ChromeSession) SetUserAgent(ctx context.Context, ua string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := chromedp.Run(s.ctx, emulation.SetUserAgentOverride(ua)); err != nil {
		return fmt.Errorf("set user agent: %w", err)
	}
	return nil
}

// Close tears down the tab and the browser process.
func (s *ChromeSession) Close() error {
	for _, cancel := range s.cancelChain {
		cancel()
	}
	return nil
}

var _ Session = (*ChromeSession)(nil)

// stealthScript masks the usual headless-automation tells before any page
// script runs.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
window.chrome = { runtime: {}, loadTimes: function() {}, csi: function() {}, app: {} };
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
Object.defineProperty(navigator, 'plugins', {
    get: () => [
        { name: 'Chrome PDF Plugin', filename: 'internal-pdf-viewer', description: 'Portable Document Format' },
        { name: 'Chrome PDF Viewer', filename: 'mhjfbmdgcfjbbpaeojofohoefgiehjai', description: '' },
        { name: 'Native Client', filename: 'internal-nacl-plugin', description: '' },
    ],
});
const originalQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) => (
    parameters.name === 'notifications' ?
        Promise.resolve({ state: Notification.permission }) :
        originalQuery(parameters)
);
`
