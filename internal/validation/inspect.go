package validation

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"supplier-scout/internal/browser"
	"supplier-scout/internal/domain"
	"supplier-scout/internal/extract"
)

// Ordered fallback chains for store attributes. Semantically important
// attributes never ride on a single rigid selector.
var (
	storeNameSelectors = []string{
		`a[href*="/store/"]`,
		`[class*="store-name"]`,
		`[class*="store-link"]`,
		`[data-role="store-name"]`,
		`.shop-name`,
		`.seller-name`,
	}
	openDateSelectors = []string{
		`[class*="open-date"]`,
		`[class*="store-date"]`,
		`[class*="since"]`,
	}
	feedbackSelectors = []string{
		`[class*="feedback"]`,
		`[class*="positive"]`,
		`[class*="rating"]`,
	}
	shippingSelectors = []string{
		`[class*="shipping"]`,
		`[class*="delivery"]`,
		`[class*="logistics"]`,
	}
)

const storeLinkQuery = `a[href*="/store/"]`

// Body-text patterns, the last line of defense when every selector misses.
var (
	feedbackPositiveRe = regexp.MustCompile(`(\d+(?:\.\d+)?)%\s*[Pp]ositive`)
	positiveLabelRe    = regexp.MustCompile(`(?i)positive\s*:?\s*(\d+(?:\.\d+)?)%`)
	feedbackLabelRe    = regexp.MustCompile(`(?i)feedback\s*:?\s*(\d+(?:\.\d+)?)%`)
	sinceYearRe        = regexp.MustCompile(`(?i)since\s+(\d{4})`)
	openedYearRe       = regexp.MustCompile(`(?i)(?:opened|established)\D*?(\d{4})`)
)

// inspectStore runs the store-inspection state. Inspection is best effort:
// any attribute the page refuses to give up stays nil and is judged by the
// red-flag rules in the next state. The only failure it reports is losing
// the browser session, which is batch-fatal for the caller.
func (m *Machine) inspectStore(ctx context.Context, productURL string, now time.Time) (*domain.StoreProfile, error) {
	if IsAggregatorURL(productURL) {
		return m.inspectAggregator(ctx, productURL)
	}

	p := &domain.StoreProfile{}

	if err := m.navigate(ctx, productURL); err != nil {
		if errors.Is(err, browser.ErrSessionLost) {
			return nil, err
		}
		m.logf("  could not load product page: %v", err)
		p.ShippingDays = extract.ShippingDays("")
		return p, nil
	}
	if err := m.session.Settle(ctx); err != nil {
		p.ShippingDays = extract.ShippingDays("")
		return p, nil
	}
	m.session.DismissInterstitials(ctx)

	if name, ok := m.session.ExtractText(ctx, storeNameSelectors); ok {
		if name = strings.TrimSpace(name); len(name) > 2 {
			p.Name = &name
		}
	}
	if hrefs, err := m.session.Links(ctx, storeLinkQuery, 1); err == nil && len(hrefs) > 0 && hrefs[0] != "" {
		u := extract.NormalizeHref(hrefs[0], supplierBaseURL)
		p.URL = &u
	}
	if text, ok := m.session.ExtractText(ctx, shippingSelectors); ok {
		p.ShippingMethod = strings.TrimSpace(text)
	}

	productBody, _ := m.session.BodyText(ctx)
	if p.ShippingMethod == "" {
		lower := strings.ToLower(productBody)
		switch {
		case strings.Contains(lower, "aliexpress standard"):
			p.ShippingMethod = "AliExpress Standard Shipping"
		case strings.Contains(lower, "epacket"):
			p.ShippingMethod = "ePacket"
		}
	}
	applyBodyFallbacks(p, productBody, now)

	// The store page carries open date and feedback; the product page only
	// sometimes leaks them. Losing the store page is not a failure, losing
	// the browser is.
	if p.URL != nil {
		if err := m.navigate(ctx, *p.URL); err != nil {
			if errors.Is(err, browser.ErrSessionLost) {
				return nil, err
			}
			m.logf("  could not access store page: %v", err)
		} else if err := m.session.Settle(ctx); err == nil {
			if p.OpenDate == nil {
				if text, ok := m.session.ExtractText(ctx, openDateSelectors); ok {
					p.OpenDate, p.OpenDateRes = extract.Date(text, now)
				}
			}
			if p.Feedback == nil {
				if text, ok := m.session.ExtractText(ctx, feedbackSelectors); ok {
					p.Feedback = extract.FeedbackPercent(text)
				}
			}
			if storeBody, err := m.session.BodyText(ctx); err == nil {
				applyBodyFallbacks(p, storeBody, now)
			}
		}
	}

	p.ShippingDays = extract.ShippingDays(p.ShippingMethod)
	return p, nil
}

// inspectAggregator returns the static trusted profile for the institutional
// platform, refining only the shipping estimate from the live page when it
// cooperates.
func (m *Machine) inspectAggregator(ctx context.Context, productURL string) (*domain.StoreProfile, error) {
	p := domain.TrustedAggregatorProfile()

	if err := m.navigate(ctx, productURL); err != nil {
		if errors.Is(err, browser.ErrSessionLost) {
			return nil, err
		}
		m.logf("  could not load aggregator page, keeping static profile: %v", err)
		return p, nil
	}
	if err := m.session.Settle(ctx); err != nil {
		return p, nil
	}
	if text, ok := m.session.ExtractText(ctx, shippingSelectors); ok {
		p.ShippingMethod = strings.TrimSpace(text)
		p.ShippingDays = extract.ShippingDays(p.ShippingMethod)
	}
	// The live page text wins over the static estimate when it mentions a
	// concrete shipping time.
	if body, err := m.session.BodyText(ctx); err == nil && body != "" {
		p.ShippingDays = extract.ShippingDays(body)
	}
	return p, nil
}

// applyBodyFallbacks fills feedback and open date from free-form page text
// when the selector chains came up empty.
func applyBodyFallbacks(p *domain.StoreProfile, body string, now time.Time) {
	if body == "" {
		return
	}

	if p.Feedback == nil {
		for _, re := range []*regexp.Regexp{feedbackPositiveRe, positiveLabelRe, feedbackLabelRe} {
			if match := re.FindStringSubmatch(body); match != nil {
				p.Feedback = extract.FeedbackPercent(match[1] + "%")
				break
			}
		}
	}

	if p.OpenDate == nil {
		for _, re := range []*regexp.Regexp{sinceYearRe, openedYearRe} {
			if match := re.FindStringSubmatch(body); match != nil {
				p.OpenDate, p.OpenDateRes = extract.Date(match[1], now)
				break
			}
		}
	}
}
