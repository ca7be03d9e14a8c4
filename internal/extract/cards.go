package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"supplier-scout/internal/domain"
)

// CardSelectors is the ordered-fallback selector set for one marketplace's
// search results. Most specific selectors come first; the first match wins.
// A single rigid selector is never trusted for a semantically important
// attribute, because markup drifts.
type CardSelectors struct {
	Card    []string
	Title   []string
	Price   []string
	Orders  []string
	Rating  []string
	Reviews []string
	Link    []string
	BaseURL string // prefix for scheme- or root-relative hrefs
}

// AliExpressCards returns the selector set for supplier-platform search pages.
func AliExpressCards() CardSelectors {
	return CardSelectors{
		Card:    []string{`[class*="product-card"]`, `[class*="list--gallery"] > div`, `[data-widget-cid]`},
		Title:   []string{`[class*="product-title"]`, `[class*="title"]`, `h1`, `h2`, `h3`},
		Price:   []string{`[class*="price-current"]`, `[class*="price-value"]`, `[class*="price"]`},
		Orders:  []string{`[class*="order"]`, `[class*="sold"]`, `[class*="sales"]`},
		Rating:  []string{`[class*="rating"]`, `[class*="star"]`, `[class*="score"]`},
		Reviews: []string{`[class*="review"]`, `[class*="feedback"]`},
		Link:    []string{`a[href*="/item/"]`, `a`},
		BaseURL: "https://www.aliexpress.com",
	}
}

// AmazonCards returns the selector set for retail-marketplace search pages.
func AmazonCards() CardSelectors {
	return CardSelectors{
		Card:    []string{`[data-component-type="s-search-result"]`, `[class*="s-result-item"]`},
		Title:   []string{`h2 a span`, `[data-cy="title-recipe"] span`, `h2 a`},
		Price:   []string{`.a-price .a-offscreen`, `.a-price-whole`, `[class*="price"]`},
		Rating:  []string{`[aria-label*="stars"]`, `.a-icon-alt`, `[class*="rating"]`},
		Reviews: []string{`a[href*="#customerReviews"]`, `[aria-label*="ratings"]`, `[class*="review"]`},
		Link:    []string{`h2 a`, `[data-cy="title-recipe"] a`, `a`},
		BaseURL: "https://www.amazon.com",
	}
}

// Cards maps a rendered search-results page into scored-ready candidates.
// Extraction misses stay as nil/zero field values; a card without a usable
// title is skipped entirely.
func Cards(html string, sel CardSelectors, origin domain.OriginSite, keyword string, limit int) ([]*domain.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}

	var cards *goquery.Selection
	for _, s := range sel.Card {
		if found := doc.Find(s); found.Length() > 0 {
			cards = found
			break
		}
	}
	if cards == nil {
		return nil, nil
	}

	var out []*domain.Candidate
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		title := firstText(card, sel.Title)
		if title == "" {
			title, _ = card.Attr("title")
		}
		title = strings.TrimSpace(title)
		if title == "" || title == "N/A" || title == "Sponsored" {
			return true
		}

		c := &domain.Candidate{
			Title:       title,
			Price:       Price(firstText(card, sel.Price)),
			Demand:      Magnitude(firstText(card, sel.Orders)),
			Rating:      Rating(firstText(card, sel.Rating)),
			Competition: Magnitude(firstText(card, sel.Reviews)),
			SourceURL:   cardURL(card, sel),
			Origin:      origin,
			Keyword:     keyword,
		}
		// The retail marketplace hides order counts; reviews proxy for demand.
		if origin == domain.OriginAmazon {
			c.Demand = c.Competition
		}

		out = append(out, c)
		return limit <= 0 || len(out) < limit
	})
	return out, nil
}

// firstText walks the fallback chain and returns the first non-empty match.
func firstText(scope *goquery.Selection, selectors []string) string {
	for _, s := range selectors {
		if text := strings.TrimSpace(scope.Find(s).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func cardURL(card *goquery.Selection, sel CardSelectors) string {
	for _, s := range sel.Link {
		href, ok := card.Find(s).First().Attr("href")
		if !ok || href == "" {
			continue
		}
		return NormalizeHref(href, sel.BaseURL)
	}
	return ""
}

// NormalizeHref resolves protocol-relative and root-relative hrefs against a
// base and strips query noise from tracking-heavy listing links.
func NormalizeHref(href, baseURL string) string {
	href = strings.SplitN(href, "?", 2)[0]
	switch {
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "http"):
		return href
	case strings.HasPrefix(href, "/"):
		return baseURL + href
	}
	return href
}
