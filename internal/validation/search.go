package validation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"supplier-scout/internal/browser"
	"supplier-scout/internal/domain"
	"supplier-scout/internal/extract"
)

// ErrEquivalenceNotFound terminates a single candidate: no equivalent listing
// could be located, so no validation record is emitted. It is never
// batch-fatal.
var ErrEquivalenceNotFound = errors.New("no equivalent listing found")

// stop words excluded when deriving search terms from a product title
var titleStopWords = map[string]struct{}{
	"for": {}, "the": {}, "and": {}, "with": {}, "face": {},
}

const (
	maxTitleWords  = 6  // leading title words considered
	maxSearchTerms = 4  // terms kept in the derived query
	maxSearchLinks = 10 // result links examined per search
)

// searchQuery derives the supplier-marketplace query: the candidate's keyword
// when present, otherwise the informative leading words of the title.
func searchQuery(c *domain.Candidate) (string, domain.DiscoverySource) {
	if c.Keyword != "" {
		return c.Keyword, domain.DiscoveredViaKeyword
	}

	words := strings.Fields(c.Title)
	if len(words) > maxTitleWords {
		words = words[:maxTitleWords]
	}
	var terms []string
	for _, w := range words {
		if len(w) <= 3 {
			continue
		}
		if _, stop := titleStopWords[strings.ToLower(w)]; stop {
			continue
		}
		terms = append(terms, w)
		if len(terms) == maxSearchTerms {
			break
		}
	}
	if len(terms) == 0 {
		terms = words
	}
	return strings.Join(terms, " "), domain.DiscoveredViaTitleTerms
}

// searchEquivalent runs the equivalence-search state: query the supplier
// marketplace and take the first product link. Transient navigation failures
// are retried with exponential backoff up to the policy ceiling; exhaustion
// resolves to ErrEquivalenceNotFound rather than an error that could fail the
// batch.
func (m *Machine) searchEquivalent(ctx context.Context, c *domain.Candidate) (*domain.EquivalenceLink, error) {
	query, via := searchQuery(c)
	searchURL := supplierSearchURL + url.QueryEscape(query)

	for attempt := 0; ; attempt++ {
		err := m.navigate(ctx, searchURL)
		if err == nil {
			break
		}
		// Anything that is not a transient navigation failure, session loss
		// above all, aborts instead of burning the retry budget.
		var navErr *browser.NavigationError
		if !errors.As(err, &navErr) {
			return nil, err
		}
		if attempt >= m.policy.MaxRetries() {
			return nil, fmt.Errorf("%w: search for %q exhausted %d retries", ErrEquivalenceNotFound, query, attempt)
		}
		m.logf("  search retry %d/%d for %q: %v", attempt+1, m.policy.MaxRetries(), query, navErr)
		m.wait(ctx, m.policy.RetryDelay(attempt))
	}

	if err := m.session.Settle(ctx); err != nil {
		return nil, fmt.Errorf("%w: settle failed: %v", ErrEquivalenceNotFound, err)
	}
	m.session.DismissInterstitials(ctx)

	hrefs, err := m.session.Links(ctx, productLinkQuery, maxSearchLinks)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEquivalenceNotFound, err)
	}
	for _, href := range hrefs {
		if href == "" {
			continue
		}
		full := extract.NormalizeHref(href, supplierBaseURL)
		if !strings.Contains(full, "/item/") {
			continue
		}
		return &domain.EquivalenceLink{
			Candidate:     c,
			EquivalentURL: full,
			DiscoveredVia: via,
		}, nil
	}
	return nil, fmt.Errorf("%w: no product links for %q", ErrEquivalenceNotFound, query)
}
