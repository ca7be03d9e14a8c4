// Package discovery scrapes marketplace search pages for candidate products.
// Its output feeds the validation pipeline as the seed set.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sort"
	"time"

	"supplier-scout/internal/browser"
	"supplier-scout/internal/dedupe"
	"supplier-scout/internal/domain"
	"supplier-scout/internal/extract"
	"supplier-scout/internal/ratelimit"
	"supplier-scout/internal/scoring"
	"supplier-scout/internal/storage"
)

const (
	supplierSearchURL = "https://www.aliexpress.com/wholesale?SearchText="
	retailSearchURL   = "https://www.amazon.com/s?k="
)

// Options for creating a Scraper.
type Options struct {
	Session       browser.Session
	Policy        *ratelimit.Policy
	Store         storage.CandidateStore
	Keywords      []string
	MaxPerKeyword int
	Verbose       bool

	// Sleep is a test seam; nil selects real sleeping.
	Sleep func(ctx context.Context, d time.Duration)
}

// Scraper discovers candidates keyword by keyword over the shared session.
type Scraper struct {
	session  browser.Session
	policy   *ratelimit.Policy
	store    storage.CandidateStore
	keywords []string
	maxPer   int
	verbose  bool
	sleep    func(ctx context.Context, d time.Duration)
}

// New creates a Scraper.
func New(opts Options) *Scraper {
	s := &Scraper{
		session:  opts.Session,
		policy:   opts.Policy,
		store:    opts.Store,
		keywords: opts.Keywords,
		maxPer:   opts.MaxPerKeyword,
		verbose:  opts.Verbose,
		sleep:    opts.Sleep,
	}
	if s.maxPer <= 0 {
		s.maxPer = 15
	}
	if s.sleep == nil {
		s.sleep = func(ctx context.Context, d time.Duration) {
			if d <= 0 {
				return
			}
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
			case <-t.C:
			}
		}
	}
	return s
}

// Result summarizes a discovery run.
type Result struct {
	Keywords int
	Found    int
	Kept     int // after dedupe, appended to the store
}

// Run scrapes every keyword against both marketplaces, scores and dedupes
// the haul and appends the survivors to the candidate store, strongest score
// first. A keyword that cannot be fetched is skipped with a logged reason.
func (s *Scraper) Run(ctx context.Context) (*Result, error) {
	result := &Result{Keywords: len(s.keywords)}
	var all []*domain.Candidate

	for _, keyword := range s.keywords {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("discovery cancelled: %w", err)
		}
		s.logf("keyword: %s", keyword)

		for _, src := range []struct {
			searchURL string
			origin    domain.OriginSite
			selectors extract.CardSelectors
		}{
			{supplierSearchURL, domain.OriginAliExpress, extract.AliExpressCards()},
			{retailSearchURL, domain.OriginAmazon, extract.AmazonCards()},
		} {
			cards, err := s.scrapeSearch(ctx, src.searchURL+url.QueryEscape(keyword), src.selectors, src.origin, keyword)
			if errors.Is(err, browser.ErrSessionLost) {
				return result, fmt.Errorf("aborting discovery at keyword %q: %w", keyword, err)
			}
			if err != nil {
				log.Printf("skipping %s search for %q: %v", src.origin, keyword, err)
				continue
			}
			s.logf("  %s: %d cards", src.origin, len(cards))
			all = append(all, cards...)
		}
	}

	for _, c := range all {
		c.Score = scoring.Score(c.Demand, c.Competition, c.Rating)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })
	result.Found = len(all)

	kept := dedupe.Candidates(all)
	for _, c := range kept {
		if err := s.store.AppendCandidate(ctx, c); err != nil {
			return result, fmt.Errorf("append candidate %q: %w", c.Title, err)
		}
		result.Kept++
	}
	return result, nil
}

// scrapeSearch loads one search page and extracts its result cards. Transient
// navigation failures retry with backoff up to the policy ceiling.
func (s *Scraper) scrapeSearch(ctx context.Context, searchURL string, sel extract.CardSelectors, origin domain.OriginSite, keyword string) ([]*domain.Candidate, error) {
	for attempt := 0; ; attempt++ {
		err := s.navigate(ctx, searchURL)
		if err == nil {
			break
		}
		// Session loss and other non-transient failures abort instead of
		// burning the retry budget.
		var navErr *browser.NavigationError
		if !errors.As(err, &navErr) {
			return nil, err
		}
		if attempt >= s.policy.MaxRetries() {
			return nil, fmt.Errorf("search navigation exhausted %d retries: %w", attempt, navErr)
		}
		s.sleep(ctx, s.policy.RetryDelay(attempt))
	}

	if err := s.session.Settle(ctx); err != nil {
		return nil, fmt.Errorf("settle: %w", err)
	}
	s.session.DismissInterstitials(ctx)

	html, err := s.session.HTML(ctx)
	if err != nil {
		return nil, err
	}
	return extract.Cards(html, sel, origin, keyword, s.maxPer)
}

// navigate issues one paced page request: await the policy delay, load the
// URL and count the request against the identity-rotation cadence. Every
// attempt counts, successful or not.
func (s *Scraper) navigate(ctx context.Context, url string) error {
	s.sleep(ctx, s.policy.NextDelay())
	err := s.session.Navigate(ctx, url)
	if ua, rotated := s.policy.RotateIdentity(); rotated {
		if uaErr := s.session.SetUserAgent(ctx, ua); uaErr != nil {
			log.Printf("warn: rotate user agent: %v", uaErr)
		} else {
			s.logf("  rotated user agent")
		}
	}
	return err
}

func (s *Scraper) logf(format string, args ...any) {
	if s.verbose {
		log.Printf(format, args...)
	}
}
