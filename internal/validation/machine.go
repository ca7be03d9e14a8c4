package validation

import (
	"context"
	"fmt"
	"log"
	"time"

	"supplier-scout/internal/browser"
	"supplier-scout/internal/domain"
	"supplier-scout/internal/ratelimit"
	"supplier-scout/internal/storage"
)

// State of a candidate inside the validation machine. Terminal states are
// final: a candidate is never re-evaluated within the same run.
type State int

const (
	StateDiscovered State = iota
	StateEquivalenceSearch
	StateStoreInspection
	StateRedFlagCheck
	StateValidated
	StateRedFlagged
)

func (s State) String() string {
	switch s {
	case StateDiscovered:
		return "Discovered"
	case StateEquivalenceSearch:
		return "EquivalenceSearch"
	case StateStoreInspection:
		return "StoreInspection"
	case StateRedFlagCheck:
		return "RedFlagCheck"
	case StateValidated:
		return "Validated"
	case StateRedFlagged:
		return "RedFlagged"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options for creating a Machine.
type Options struct {
	Session      browser.Session
	Policy       *ratelimit.Policy
	Rules        RuleSet
	Equivalences storage.EquivalenceStore

	Verbose bool

	// Now and Sleep are test seams; nil selects the real clock.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration)
}

// Machine drives one candidate at a time through the validation states over
// the shared page session. Exactly one record is in flight per candidate.
type Machine struct {
	session      browser.Session
	policy       *ratelimit.Policy
	rules        RuleSet
	equivalences storage.EquivalenceStore
	verbose      bool
	now          func() time.Time
	sleep        func(ctx context.Context, d time.Duration)
}

// New creates a Machine.
func New(opts Options) *Machine {
	m := &Machine{
		session:      opts.Session,
		policy:       opts.Policy,
		rules:        opts.Rules,
		equivalences: opts.Equivalences,
		verbose:      opts.Verbose,
		now:          opts.Now,
		sleep:        opts.Sleep,
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.sleep == nil {
		m.sleep = sleepCtx
	}
	return m
}

// Process advances a candidate from Discovered to a terminal state and
// returns its validation record. A candidate whose equivalence search comes
// up empty returns (nil, ErrEquivalenceNotFound): dropped with a logged
// reason, no record, never batch-fatal.
func (m *Machine) Process(ctx context.Context, c *domain.Candidate) (*domain.ValidationRecord, error) {
	state := StateDiscovered
	targetURL := c.SourceURL
	var link *domain.EquivalenceLink
	var profile *domain.StoreProfile

	for {
		switch state {
		case StateDiscovered:
			// A candidate already on a supported supplier platform needs no
			// equivalence search.
			if IsSupplierURL(c.SourceURL) || IsAggregatorURL(c.SourceURL) {
				state = StateStoreInspection
			} else {
				state = StateEquivalenceSearch
			}

		case StateEquivalenceSearch:
			found, err := m.searchEquivalent(ctx, c)
			if err != nil {
				return nil, err
			}
			link = found
			targetURL = link.EquivalentURL
			m.logf("  equivalent found via %s: %s", link.DiscoveredVia, link.EquivalentURL)
			if m.equivalences != nil {
				if err := m.equivalences.AppendLink(ctx, link); err != nil {
					log.Printf("warn: append equivalence link for %q: %v", c.Title, err)
				}
			}
			state = StateStoreInspection

		case StateStoreInspection:
			var err error
			profile, err = m.inspectStore(ctx, targetURL, m.now())
			if err != nil {
				return nil, err
			}
			state = StateRedFlagCheck

		case StateRedFlagCheck:
			profile.RedFlags = m.rules.Evaluate(profile, profile.AgeYears(m.now()))
			if len(profile.RedFlags) == 0 {
				state = StateValidated
			} else {
				state = StateRedFlagged
			}

		case StateValidated, StateRedFlagged:
			now := m.now()
			return &domain.ValidationRecord{
				Candidate:   c,
				Link:        link,
				Store:       profile,
				AgeYears:    profile.AgeYears(now),
				Disposition: Disposition(profile.RedFlags),
				DecidedAt:   now,
			}, nil
		}
	}
}

func (m *Machine) wait(ctx context.Context, d time.Duration) {
	m.sleep(ctx, d)
}

// navigate issues one paced page request: await the policy delay, load the
// URL and count the request against the identity-rotation cadence. Every
// attempt counts, successful or not.
func (m *Machine) navigate(ctx context.Context, url string) error {
	m.wait(ctx, m.policy.NextDelay())
	err := m.session.Navigate(ctx, url)
	if ua, rotated := m.policy.RotateIdentity(); rotated {
		if uaErr := m.session.SetUserAgent(ctx, ua); uaErr != nil {
			log.Printf("warn: rotate user agent: %v", uaErr)
		} else {
			m.logf("  rotated user agent")
		}
	}
	return err
}

func (m *Machine) logf(format string, args ...any) {
	if m.verbose {
		log.Printf(format, args...)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
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
