// Package orchestrator runs the discovery-and-validation pipeline over one
// batch of seed candidates: score → dedupe → validate, one candidate at a
// time against the shared browser session.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"supplier-scout/internal/browser"
	"supplier-scout/internal/dedupe"
	"supplier-scout/internal/domain"
	"supplier-scout/internal/ratelimit"
	"supplier-scout/internal/scoring"
	"supplier-scout/internal/storage"
	"supplier-scout/internal/validation"
)

// Options for creating an Orchestrator.
type Options struct {
	Session      browser.Session
	Policy       *ratelimit.Policy
	Rules        validation.RuleSet
	Ledger       storage.LedgerStore
	Equivalences storage.EquivalenceStore

	Verbose bool

	// Now and Sleep are test seams; nil selects the real clock.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration)
}

// Orchestrator owns the lifecycle of all in-memory records for one batch run.
// The checkpoint stores are the sole durable owners across runs.
type Orchestrator struct {
	policy  *ratelimit.Policy
	machine *validation.Machine
	ledger  storage.LedgerStore
	verbose bool
	sleep   func(ctx context.Context, d time.Duration)
}

// New creates an Orchestrator and its validation machine.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		policy:  opts.Policy,
		ledger:  opts.Ledger,
		verbose: opts.Verbose,
		sleep:   opts.Sleep,
		machine: validation.New(validation.Options{
			Session:      opts.Session,
			Policy:       opts.Policy,
			Rules:        opts.Rules,
			Equivalences: opts.Equivalences,
			Verbose:      opts.Verbose,
			Now:          opts.Now,
			Sleep:        opts.Sleep,
		}),
	}
	if o.sleep == nil {
		o.sleep = func(ctx context.Context, d time.Duration) {
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
	return o
}

// RunResult summarizes one batch run.
type RunResult struct {
	Seeds      int
	Processed  int
	Validated  int
	RedFlagged int
	Dropped    int // equivalence search exhausted, no record emitted
	Errors     []string
}

// Run executes the batch. Candidates are processed strictly sequentially:
// concurrent navigation on one session is unsafe and concurrent sessions
// would defeat the pacing design. Already-appended records survive any
// failure mode; cancellation loses only in-flight candidates.
func (o *Orchestrator) Run(ctx context.Context, candidates []*domain.Candidate) (*RunResult, error) {
	result := &RunResult{Seeds: len(candidates)}

	// Re-scoring is idempotent, so seeds arriving pre-scored are unchanged.
	for _, c := range candidates {
		c.Score = scoring.Score(c.Demand, c.Competition, c.Rating)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	candidates = dedupe.Candidates(candidates)
	o.logf("Batch: %d seeds, %d after dedupe", result.Seeds, len(candidates))

	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("batch cancelled after %d candidates: %w", result.Processed, err)
		}

		o.logf("[%d/%d] %s (score %.1f)", i+1, len(candidates), truncate(c.Title, 60), c.Score)
		rec, err := o.process(ctx, c)
		result.Processed++

		switch {
		case errors.Is(err, browser.ErrSessionLost):
			// The one batch-fatal condition: every prior record is already
			// flushed by the append-on-disposition stores, so only the
			// remaining candidates are abandoned.
			return result, fmt.Errorf("aborting batch after %d candidates: %w", result.Processed, err)
		case errors.Is(err, validation.ErrEquivalenceNotFound):
			result.Dropped++
			log.Printf("dropped %q: %v", truncate(c.Title, 60), err)
		case err != nil:
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", truncate(c.Title, 60), err))
			log.Printf("error on %q: %v", truncate(c.Title, 60), err)
		default:
			if err := o.ledger.AppendResult(ctx, rec); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("append %s: %v", truncate(c.Title, 60), err))
				log.Printf("error: append record for %q: %v", truncate(c.Title, 60), err)
				break
			}
			if rec.Disposition == domain.DispositionValidated {
				result.Validated++
				o.logf("  VALIDATED: store=%s", storeName(rec))
			} else {
				result.RedFlagged++
				o.logf("  RED FLAGS: %s", flagReasons(rec))
			}
		}

		if i == len(candidates)-1 {
			break
		}
		// Identity rotation rides on the per-request cadence inside the
		// machine; between candidates only pacing applies.
		if pause, due := o.policy.Cooldown(result.Processed); due {
			o.logf("cooldown: pausing %s", pause)
			o.sleep(ctx, pause)
		} else {
			o.sleep(ctx, o.policy.NextDelay())
		}
	}

	return result, nil
}

// process shields the batch from a panicking candidate. Adversarial pages
// produce surprising text; one bad candidate must not end a long run.
func (o *Orchestrator) process(ctx context.Context, c *domain.Candidate) (rec *domain.ValidationRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, err = nil, fmt.Errorf("panic while processing %q: %v", truncate(c.Title, 60), r)
		}
	}()
	return o.machine.Process(ctx, c)
}

func (o *Orchestrator) logf(format string, args ...any) {
	if o.verbose {
		log.Printf(format, args...)
	}
}

func storeName(rec *domain.ValidationRecord) string {
	if rec.Store.Name == nil {
		return "N/A"
	}
	return *rec.Store.Name
}

func flagReasons(rec *domain.ValidationRecord) string {
	out := ""
	for i, f := range rec.Store.RedFlags {
		if i > 0 {
			out += ", "
		}
		out += f.Reason
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
