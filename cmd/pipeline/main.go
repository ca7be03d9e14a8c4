// Package main runs the validation pipeline over a seed CSV: candidates are
// scored, deduplicated and walked through equivalence search, store inspection
// and the red-flag check, with results checkpointed as each one resolves.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"supplier-scout/internal/browser"
	"supplier-scout/internal/config"
	"supplier-scout/internal/orchestrator"
	"supplier-scout/internal/ratelimit"
	"supplier-scout/internal/seeds"
	"supplier-scout/internal/storage"
	"supplier-scout/internal/storage/csvstore"
	pgstore "supplier-scout/internal/storage/postgres"
	"supplier-scout/internal/validation"
)

func main() {
	seedPath := flag.String("seeds", "", "Seed CSV path (overrides SCOUT_SEED_PATH)")
	ledgerPath := flag.String("ledger", "", "Validation ledger CSV path (overrides SCOUT_LEDGER_PATH)")
	equivPath := flag.String("equivalents", "", "Equivalence links CSV path (overrides SCOUT_EQUIVALENCE_PATH)")
	postgresDSN := flag.String("postgres-dsn", "", "Append to Postgres instead of CSV (overrides SCOUT_POSTGRES_DSN)")
	ruleSet := flag.String("rules", "", "Red-flag rule set: strict or lenient (overrides SCOUT_RULESET)")
	visible := flag.Bool("visible", false, "Run the browser with a visible window")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *seedPath != "" {
		cfg.SeedPath = *seedPath
	}
	if *ledgerPath != "" {
		cfg.LedgerPath = *ledgerPath
	}
	if *equivPath != "" {
		cfg.EquivalencePath = *equivPath
	}
	if *postgresDSN != "" {
		cfg.PostgresDSN = *postgresDSN
	}
	if *ruleSet != "" {
		cfg.RuleSet = *ruleSet
	}
	cfg.Verbose = cfg.Verbose || *verbose
	cfg.Browser.Headless = !*visible

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling pipeline...\n", sig)
		cancel()
	}()

	candidates, err := seeds.Read(cfg.SeedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading seeds: %v\n", err)
		os.Exit(1)
	}
	if len(candidates) == 0 {
		fmt.Printf("No usable seed candidates in %s\n", cfg.SeedPath)
		return
	}

	policy := ratelimit.New(cfg.RateLimit)
	cfg.Browser.UserAgent = policy.UserAgent()
	cfg.Browser.Proxy = policy.Proxy()

	ledger, equivalences, cleanup, err := buildStores(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Store error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	session, err := browser.NewChromeSession(ctx, cfg.Browser)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Browser error: %v\n", err)
		os.Exit(1)
	}
	defer session.Close()

	rules := validation.StrictRules()
	if cfg.RuleSet == "lenient" {
		rules = validation.LenientRules()
	}

	fmt.Println("=== Supplier Validation Pipeline ===")
	fmt.Printf("Seeds: %d | Rules: %s | Delays: %s-%s | Retries: %d\n",
		len(candidates), rules.Name, cfg.RateLimit.MinDelay, cfg.RateLimit.MaxDelay, cfg.RateLimit.MaxRetries)

	orch := orchestrator.New(orchestrator.Options{
		Session:      session,
		Policy:       policy,
		Rules:        rules,
		Ledger:       ledger,
		Equivalences: equivalences,
		Verbose:      cfg.Verbose,
	})

	result, err := orch.Run(ctx, candidates)
	if result != nil {
		fmt.Printf("\nRun complete:\n")
		fmt.Printf("  Processed:   %d\n", result.Processed)
		fmt.Printf("  Validated:   %d\n", result.Validated)
		fmt.Printf("  Red-flagged: %d\n", result.RedFlagged)
		fmt.Printf("  Dropped:     %d\n", result.Dropped)
		for _, e := range result.Errors {
			fmt.Printf("  error: %s\n", e)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Pipeline error: %v\n", err)
		os.Exit(1)
	}
}

// buildStores selects CSV or Postgres checkpoint backends.
func buildStores(ctx context.Context, cfg *config.Config) (storage.LedgerStore, storage.EquivalenceStore, func(), error) {
	if cfg.PostgresDSN == "" {
		return csvstore.NewLedgerStore(cfg.LedgerPath),
			csvstore.NewEquivalenceStore(cfg.EquivalencePath),
			func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := pgstore.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	runID := time.Now().UTC().Format("20060102-150405")
	return pgstore.NewLedgerStore(pool, runID),
		pgstore.NewEquivalenceStore(pool, runID),
		pool.Close, nil
}
