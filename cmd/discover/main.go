// Package main scrapes marketplace search pages for product candidates and
// appends the scored, deduplicated survivors to the candidate CSV consumed by
// the validation pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"supplier-scout/internal/browser"
	"supplier-scout/internal/config"
	"supplier-scout/internal/discovery"
	"supplier-scout/internal/ratelimit"
	"supplier-scout/internal/storage/csvstore"
)

func main() {
	keywords := flag.String("keywords", "", "Comma-separated search keywords (overrides SCOUT_KEYWORDS)")
	outPath := flag.String("out", "", "Candidate CSV path (overrides SCOUT_CANDIDATE_PATH)")
	maxPer := flag.Int("max-per-keyword", 0, "Card limit per keyword per marketplace (overrides SCOUT_MAX_PER_KEYWORD)")
	visible := flag.Bool("visible", false, "Run the browser with a visible window")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *keywords != "" {
		cfg.Keywords = splitList(*keywords)
	}
	if *outPath != "" {
		cfg.CandidatePath = *outPath
	}
	if *maxPer > 0 {
		cfg.MaxPerKeyword = *maxPer
	}
	cfg.Verbose = cfg.Verbose || *verbose
	cfg.Browser.Headless = !*visible

	if len(cfg.Keywords) == 0 {
		fmt.Fprintln(os.Stderr, "No keywords: set -keywords or SCOUT_KEYWORDS")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling discovery...\n", sig)
		cancel()
	}()

	policy := ratelimit.New(cfg.RateLimit)
	cfg.Browser.UserAgent = policy.UserAgent()
	cfg.Browser.Proxy = policy.Proxy()

	session, err := browser.NewChromeSession(ctx, cfg.Browser)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Browser error: %v\n", err)
		os.Exit(1)
	}
	defer session.Close()

	fmt.Println("=== Candidate Discovery ===")
	fmt.Printf("Keywords: %d | Max per keyword: %d | Out: %s\n",
		len(cfg.Keywords), cfg.MaxPerKeyword, cfg.CandidatePath)

	scraper := discovery.New(discovery.Options{
		Session:       session,
		Policy:        policy,
		Store:         csvstore.NewCandidateStore(cfg.CandidatePath),
		Keywords:      cfg.Keywords,
		MaxPerKeyword: cfg.MaxPerKeyword,
		Verbose:       cfg.Verbose,
	})

	result, err := scraper.Run(ctx)
	if result != nil {
		fmt.Printf("\nDiscovery complete:\n")
		fmt.Printf("  Keywords: %d\n", result.Keywords)
		fmt.Printf("  Found:    %d\n", result.Found)
		fmt.Printf("  Kept:     %d\n", result.Kept)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Discovery error: %v\n", err)
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
