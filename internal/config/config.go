// Package config assembles the pipeline configuration from an optional .env
// file and environment variables. The result is an explicit value handed to
// the orchestrator and session driver; nothing here is ambient or mutable
// after load.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"supplier-scout/internal/browser"
	"supplier-scout/internal/ratelimit"
)

// Config is the full configuration surface of a run.
type Config struct {
	RateLimit ratelimit.Config
	Browser   browser.Options

	SeedPath        string
	LedgerPath      string
	EquivalencePath string
	CandidatePath   string
	PostgresDSN     string

	Keywords      []string
	MaxPerKeyword int

	RuleSet string // "strict" or "lenient"
	Verbose bool
}

// Load reads ".env" when present, then the environment, on top of defaults.
func Load() (*Config, error) {
	// A missing .env is fine; explicit environment always wins.
	_ = godotenv.Load()

	cfg := &Config{
		RateLimit:       ratelimit.Default(),
		Browser:         browser.DefaultOptions(),
		SeedPath:        envString("SCOUT_SEED_PATH", "potential_winners.csv"),
		LedgerPath:      envString("SCOUT_LEDGER_PATH", "validated_suppliers.csv"),
		EquivalencePath: envString("SCOUT_EQUIVALENCE_PATH", "aliexpress_equivalents.csv"),
		CandidatePath:   envString("SCOUT_CANDIDATE_PATH", "potential_winners.csv"),
		PostgresDSN:     envString("SCOUT_POSTGRES_DSN", ""),
		MaxPerKeyword:   envInt("SCOUT_MAX_PER_KEYWORD", 15),
		RuleSet:         envString("SCOUT_RULESET", "strict"),
	}

	var err error
	if cfg.RateLimit.MinDelay, err = envDuration("SCOUT_MIN_DELAY", cfg.RateLimit.MinDelay); err != nil {
		return nil, err
	}
	if cfg.RateLimit.MaxDelay, err = envDuration("SCOUT_MAX_DELAY", cfg.RateLimit.MaxDelay); err != nil {
		return nil, err
	}
	if cfg.RateLimit.RetryCap, err = envDuration("SCOUT_RETRY_CAP", cfg.RateLimit.RetryCap); err != nil {
		return nil, err
	}
	if cfg.RateLimit.CooldownFor, err = envDuration("SCOUT_COOLDOWN_FOR", cfg.RateLimit.CooldownFor); err != nil {
		return nil, err
	}
	cfg.RateLimit.MaxRetries = envInt("SCOUT_MAX_RETRIES", cfg.RateLimit.MaxRetries)
	cfg.RateLimit.CooldownEvery = envInt("SCOUT_COOLDOWN_EVERY", cfg.RateLimit.CooldownEvery)
	cfg.RateLimit.RotateEvery = envInt("SCOUT_ROTATE_EVERY", cfg.RateLimit.RotateEvery)

	if agents := envList("SCOUT_USER_AGENTS"); len(agents) > 0 {
		cfg.RateLimit.UserAgents = agents
	}
	cfg.RateLimit.Proxies = envList("SCOUT_PROXIES")
	cfg.Keywords = envList("SCOUT_KEYWORDS")

	cfg.Browser.ChromePath = envString("SCOUT_CHROME_PATH", "")
	cfg.Browser.PageLoadDelay = cfg.RateLimit.PageLoadDelay
	cfg.Browser.ScrollWait = cfg.RateLimit.ScrollWait

	if cfg.RateLimit.MaxDelay < cfg.RateLimit.MinDelay {
		return nil, fmt.Errorf("SCOUT_MAX_DELAY (%s) below SCOUT_MIN_DELAY (%s)",
			cfg.RateLimit.MaxDelay, cfg.RateLimit.MinDelay)
	}
	if cfg.RuleSet != "strict" && cfg.RuleSet != "lenient" {
		return nil, fmt.Errorf("SCOUT_RULESET must be strict or lenient, got %q", cfg.RuleSet)
	}

	return cfg, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	// Accept both bare seconds ("5") and Go durations ("5s").
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q: %w", key, v, err)
	}
	return d, nil
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
