package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SeedPath != "potential_winners.csv" {
		t.Errorf("seed path = %q", cfg.SeedPath)
	}
	if cfg.LedgerPath != "validated_suppliers.csv" {
		t.Errorf("ledger path = %q", cfg.LedgerPath)
	}
	if cfg.RuleSet != "strict" {
		t.Errorf("rule set = %q", cfg.RuleSet)
	}
	if cfg.RateLimit.MinDelay != 3*time.Second || cfg.RateLimit.MaxDelay != 8*time.Second {
		t.Errorf("delays = %s-%s", cfg.RateLimit.MinDelay, cfg.RateLimit.MaxDelay)
	}
	if !cfg.Browser.Headless {
		t.Error("browser not headless by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SCOUT_MIN_DELAY", "1")      // bare seconds
	t.Setenv("SCOUT_MAX_DELAY", "2500ms") // Go duration
	t.Setenv("SCOUT_MAX_RETRIES", "7")
	t.Setenv("SCOUT_RULESET", "lenient")
	t.Setenv("SCOUT_KEYWORDS", "led lights, phone mount ,")
	t.Setenv("SCOUT_USER_AGENTS", "ua-a,ua-b")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RateLimit.MinDelay != time.Second || cfg.RateLimit.MaxDelay != 2500*time.Millisecond {
		t.Errorf("delays = %s-%s", cfg.RateLimit.MinDelay, cfg.RateLimit.MaxDelay)
	}
	if cfg.RateLimit.MaxRetries != 7 {
		t.Errorf("retries = %d", cfg.RateLimit.MaxRetries)
	}
	if cfg.RuleSet != "lenient" {
		t.Errorf("rule set = %q", cfg.RuleSet)
	}
	if len(cfg.Keywords) != 2 || cfg.Keywords[0] != "led lights" || cfg.Keywords[1] != "phone mount" {
		t.Errorf("keywords = %v", cfg.Keywords)
	}
	if len(cfg.RateLimit.UserAgents) != 2 {
		t.Errorf("user agents = %v", cfg.RateLimit.UserAgents)
	}
}

func TestLoadRejectsInvertedDelays(t *testing.T) {
	t.Setenv("SCOUT_MIN_DELAY", "10")
	t.Setenv("SCOUT_MAX_DELAY", "5")
	if _, err := Load(); err == nil {
		t.Fatal("inverted delay range accepted")
	}
}

func TestLoadRejectsUnknownRuleSet(t *testing.T) {
	t.Setenv("SCOUT_RULESET", "paranoid")
	if _, err := Load(); err == nil {
		t.Fatal("unknown rule set accepted")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("SCOUT_RETRY_CAP", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("unparseable duration accepted")
	}
}
