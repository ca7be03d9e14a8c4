// Package ratelimit paces outbound page requests so the pipeline keeps a
// bounded, human-like cadence. The policy is an explicit value threaded into
// the orchestrator and session driver; there is no package-level state.
package ratelimit

import (
	"math/rand"
	"sync"
	"time"
)

// Config holds all pacing knobs. Every knob is externally configurable.
type Config struct {
	MinDelay      time.Duration // lower bound of the inter-request delay range
	MaxDelay      time.Duration // upper bound of the inter-request delay range
	Jitter        time.Duration // independent jitter added on top of the range
	PageLoadDelay time.Duration // fixed settle wait after navigation
	ScrollWait    time.Duration // wait after scrolling for lazy content

	MaxRetries int           // retry ceiling before downgrading to not-found
	RetryBase  time.Duration // exponential backoff base
	RetryCap   time.Duration // ceiling on any single retry delay

	CooldownEvery int           // candidates between long pauses, 0 disables
	CooldownFor   time.Duration // length of the long pause

	RotateEvery int      // requests between identity rotations, 0 disables
	UserAgents  []string // fixed identity pool
	Proxies     []string // optional; a configured proxy suppresses rotation
}

// Default returns the balanced profile: 3-8s delays, 5s backoff base capped at
// 80s, a 60s cooldown every 20 candidates, rotation every 5 requests.
func Default() Config {
	return Config{
		MinDelay:      3 * time.Second,
		MaxDelay:      8 * time.Second,
		Jitter:        500 * time.Millisecond,
		PageLoadDelay: 3 * time.Second,
		ScrollWait:    5 * time.Second,
		MaxRetries:    3,
		RetryBase:     5 * time.Second,
		RetryCap:      80 * time.Second,
		CooldownEvery: 20,
		CooldownFor:   60 * time.Second,
		RotateEvery:   5,
		UserAgents:    defaultUserAgents,
	}
}

var defaultUserAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
}

// Policy computes delays, backoff and identity rotation from a Config.
// Safe for use from a single orchestrator goroutine; the internal mutex only
// guards the request counter against incidental cross-package reads.
type Policy struct {
	cfg Config
	rng *rand.Rand

	mu       sync.Mutex
	requests int
	uaIndex  int
}

// New builds a Policy. A zero MaxDelay falls back to MinDelay so the uniform
// draw never inverts.
func New(cfg Config) *Policy {
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	if len(cfg.UserAgents) == 0 {
		cfg.UserAgents = defaultUserAgents
	}
	return &Policy{
		cfg: cfg,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Config returns the policy's configuration.
func (p *Policy) Config() Config { return p.cfg }

// NextDelay draws the pre-request delay: uniform over [MinDelay, MaxDelay]
// plus independent jitter. No network call may be issued without awaiting it.
func (p *Policy) NextDelay() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	d := p.cfg.MinDelay
	if span := p.cfg.MaxDelay - p.cfg.MinDelay; span > 0 {
		d += time.Duration(p.rng.Int63n(int64(span)))
	}
	if p.cfg.Jitter > 0 {
		d += time.Duration(p.rng.Int63n(int64(p.cfg.Jitter)))
	}
	return d
}

// RetryDelay returns the exponential backoff delay for the given zero-based
// attempt index: RetryBase x 2^attempt, capped at RetryCap.
func (p *Policy) RetryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := p.cfg.RetryBase
	for i := 0; i < attempt; i++ {
		d *= 2
		if p.cfg.RetryCap > 0 && d >= p.cfg.RetryCap {
			return p.cfg.RetryCap
		}
	}
	if p.cfg.RetryCap > 0 && d > p.cfg.RetryCap {
		return p.cfg.RetryCap
	}
	return d
}

// MaxRetries returns the retry ceiling.
func (p *Policy) MaxRetries() int { return p.cfg.MaxRetries }

// UserAgent returns the currently active identity.
func (p *Policy) UserAgent() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg.UserAgents[p.uaIndex%len(p.cfg.UserAgents)]
}

// RotateIdentity counts one request and, on the configured cadence, advances
// to the next user agent in the pool. Rotation is suppressed when a proxy is
// configured: the proxy already attributes a distinct network identity.
// Returns the new agent and true when a rotation happened.
func (p *Policy) RotateIdentity() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests++
	if len(p.cfg.Proxies) > 0 || p.cfg.RotateEvery <= 0 {
		return p.cfg.UserAgents[p.uaIndex%len(p.cfg.UserAgents)], false
	}
	if p.requests%p.cfg.RotateEvery != 0 {
		return p.cfg.UserAgents[p.uaIndex%len(p.cfg.UserAgents)], false
	}
	p.uaIndex++
	return p.cfg.UserAgents[p.uaIndex%len(p.cfg.UserAgents)], true
}

// Proxy returns a random proxy from the pool, or "" when none are configured.
func (p *Policy) Proxy() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.cfg.Proxies) == 0 {
		return ""
	}
	return p.cfg.Proxies[p.rng.Intn(len(p.cfg.Proxies))]
}

// Cooldown reports whether a long pause is due after the given number of
// processed candidates, and how long to pause. Fires every CooldownEvery
// candidates to break up machine-regular cadence.
func (p *Policy) Cooldown(processed int) (time.Duration, bool) {
	if p.cfg.CooldownEvery <= 0 || processed == 0 {
		return 0, false
	}
	if processed%p.cfg.CooldownEvery == 0 {
		return p.cfg.CooldownFor, true
	}
	return 0, false
}
