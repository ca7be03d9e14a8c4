// Package storage defines the checkpoint store contracts. Stores are
// append-only: each record is durable the moment AppendResult returns, so a
// crash mid-run loses only in-flight candidates. Appends are single-writer;
// the design does not support concurrent pipeline instances.
package storage

import (
	"context"

	"supplier-scout/internal/domain"
)

// LedgerStore persists disposed validation records (validated and red-flagged
// alike). Append-only with at-most-once append per candidate per run; the
// store does not deduplicate across runs.
type LedgerStore interface {
	AppendResult(ctx context.Context, rec *domain.ValidationRecord) error
}

// EquivalenceStore persists newly discovered equivalence links as they are
// found, before the candidate is fully disposed.
type EquivalenceStore interface {
	AppendLink(ctx context.Context, link *domain.EquivalenceLink) error
}

// CandidateStore persists discovery output so a later validation run can
// consume it as its seed set.
type CandidateStore interface {
	AppendCandidate(ctx context.Context, c *domain.Candidate) error
}
