// Package memory provides in-memory checkpoint stores for tests.
package memory

import (
	"context"
	"sync"

	"supplier-scout/internal/domain"
	"supplier-scout/internal/storage"
)

// LedgerStore is an in-memory implementation of storage.LedgerStore.
type LedgerStore struct {
	mu      sync.Mutex
	records []*domain.ValidationRecord
}

// NewLedgerStore creates an empty in-memory ledger.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{}
}

// AppendResult stores a copy of the record.
func (s *LedgerStore) AppendResult(_ context.Context, rec *domain.ValidationRecord) error {
	if rec == nil || rec.Candidate == nil || rec.Store == nil {
		return storage.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	recCopy := *rec
	s.records = append(s.records, &recCopy)
	return nil
}

// Records returns the appended records in order.
func (s *LedgerStore) Records() []*domain.ValidationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.ValidationRecord, len(s.records))
	copy(out, s.records)
	return out
}

// EquivalenceStore is an in-memory implementation of storage.EquivalenceStore.
type EquivalenceStore struct {
	mu    sync.Mutex
	links []*domain.EquivalenceLink
}

// NewEquivalenceStore creates an empty in-memory equivalence store.
func NewEquivalenceStore() *EquivalenceStore {
	return &EquivalenceStore{}
}

// AppendLink stores a copy of the link.
func (s *EquivalenceStore) AppendLink(_ context.Context, link *domain.EquivalenceLink) error {
	if link == nil || link.Candidate == nil || link.EquivalentURL == "" {
		return storage.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	linkCopy := *link
	s.links = append(s.links, &linkCopy)
	return nil
}

// Links returns the appended links in order.
func (s *EquivalenceStore) Links() []*domain.EquivalenceLink {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.EquivalenceLink, len(s.links))
	copy(out, s.links)
	return out
}

// CandidateStore is an in-memory implementation of storage.CandidateStore.
type CandidateStore struct {
	mu         sync.Mutex
	candidates []*domain.Candidate
}

// NewCandidateStore creates an empty in-memory candidate store.
func NewCandidateStore() *CandidateStore {
	return &CandidateStore{}
}

// AppendCandidate stores a copy of the candidate.
func (s *CandidateStore) AppendCandidate(_ context.Context, c *domain.Candidate) error {
	if c == nil || c.Title == "" {
		return storage.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cCopy := *c
	s.candidates = append(s.candidates, &cCopy)
	return nil
}

// Candidates returns the appended candidates in order.
func (s *CandidateStore) Candidates() []*domain.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Candidate, len(s.candidates))
	copy(out, s.candidates)
	return out
}

// Interface compliance checks.
var (
	_ storage.LedgerStore      = (*LedgerStore)(nil)
	_ storage.EquivalenceStore = (*EquivalenceStore)(nil)
	_ storage.CandidateStore   = (*CandidateStore)(nil)
)
