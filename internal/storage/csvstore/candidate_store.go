package csvstore

import (
	"context"
	"fmt"
	"sync"

	"supplier-scout/internal/domain"
	"supplier-scout/internal/storage"
)

var candidateHeader = []string{
	"title",
	"price",
	"orders",
	"reviews",
	"rating",
	"opportunity_score",
	"source",
	"keyword",
	"url",
}

// CandidateStore appends discovery output; the resulting file is the seed set
// for a later validation run.
type CandidateStore struct {
	mu   sync.Mutex
	path string
}

// NewCandidateStore creates a candidate store writing to path.
func NewCandidateStore(path string) *CandidateStore {
	return &CandidateStore{path: path}
}

// AppendCandidate appends one candidate and flushes it to disk.
func (s *CandidateStore) AppendCandidate(_ context.Context, c *domain.Candidate) error {
	if c == nil || c.Title == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return appendRow(s.path, candidateHeader, []string{
		c.Title,
		formatFloat(c.Price, 2),
		fmt.Sprintf("%d", c.Demand),
		fmt.Sprintf("%d", c.Competition),
		fmt.Sprintf("%.1f", c.Rating),
		fmt.Sprintf("%.2f", c.Score),
		string(c.Origin),
		naIfEmpty(c.Keyword),
		naIfEmpty(c.SourceURL),
	})
}
