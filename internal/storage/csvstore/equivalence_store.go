package csvstore

import (
	"context"
	"sync"

	"supplier-scout/internal/domain"
	"supplier-scout/internal/storage"
)

var equivalenceHeader = []string{
	"original_title",
	"original_url",
	"original_price",
	"keyword",
	"equivalent_url",
	"discovery_source",
}

// EquivalenceStore appends discovered equivalence links to a CSV file.
type EquivalenceStore struct {
	mu   sync.Mutex
	path string
}

// NewEquivalenceStore creates an equivalence store writing to path.
func NewEquivalenceStore(path string) *EquivalenceStore {
	return &EquivalenceStore{path: path}
}

// AppendLink appends one link and flushes it to disk before returning.
func (s *EquivalenceStore) AppendLink(_ context.Context, link *domain.EquivalenceLink) error {
	if link == nil || link.Candidate == nil || link.EquivalentURL == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return appendRow(s.path, equivalenceHeader, []string{
		link.Candidate.Title,
		link.Candidate.SourceURL,
		formatFloat(link.Candidate.Price, 2),
		naIfEmpty(link.Candidate.Keyword),
		link.EquivalentURL,
		string(link.DiscoveredVia),
	})
}
