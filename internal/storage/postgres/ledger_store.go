package postgres

import (
	"context"
	"fmt"

	"supplier-scout/internal/domain"
	"supplier-scout/internal/storage"
)

// LedgerStore implements storage.LedgerStore using PostgreSQL.
type LedgerStore struct {
	pool  *Pool
	runID string
}

// NewLedgerStore creates a ledger store scoped to one pipeline run.
func NewLedgerStore(pool *Pool, runID string) *LedgerStore {
	return &LedgerStore{pool: pool, runID: runID}
}

var _ storage.LedgerStore = (*LedgerStore)(nil)

// AppendResult appends one disposed record. Returns ErrDuplicateKey when the
// candidate was already appended within this run.
func (s *LedgerStore) AppendResult(ctx context.Context, rec *domain.ValidationRecord) error {
	if rec == nil || rec.Candidate == nil || rec.Store == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO validation_ledger (
			run_id, product_title, product_price, store_name, store_url,
			store_age_years, store_open_date, feedback_percentage,
			shipping_method, shipping_days, product_url, product_keyword,
			disposition, red_flags, decided_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	productURL := rec.Candidate.SourceURL
	if rec.Link != nil {
		productURL = rec.Link.EquivalentURL
	}

	flags := make([]string, 0, len(rec.Store.RedFlags))
	for _, f := range rec.Store.RedFlags {
		flags = append(flags, f.Code)
	}

	_, err := s.pool.Exec(ctx, query,
		s.runID,
		rec.Candidate.Title,
		rec.Candidate.Price,
		rec.Store.Name,
		rec.Store.URL,
		rec.AgeYears,
		rec.Store.OpenDate,
		rec.Store.Feedback,
		rec.Store.ShippingMethod,
		rec.Store.ShippingDays,
		productURL,
		rec.Candidate.Keyword,
		string(rec.Disposition),
		flags,
		rec.DecidedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("append validation record: %w", err)
	}
	return nil
}

// EquivalenceStore implements storage.EquivalenceStore using PostgreSQL.
type EquivalenceStore struct {
	pool  *Pool
	runID string
}

// NewEquivalenceStore creates an equivalence store scoped to one pipeline run.
func NewEquivalenceStore(pool *Pool, runID string) *EquivalenceStore {
	return &EquivalenceStore{pool: pool, runID: runID}
}

var _ storage.EquivalenceStore = (*EquivalenceStore)(nil)

// AppendLink appends one discovered link. Returns ErrDuplicateKey when a link
// for the same origin listing was already appended within this run.
func (s *EquivalenceStore) AppendLink(ctx context.Context, link *domain.EquivalenceLink) error {
	if link == nil || link.Candidate == nil || link.EquivalentURL == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO equivalence_links (
			run_id, original_title, original_url, original_price,
			keyword, equivalent_url, discovery_source
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		s.runID,
		link.Candidate.Title,
		link.Candidate.SourceURL,
		link.Candidate.Price,
		link.Candidate.Keyword,
		link.EquivalentURL,
		string(link.DiscoveredVia),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("append equivalence link: %w", err)
	}
	return nil
}
