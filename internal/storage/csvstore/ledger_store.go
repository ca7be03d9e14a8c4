// Package csvstore implements the checkpoint stores as append-only CSV files.
// Files are opened per append with O_APPEND and the header is written exactly
// once, when the file is created empty, so records already appended survive a
// crash anywhere else in the batch.
package csvstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sync"
	"time"

	"supplier-scout/internal/domain"
	"supplier-scout/internal/storage"
)

var ledgerHeader = []string{
	"product_title",
	"product_price",
	"store_name",
	"store_url",
	"store_age_years",
	"store_open_date",
	"feedback_percentage",
	"shipping_method",
	"shipping_days",
	"product_url",
	"product_keyword",
}

// LedgerStore appends disposed validation records to a CSV file.
type LedgerStore struct {
	mu   sync.Mutex
	path string
}

// NewLedgerStore creates a ledger store writing to path. The file itself is
// created lazily on first append.
func NewLedgerStore(path string) *LedgerStore {
	return &LedgerStore{path: path}
}

// AppendResult appends one record and flushes it to disk before returning.
func (s *LedgerStore) AppendResult(_ context.Context, rec *domain.ValidationRecord) error {
	if rec == nil || rec.Candidate == nil || rec.Store == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return appendRow(s.path, ledgerHeader, ledgerRow(rec))
}

func ledgerRow(rec *domain.ValidationRecord) []string {
	productURL := rec.Candidate.SourceURL
	if rec.Link != nil {
		productURL = rec.Link.EquivalentURL
	}
	return []string{
		rec.Candidate.Title,
		formatFloat(rec.Candidate.Price, 2),
		formatString(rec.Store.Name),
		formatString(rec.Store.URL),
		formatFloat(rec.AgeYears, 1),
		formatDate(rec.Store.OpenDate),
		formatFloat(rec.Store.Feedback, 1),
		naIfEmpty(rec.Store.ShippingMethod),
		fmt.Sprintf("%d", rec.Store.ShippingDays),
		productURL,
		naIfEmpty(rec.Candidate.Keyword),
	}
}

// appendRow opens the file in append mode, writes the header if the file is
// empty and flushes the row. Open-per-append keeps the record durable the
// moment this returns.
func appendRow(path string, header, row []string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Sync()
}

func formatString(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}

func naIfEmpty(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func formatFloat(v *float64, prec int) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.*f", prec, *v)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format("2006-01-02")
}
