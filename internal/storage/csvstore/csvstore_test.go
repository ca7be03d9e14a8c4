package csvstore

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplier-scout/internal/domain"
	"supplier-scout/internal/storage"
)

func strPtr(s string) *string { return &s }

func f64Ptr(v float64) *float64 { return &v }

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func sampleRecord() *domain.ValidationRecord {
	opened := time.Date(2020, time.March, 15, 0, 0, 0, 0, time.UTC)
	age := 4.2
	return &domain.ValidationRecord{
		Candidate: &domain.Candidate{
			Title:     "Magnetic Phone Mount",
			SourceURL: "https://www.amazon.com/dp/B0123",
			Price:     f64Ptr(12.99),
			Keyword:   "phone mount",
		},
		Link: &domain.EquivalenceLink{
			EquivalentURL: "https://www.aliexpress.com/item/100.html",
			DiscoveredVia: domain.DiscoveredViaKeyword,
		},
		Store: &domain.StoreProfile{
			Name:           strPtr("GadgetPro Store"),
			URL:            strPtr("https://www.aliexpress.com/store/123"),
			OpenDate:       &opened,
			Feedback:       f64Ptr(97.4),
			ShippingMethod: "ePacket",
			ShippingDays:   15,
		},
		AgeYears:    &age,
		Disposition: domain.DispositionValidated,
		DecidedAt:   time.Now(),
	}
}

func TestLedgerStoreAppendResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	ctx := context.Background()

	store := NewLedgerStore(path)
	require.NoError(t, store.AppendResult(ctx, sampleRecord()))
	require.NoError(t, store.AppendResult(ctx, sampleRecord()))

	// A fresh store instance on the same file appends without re-writing the
	// header, the crash-recovery path.
	resumed := NewLedgerStore(path)
	require.NoError(t, resumed.AppendResult(ctx, sampleRecord()))

	rows := readCSV(t, path)
	require.Len(t, rows, 4)
	assert.Equal(t, ledgerHeader, rows[0])

	row := rows[1]
	assert.Equal(t, "Magnetic Phone Mount", row[0])
	assert.Equal(t, "12.99", row[1])
	assert.Equal(t, "GadgetPro Store", row[2])
	assert.Equal(t, "4.2", row[4])
	assert.Equal(t, "2020-03-15", row[5])
	assert.Equal(t, "97.4", row[6])
	assert.Equal(t, "15", row[8])
	// the equivalent listing, not the origin listing
	assert.Equal(t, "https://www.aliexpress.com/item/100.html", row[9])
}

func TestLedgerStoreMissingFieldsAsNA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")

	rec := &domain.ValidationRecord{
		Candidate:   &domain.Candidate{Title: "Bare Candidate", SourceURL: "https://www.aliexpress.com/item/200.html"},
		Store:       &domain.StoreProfile{ShippingDays: 30},
		Disposition: domain.DispositionRedFlagged,
	}
	require.NoError(t, NewLedgerStore(path).AppendResult(context.Background(), rec))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	row := rows[1]
	assert.Equal(t, "N/A", row[1]) // price
	assert.Equal(t, "N/A", row[2]) // store name
	assert.Equal(t, "N/A", row[4]) // age
	assert.Equal(t, "N/A", row[5]) // open date
	assert.Equal(t, "N/A", row[6]) // feedback
	assert.Equal(t, "N/A", row[7]) // shipping method
	// no link: the origin URL stands in
	assert.Equal(t, "https://www.aliexpress.com/item/200.html", row[9])
	assert.Equal(t, "N/A", row[10]) // keyword
}

func TestLedgerStoreInvalidInput(t *testing.T) {
	store := NewLedgerStore(filepath.Join(t.TempDir(), "ledger.csv"))
	ctx := context.Background()

	assert.ErrorIs(t, store.AppendResult(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.AppendResult(ctx, &domain.ValidationRecord{}), storage.ErrInvalidInput)
}

func TestEquivalenceStoreAppendLink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.csv")
	ctx := context.Background()
	store := NewEquivalenceStore(path)

	link := &domain.EquivalenceLink{
		Candidate: &domain.Candidate{
			Title:     "LED Strip Lights",
			SourceURL: "https://www.amazon.com/dp/B0456",
			Price:     f64Ptr(9.5),
		},
		EquivalentURL: "https://www.aliexpress.com/item/300.html",
		DiscoveredVia: domain.DiscoveredViaTitleTerms,
	}
	require.NoError(t, store.AppendLink(ctx, link))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, equivalenceHeader, rows[0])
	assert.Equal(t, []string{
		"LED Strip Lights",
		"https://www.amazon.com/dp/B0456",
		"9.50",
		"N/A",
		"https://www.aliexpress.com/item/300.html",
		"title-terms",
	}, rows[1])

	assert.ErrorIs(t, store.AppendLink(ctx, &domain.EquivalenceLink{}), storage.ErrInvalidInput)
}

func TestCandidateStoreAppendCandidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.csv")
	ctx := context.Background()
	store := NewCandidateStore(path)

	c := &domain.Candidate{
		Title:       "Posture Corrector",
		SourceURL:   "https://www.aliexpress.com/item/400.html",
		Price:       f64Ptr(7.99),
		Demand:      1200,
		Competition: 85,
		Rating:      4.6,
		Score:       90,
		Origin:      domain.OriginAliExpress,
		Keyword:     "posture",
	}
	require.NoError(t, store.AppendCandidate(ctx, c))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, candidateHeader, rows[0])
	assert.Equal(t, []string{
		"Posture Corrector", "7.99", "1200", "85", "4.6", "90.00",
		"AliExpress", "posture", "https://www.aliexpress.com/item/400.html",
	}, rows[1])

	assert.ErrorIs(t, store.AppendCandidate(ctx, &domain.Candidate{}), storage.ErrInvalidInput)
}
