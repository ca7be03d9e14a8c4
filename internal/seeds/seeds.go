// Package seeds reads the seed-candidate CSV that a validation run consumes.
// Only the six contract fields (title, url, price, keyword, reviews, rating)
// are interpreted; anything else in the file is ignored.
package seeds

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"supplier-scout/internal/domain"
	"supplier-scout/internal/extract"
	"supplier-scout/internal/scoring"
	"supplier-scout/internal/validation"
)

// Read loads seed candidates from a CSV file with a header row. Rows with an
// unusable URL or a placeholder title are skipped. Numeric fields go through
// the extraction parsers, so "1.2K" reviews or "$19.99" prices normalize the
// same way scraped text does.
func Read(path string) ([]*domain.Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seeds %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read seeds header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(row []string, names ...string) string {
		for _, name := range names {
			if i, ok := col[name]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
		}
		return ""
	}

	var out []*domain.Candidate
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read seeds row: %w", err)
		}

		title := field(row, "title", "product_title")
		url := field(row, "url", "source_url", "product_url")
		if title == "" || title == "Sponsored" || !validation.UsableSeedURL(url) {
			continue
		}

		c := &domain.Candidate{
			Title:       title,
			SourceURL:   url,
			Price:       extract.Price(field(row, "price", "product_price")),
			Demand:      extract.Magnitude(field(row, "orders")),
			Competition: extract.Magnitude(field(row, "reviews", "review_count")),
			Rating:      extract.Rating(field(row, "rating")),
			Keyword:     field(row, "keyword"),
			Origin:      originOf(url, field(row, "source")),
		}
		// Marketplaces that hide order counts leave demand empty; reviews
		// stand in.
		if c.Demand == 0 && c.Origin == domain.OriginAmazon {
			c.Demand = c.Competition
		}
		c.Score = scoring.Score(c.Demand, c.Competition, c.Rating)

		out = append(out, c)
	}
	return out, nil
}

func originOf(url, source string) domain.OriginSite {
	if strings.EqualFold(source, string(domain.OriginAliExpress)) || validation.IsSupplierURL(url) {
		return domain.OriginAliExpress
	}
	return domain.OriginAmazon
}
