// Package dedupe collapses near-identical listings. The same product shows up
// under slightly different titles across marketplaces and sellers; comparing
// leading-word sets catches most of that without fuzzy matching.
package dedupe

import (
	"strings"

	"supplier-scout/internal/domain"
)

const (
	keyWords      = 5 // leading words considered per title
	overlapForDup = 3 // shared words that mark a duplicate
)

// Candidates returns the input with near-duplicate titles removed, keeping
// the first occurrence. Callers sort by score first so the strongest listing
// of each product survives.
func Candidates(in []*domain.Candidate) []*domain.Candidate {
	var out []*domain.Candidate
	var seen []map[string]struct{}

	for _, c := range in {
		key := titleKey(c.Title)
		dup := false
		for _, prior := range seen {
			if overlap(key, prior) >= overlapForDup {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		out = append(out, c)
		seen = append(seen, key)
	}
	return out
}

func titleKey(title string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(title)))
	if len(words) > keyWords {
		words = words[:keyWords]
	}
	key := make(map[string]struct{}, len(words))
	for _, w := range words {
		key[w] = struct{}{}
	}
	return key
}

func overlap(a, b map[string]struct{}) int {
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}
