package domain

// OriginSite identifies the marketplace a candidate was discovered on.
type OriginSite string

const (
	// OriginAmazon is the retail marketplace. Order counts are hidden there,
	// so review counts stand in as the demand signal.
	OriginAmazon OriginSite = "Amazon"

	// OriginAliExpress is the supplier platform itself. Candidates discovered
	// there skip equivalence search and go straight to store inspection.
	OriginAliExpress OriginSite = "AliExpress"
)

// Candidate is a prospective sourced product awaiting validation.
// Immutable once scored, except for the attached equivalence link.
type Candidate struct {
	Title       string
	SourceURL   string
	Price       *float64 // nil when the listing showed no parseable price
	Demand      int      // order count, or review count as proxy where orders are hidden
	Competition int      // review count
	Rating      float64  // normalized to [0, 5]
	Score       float64  // opportunity score in [0, 100]
	Origin      OriginSite
	Keyword     string // search keyword that surfaced the listing
}

// DiscoverySource records how an equivalence link was derived.
type DiscoverySource string

const (
	DiscoveredViaKeyword    DiscoverySource = "keyword"
	DiscoveredViaTitleTerms DiscoverySource = "title-terms"
)

// EquivalenceLink maps a candidate's origin listing to a same-product listing
// on the supplier platform. At most one active link per candidate. The link is
// re-derivable, so a candidate whose search comes up empty is dropped rather
// than failing the batch.
type EquivalenceLink struct {
	Candidate     *Candidate
	EquivalentURL string
	DiscoveredVia DiscoverySource
}
