package domain

import "time"

// DateResolution marks how precisely a store open date was determined.
// Year-resolution dates come from the lone-year fallback and carry lower
// confidence than a fully matched pattern.
type DateResolution int

const (
	ResolutionNone DateResolution = iota
	ResolutionYear
	ResolutionDay
)

// RedFlag is a named condition making a supplier untrustworthy per policy.
type RedFlag struct {
	Code   string // stable machine code, e.g. "age<1yr"
	Reason string // human-readable detail for the run log
}

// Red-flag codes. Rules are evaluated independently and accumulated.
const (
	FlagYoungStore      = "age<1yr"
	FlagUnknownAge      = "age-unknown"
	FlagLowFeedback     = "low-feedback"
	FlagUnknownFeedback = "feedback-unknown"
	FlagSlowShipping    = "shipping>30d"
	FlagUnknownName     = "name-unknown"
)

// StoreProfile describes the supplier behind an equivalent listing.
// Any attribute absent from the page stays nil, never a fabricated default.
type StoreProfile struct {
	Name           *string
	URL            *string
	OpenDate       *time.Time
	OpenDateRes    DateResolution
	Feedback       *float64 // positive-feedback percentage in [0, 100]
	ShippingMethod string   // raw shipping text as seen on the page
	ShippingDays   int      // classified estimate, worst-case 30 when unknown
	RedFlags       []RedFlag
}

// AgeYears returns the store age in fractional years, or nil when the open
// date could not be determined.
func (p *StoreProfile) AgeYears(now time.Time) *float64 {
	if p.OpenDate == nil {
		return nil
	}
	years := now.Sub(*p.OpenDate).Hours() / 24 / 365.25
	return &years
}

// TrustedAggregatorProfile returns the static profile used when the
// equivalent listing lives on the institutional dropshipping aggregator.
// That platform is itself the trusted counterparty, so its profile is a
// hard-coded constant rather than a scrape result.
func TrustedAggregatorProfile() *StoreProfile {
	name := "CJ Dropshipping"
	url := "https://www.cjdropshipping.com"
	opened := time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)
	feedback := 98.0
	return &StoreProfile{
		Name:           &name,
		URL:            &url,
		OpenDate:       &opened,
		OpenDateRes:    ResolutionDay,
		Feedback:       &feedback,
		ShippingMethod: "CJ Express Shipping",
		ShippingDays:   10,
	}
}

// Disposition is the final outcome of a candidate that completed the pipeline.
type Disposition string

const (
	DispositionValidated  Disposition = "Validated"
	DispositionRedFlagged Disposition = "RedFlagged"
)

// ValidationRecord is the durable unit of output: candidate, store profile,
// derived store age and final disposition. Created exactly once per candidate
// that completes the pipeline and appended to the checkpoint store on the spot.
type ValidationRecord struct {
	Candidate   *Candidate
	Link        *EquivalenceLink // nil when the candidate was already on the supplier platform
	Store       *StoreProfile
	AgeYears    *float64
	Disposition Disposition
	DecidedAt   time.Time
}
