// Package extract turns raw page text into typed values. Every parser is
// total: garbled or empty input yields a nil/zero/clamped sentinel, never an
// error. Target pages are adversarial and inconsistent, so nothing here may
// assume well-formed input.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"supplier-scout/internal/domain"
)

var (
	decimalRe   = regexp.MustCompile(`\d+(?:\.\d+)?`)
	magnitudeRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*([KM])?`)

	isoDateRe   = regexp.MustCompile(`(\d{4})[-/](\d{1,2})[-/](\d{1,2})`)
	usDateRe    = regexp.MustCompile(`(\d{1,2})[-/](\d{1,2})[-/](\d{4})`)
	longDateRe  = regexp.MustCompile(`([A-Za-z]+)\s+(\d{1,2}),\s+(\d{4})`)
	yearFirstRe = regexp.MustCompile(`(\d{4})\s+([A-Za-z]+)\s+(\d{1,2})`)
	loneYearRe  = regexp.MustCompile(`\b(\d{4})\b`)

	percentRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)
	bareRateRe = regexp.MustCompile(`(\d{2,3}(?:\.\d+)?)`)

	dayRangeRe  = regexp.MustCompile(`(\d+)\s*-\s*(\d+)\s*days?`)
	daySingleRe = regexp.MustCompile(`(\d+)\s*days?`)
)

// Price strips currency symbols and thousands separators and returns the
// first decimal number, or nil when none is present.
func Price(text string) *float64 {
	if text == "" {
		return nil
	}
	cleaned := strings.NewReplacer(",", "", "$", "", "€", "", "£", "").Replace(text)
	m := decimalRe.FindString(cleaned)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Magnitude parses an integer count with an optional K/M suffix
// (case-insensitive). Absence of a count is "zero signal", not "unknown",
// so the miss sentinel is 0 rather than nil.
func Magnitude(text string) int {
	if text == "" {
		return 0
	}
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	m := magnitudeRe.FindStringSubmatch(cleaned)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch strings.ToUpper(m[2]) {
	case "K":
		v *= 1_000
	case "M":
		v *= 1_000_000
	}
	return int(v)
}

// Rating extracts the first decimal number. Values above 5 are assumed to be
// on a 10-point scale and halved. The result is clamped to [0, 5].
func Rating(text string) float64 {
	m := decimalRe.FindString(text)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	if v > 5 {
		v /= 2
	}
	if v > 5 {
		v = 5
	}
	if v < 0 {
		v = 0
	}
	return v
}

// Date tries, in order, ISO (Y-M-D), US (M/D/Y), long-form ("Month D, Year")
// and year-first ("Year Month D") patterns. When none match it falls back to
// a lone 4-digit year in [2000, current year], resolved to January 1 with
// year resolution. Returns (nil, ResolutionNone) when nothing matches.
func Date(text string, now time.Time) (*time.Time, domain.DateResolution) {
	if text == "" {
		return nil, domain.ResolutionNone
	}

	if m := isoDateRe.FindStringSubmatch(text); m != nil {
		if t := buildDate(m[1], m[2], m[3]); t != nil {
			return t, domain.ResolutionDay
		}
	}
	if m := usDateRe.FindStringSubmatch(text); m != nil {
		if t := buildDate(m[3], m[1], m[2]); t != nil {
			return t, domain.ResolutionDay
		}
	}
	if m := longDateRe.FindStringSubmatch(text); m != nil {
		for _, layout := range []string{"January 2, 2006", "Jan 2, 2006"} {
			if t, err := time.Parse(layout, m[0]); err == nil {
				return &t, domain.ResolutionDay
			}
		}
	}
	if m := yearFirstRe.FindStringSubmatch(text); m != nil {
		for _, layout := range []string{"2006 January 2", "2006 Jan 2"} {
			if t, err := time.Parse(layout, m[0]); err == nil {
				return &t, domain.ResolutionDay
			}
		}
	}

	if m := loneYearRe.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		if year >= 2000 && year <= now.Year() {
			t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
			return &t, domain.ResolutionYear
		}
	}
	return nil, domain.ResolutionNone
}

func buildDate(yearS, monthS, dayS string) *time.Time {
	year, _ := strconv.Atoi(yearS)
	month, _ := strconv.Atoi(monthS)
	day, _ := strconv.Atoi(dayS)
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Reject normalized overflows like February 31.
	if int(t.Month()) != month || t.Day() != day {
		return nil
	}
	return &t
}

// ShippingDays classifies shipping text into an estimated day count.
// Known carrier keywords take priority over numeric extraction; a range like
// "12-18 days" resolves to the upper bound. Unmatched text defaults to 30,
// the conservative worst case rather than "unknown".
func ShippingDays(text string) int {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "standard") && strings.Contains(lower, "aliexpress"):
		return 30
	case strings.Contains(lower, "epacket") || strings.Contains(lower, "e-packet"):
		return 15
	case strings.Contains(lower, "dhl") || strings.Contains(lower, "fedex") || strings.Contains(lower, "ups"):
		return 7
	case strings.Contains(lower, "express"):
		return 10
	}

	if m := dayRangeRe.FindStringSubmatch(lower); m != nil {
		if hi, err := strconv.Atoi(m[2]); err == nil {
			return hi
		}
	}
	if m := daySingleRe.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 30
}

// FeedbackPercent extracts a positive-feedback percentage: an explicit "NN%"
// first, then a bare two-or-three digit value that fits in [0, 100].
// Returns nil when neither form is present.
func FeedbackPercent(text string) *float64 {
	if text == "" {
		return nil
	}
	if m := percentRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v >= 0 && v <= 100 {
			return &v
		}
	}
	if m := bareRateRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v >= 0 && v <= 100 {
			return &v
		}
	}
	return nil
}
