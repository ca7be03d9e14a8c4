package extract

import (
	"testing"
	"time"

	"supplier-scout/internal/domain"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$19.99", 19.99, true},
		{"US $1,299.00", 1299.00, true},
		{"€49", 49, true},
		{"19.99", 19.99, true},
		{"free", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got := Price(tt.in)
		if tt.ok != (got != nil) {
			t.Errorf("Price(%q) = %v, want ok=%v", tt.in, got, tt.ok)
			continue
		}
		if got != nil && *got != tt.want {
			t.Errorf("Price(%q) = %v, want %v", tt.in, *got, tt.want)
		}
	}
}

func TestMagnitude(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1.2K sold", 1200},
		{"3M", 3000000},
		{"5,000+ orders", 5000},
		{"742", 742},
		{"no orders yet", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := Magnitude(tt.in); got != tt.want {
			t.Errorf("Magnitude(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRating(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"4.7 out of 5 stars", 4.7},
		{"9.4", 4.7}, // 10-point scale halved
		{"15", 5},    // halved then clamped
		{"0", 0},
		{"great product", 0},
	}
	for _, tt := range tests {
		if got := Rating(tt.in); got != tt.want {
			t.Errorf("Rating(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDate(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	day := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	tests := []struct {
		in   string
		want *time.Time
		res  domain.DateResolution
	}{
		{"2020-03-15", day(2020, time.March, 15), domain.ResolutionDay},
		{"03/15/2020", day(2020, time.March, 15), domain.ResolutionDay},
		{"Open since March 15, 2020", day(2020, time.March, 15), domain.ResolutionDay},
		{"2020 Mar 15", day(2020, time.March, 15), domain.ResolutionDay},
		{"Since 2017", day(2017, time.January, 1), domain.ResolutionYear},
		{"Store opened in 2024", day(2024, time.January, 1), domain.ResolutionYear},
		{"2031", nil, domain.ResolutionNone}, // future year rejected
		{"1987", nil, domain.ResolutionNone}, // pre-2000 rejected
		// invalid calendar day degrades to the year fallback
		{"02/31/2020", day(2020, time.January, 1), domain.ResolutionYear},
		{"xyz", nil, domain.ResolutionNone},
		{"", nil, domain.ResolutionNone},
	}
	for _, tt := range tests {
		got, res := Date(tt.in, now)
		if res != tt.res {
			t.Errorf("Date(%q) resolution = %v, want %v", tt.in, res, tt.res)
		}
		switch {
		case got == nil && tt.want != nil:
			t.Errorf("Date(%q) = nil, want %v", tt.in, tt.want)
		case got != nil && tt.want == nil:
			t.Errorf("Date(%q) = %v, want nil", tt.in, got)
		case got != nil && !got.Equal(*tt.want):
			t.Errorf("Date(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestShippingDays(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"AliExpress Standard Shipping", 30},
		{"ePacket delivery", 15},
		{"e-packet", 15},
		{"Ships via DHL", 7},
		{"FedEx International Priority", 7},
		{"Express shipping", 10},
		{"Estimated delivery: 12-18 days", 18},
		{"Arrives in 9 days", 9},
		{"Seller's Shipping Method", 30},
		{"", 30},
	}
	for _, tt := range tests {
		if got := ShippingDays(tt.in); got != tt.want {
			t.Errorf("ShippingDays(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFeedbackPercent(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"97.4% Positive Feedback", 97.4, true},
		{"Positive feedback: 99%", 99, true},
		{"98.1", 98.1, true},
		{"150%", 0, false}, // out of range
		{"great", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got := FeedbackPercent(tt.in)
		if tt.ok != (got != nil) {
			t.Errorf("FeedbackPercent(%q) = %v, want ok=%v", tt.in, got, tt.ok)
			continue
		}
		if got != nil && *got != tt.want {
			t.Errorf("FeedbackPercent(%q) = %v, want %v", tt.in, *got, tt.want)
		}
	}
}

// Parsers must stay total: arbitrary junk never panics and always produces
// the documented miss sentinel.
func TestParsersTotalOnGarbage(t *testing.T) {
	garbage := []string{
		"", " ", "\x00\xff", "-----", "NaN%", "日本語テキスト", "<div></div>",
		"999999999999999999999999999", "-42 days ago maybe",
	}
	now := time.Now()
	for _, in := range garbage {
		Price(in)
		Magnitude(in)
		Rating(in)
		Date(in, now)
		ShippingDays(in)
		FeedbackPercent(in)
	}
}
