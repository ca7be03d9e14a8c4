package validation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"supplier-scout/internal/browser"
	"supplier-scout/internal/browser/stub"
	"supplier-scout/internal/domain"
	"supplier-scout/internal/ratelimit"
	"supplier-scout/internal/storage/memory"
)

var fixedNow = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

func testPolicy(retries int) *ratelimit.Policy {
	return ratelimit.New(ratelimit.Config{MaxRetries: retries})
}

func newTestMachine(session *stub.Session, equivalences *memory.EquivalenceStore) *Machine {
	return New(Options{
		Session:      session,
		Policy:       testPolicy(2),
		Rules:        StrictRules(),
		Equivalences: equivalences,
		Now:          func() time.Time { return fixedNow },
		Sleep:        func(context.Context, time.Duration) {},
	})
}

func TestProcessFullPathValidated(t *testing.T) {
	session := stub.NewSession()
	session.AddPage(supplierSearchURL, &stub.Page{
		Links: map[string][]string{
			productLinkQuery: {"", "//www.aliexpress.com/item/100.html?spm=track"},
		},
	})
	session.AddPage("https://www.aliexpress.com/item/100.html", &stub.Page{
		Selectors: map[string]string{
			`a[href*="/store/"]`:  "GadgetPro Store",
			`[class*="shipping"]`: "ePacket delivery",
		},
		Links: map[string][]string{
			storeLinkQuery: {"/store/123"},
		},
	})
	session.AddPage("https://www.aliexpress.com/store/123", &stub.Page{
		Selectors: map[string]string{
			`[class*="open-date"]`: "Open since March 15, 2020",
			`[class*="feedback"]`:  "97.4% Positive Feedback",
		},
	})

	equivalences := memory.NewEquivalenceStore()
	m := newTestMachine(session, equivalences)

	c := &domain.Candidate{
		Title:     "Magnetic Phone Mount for Car",
		SourceURL: "https://www.amazon.com/dp/B0123",
		Origin:    domain.OriginAmazon,
		Keyword:   "phone mount",
	}
	rec, err := m.Process(context.Background(), c)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if rec.Disposition != domain.DispositionValidated {
		t.Errorf("disposition = %v, flags %v", rec.Disposition, rec.Store.RedFlags)
	}
	if rec.Link == nil || rec.Link.EquivalentURL != "https://www.aliexpress.com/item/100.html" {
		t.Fatalf("link = %+v, want normalized equivalent URL", rec.Link)
	}
	if rec.Link.DiscoveredVia != domain.DiscoveredViaKeyword {
		t.Errorf("discovered via %q", rec.Link.DiscoveredVia)
	}
	if rec.Store.Name == nil || *rec.Store.Name != "GadgetPro Store" {
		t.Errorf("store name = %v", rec.Store.Name)
	}
	if rec.Store.ShippingDays != 15 {
		t.Errorf("shipping days = %d, want ePacket estimate", rec.Store.ShippingDays)
	}
	if rec.Store.Feedback == nil || *rec.Store.Feedback != 97.4 {
		t.Errorf("feedback = %v", rec.Store.Feedback)
	}
	if rec.Store.OpenDateRes != domain.ResolutionDay {
		t.Errorf("open date resolution = %v", rec.Store.OpenDateRes)
	}
	if rec.AgeYears == nil || *rec.AgeYears < 4.1 || *rec.AgeYears > 4.3 {
		t.Errorf("age = %v, want about 4.2 years", rec.AgeYears)
	}
	if !rec.DecidedAt.Equal(fixedNow) {
		t.Errorf("decided at %v", rec.DecidedAt)
	}

	// The link checkpoints the moment it is discovered.
	if links := equivalences.Links(); len(links) != 1 || links[0].EquivalentURL != rec.Link.EquivalentURL {
		t.Errorf("equivalence store holds %d links", len(links))
	}

	// search, product page, store page
	if len(session.NavLog) != 3 {
		t.Errorf("navigations = %v", session.NavLog)
	}
	if !strings.HasPrefix(session.NavLog[0], supplierSearchURL) {
		t.Errorf("first navigation %q is not the search", session.NavLog[0])
	}
}

func TestProcessSupplierURLSkipsSearch(t *testing.T) {
	session := stub.NewSession()
	session.AddPage("https://www.aliexpress.com/item/200.html", &stub.Page{
		Selectors: map[string]string{
			`a[href*="/store/"]`:  "Fresh Store",
			`[class*="shipping"]`: "Ships in 20 days",
		},
		Links: map[string][]string{
			storeLinkQuery: {"/store/456"},
		},
		BodyText: "Positive: 97%",
	})
	session.AddPage("https://www.aliexpress.com/store/456", &stub.Page{
		Selectors: map[string]string{
			`[class*="open-date"]`: "2023-12-01",
		},
	})

	m := newTestMachine(session, memory.NewEquivalenceStore())

	c := &domain.Candidate{
		Title:     "LED Strip Lights",
		SourceURL: "https://www.aliexpress.com/item/200.html",
		Origin:    domain.OriginAliExpress,
	}
	rec, err := m.Process(context.Background(), c)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if rec.Link != nil {
		t.Errorf("supplier-platform candidate produced a link: %+v", rec.Link)
	}
	if session.NavLog[0] != c.SourceURL {
		t.Errorf("first navigation %q, want the product page directly", session.NavLog[0])
	}

	// Half-year-old store with good feedback and acceptable shipping: exactly
	// the young-store flag.
	if rec.Disposition != domain.DispositionRedFlagged {
		t.Fatalf("disposition = %v", rec.Disposition)
	}
	if !sameCodes(rec.Store.RedFlags, domain.FlagYoungStore) {
		t.Errorf("flags = %v, want only the age flag", flagCodes(rec.Store.RedFlags))
	}
	if rec.Store.ShippingDays != 20 {
		t.Errorf("shipping days = %d", rec.Store.ShippingDays)
	}
}

func TestProcessAggregatorUsesTrustedProfile(t *testing.T) {
	// No page scripted: navigation fails and the static profile stands alone.
	session := stub.NewSession()
	m := newTestMachine(session, memory.NewEquivalenceStore())

	c := &domain.Candidate{
		Title:     "Pet Grooming Glove",
		SourceURL: "https://cjdropshipping.com/product/777",
	}
	rec, err := m.Process(context.Background(), c)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if rec.Disposition != domain.DispositionValidated {
		t.Errorf("disposition = %v, flags %v", rec.Disposition, flagCodes(rec.Store.RedFlags))
	}
	if rec.Store.Name == nil || *rec.Store.Name != "CJ Dropshipping" {
		t.Errorf("store name = %v", rec.Store.Name)
	}
	if rec.Store.ShippingDays != 10 {
		t.Errorf("shipping days = %d", rec.Store.ShippingDays)
	}
}

func TestProcessAggregatorRefinesShippingFromPage(t *testing.T) {
	// The static profile estimates 10 days; a concrete shipping window in the
	// live page text wins over the estimate.
	session := stub.NewSession()
	session.AddPage("https://cjdropshipping.com/product/888", &stub.Page{
		BodyText: "Estimated delivery 5-8 days to most regions.",
	})
	m := newTestMachine(session, memory.NewEquivalenceStore())

	c := &domain.Candidate{
		Title:     "Collapsible Water Bottle",
		SourceURL: "https://cjdropshipping.com/product/888",
	}
	rec, err := m.Process(context.Background(), c)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if rec.Store.ShippingDays != 8 {
		t.Errorf("shipping days = %d, want the page's upper bound", rec.Store.ShippingDays)
	}
	if rec.Store.ShippingMethod != "CJ Express Shipping" {
		t.Errorf("shipping method = %q", rec.Store.ShippingMethod)
	}
	if rec.Disposition != domain.DispositionValidated {
		t.Errorf("disposition = %v, flags %v", rec.Disposition, flagCodes(rec.Store.RedFlags))
	}
}

func TestProcessSessionLossAbortsSearch(t *testing.T) {
	session := stub.NewSession()
	session.AddPage(supplierSearchURL, &stub.Page{LoseSession: true})

	m := newTestMachine(session, memory.NewEquivalenceStore())

	c := &domain.Candidate{
		Title:     "Doomed Widget",
		SourceURL: "https://www.amazon.com/dp/B0555",
		Keyword:   "doomed",
	}
	rec, err := m.Process(context.Background(), c)
	if !errors.Is(err, browser.ErrSessionLost) {
		t.Fatalf("err = %v, want ErrSessionLost", err)
	}
	if errors.Is(err, ErrEquivalenceNotFound) {
		t.Error("session loss misreported as a failed search")
	}
	if rec != nil {
		t.Errorf("record = %+v", rec)
	}
	// A dead browser is not retried.
	if len(session.NavLog) != 1 {
		t.Errorf("navigation attempts = %d, want 1", len(session.NavLog))
	}
}

func TestProcessSessionLossDuringInspection(t *testing.T) {
	session := stub.NewSession()
	session.AddPage(supplierSearchURL, &stub.Page{
		Links: map[string][]string{
			productLinkQuery: {"/item/400.html"},
		},
	})
	session.AddPage("https://www.aliexpress.com/item/400.html", &stub.Page{LoseSession: true})

	m := newTestMachine(session, memory.NewEquivalenceStore())

	c := &domain.Candidate{
		Title:     "Fatal Listing",
		SourceURL: "https://www.amazon.com/dp/B0666",
		Keyword:   "fatal",
	}
	rec, err := m.Process(context.Background(), c)
	if !errors.Is(err, browser.ErrSessionLost) {
		t.Fatalf("err = %v, want ErrSessionLost", err)
	}
	if rec != nil {
		t.Errorf("record = %+v", rec)
	}
}

func TestProcessSearchExhaustionDropsCandidate(t *testing.T) {
	session := stub.NewSession()
	session.AddPage(supplierSearchURL, &stub.Page{FailNavs: stub.AlwaysFail})

	m := newTestMachine(session, memory.NewEquivalenceStore())

	c := &domain.Candidate{
		Title:     "Unfindable Widget",
		SourceURL: "https://www.amazon.com/dp/B0999",
		Keyword:   "widget",
	}
	rec, err := m.Process(context.Background(), c)
	if !errors.Is(err, ErrEquivalenceNotFound) {
		t.Fatalf("err = %v, want ErrEquivalenceNotFound", err)
	}
	if rec != nil {
		t.Errorf("dropped candidate produced a record: %+v", rec)
	}
	// initial attempt plus MaxRetries retries
	if len(session.NavLog) != 3 {
		t.Errorf("navigation attempts = %d, want 3", len(session.NavLog))
	}
}

func TestProcessNoProductLinksDropsCandidate(t *testing.T) {
	session := stub.NewSession()
	session.AddPage(supplierSearchURL, &stub.Page{
		Links: map[string][]string{
			productLinkQuery: {"/wholesale/related", ""},
		},
	})

	m := newTestMachine(session, memory.NewEquivalenceStore())

	c := &domain.Candidate{
		Title:     "Obscure Thing",
		SourceURL: "https://www.amazon.com/dp/B0888",
		Keyword:   "obscure",
	}
	if _, err := m.Process(context.Background(), c); !errors.Is(err, ErrEquivalenceNotFound) {
		t.Fatalf("err = %v, want ErrEquivalenceNotFound", err)
	}
}

func TestProcessUnloadableProductPageStillDisposes(t *testing.T) {
	session := stub.NewSession()
	session.AddPage(supplierSearchURL, &stub.Page{
		Links: map[string][]string{
			productLinkQuery: {"/item/300.html"},
		},
	})
	// The product page itself always fails.
	session.AddPage("https://www.aliexpress.com/item/300.html", &stub.Page{FailNavs: stub.AlwaysFail})

	m := newTestMachine(session, memory.NewEquivalenceStore())

	c := &domain.Candidate{
		Title:     "Flaky Listing",
		SourceURL: "https://www.amazon.com/dp/B0777",
		Keyword:   "flaky",
	}
	rec, err := m.Process(context.Background(), c)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	// Nothing could be inspected: unknown age and feedback, worst-case
	// shipping still inside the ceiling.
	if rec.Disposition != domain.DispositionRedFlagged {
		t.Fatalf("disposition = %v", rec.Disposition)
	}
	if !sameCodes(rec.Store.RedFlags, domain.FlagUnknownAge, domain.FlagUnknownFeedback) {
		t.Errorf("flags = %v", flagCodes(rec.Store.RedFlags))
	}
	if rec.Store.ShippingDays != 30 {
		t.Errorf("shipping days = %d, want the worst-case default", rec.Store.ShippingDays)
	}
}
