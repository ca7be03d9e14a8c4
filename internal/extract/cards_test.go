package extract

import (
	"testing"

	"supplier-scout/internal/domain"
)

const supplierListingHTML = `
<html><body>
<div class="list">
  <div class="product-card">
    <div class="product-title">LED Strip Lights 5m RGB</div>
    <div class="price-current">$12.99</div>
    <span class="order-count">2.3K sold</span>
    <span class="rating-value">4.8</span>
    <span class="review-count">412 reviews</span>
    <a href="//www.aliexpress.com/item/1005001.html?spm=track">link</a>
  </div>
  <div class="product-card">
    <div class="product-title">Sponsored</div>
    <a href="/item/ad.html">ad</a>
  </div>
  <div class="product-card">
    <div class="product-title">Magnetic Phone Mount</div>
    <a href="/item/1005002.html">link</a>
  </div>
  <div class="product-card">
    <div class="product-title">Posture Corrector Back Brace</div>
    <div class="price-current">$9.50</div>
    <span class="order-count">980 sold</span>
    <a href="https://www.aliexpress.com/item/1005003.html">link</a>
  </div>
</div>
</body></html>`

func TestCardsSupplierListing(t *testing.T) {
	got, err := Cards(supplierListingHTML, AliExpressCards(), domain.OriginAliExpress, "led lights", 0)
	if err != nil {
		t.Fatalf("Cards: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d cards, want 3 (sponsored card skipped)", len(got))
	}

	first := got[0]
	if first.Title != "LED Strip Lights 5m RGB" {
		t.Errorf("title = %q", first.Title)
	}
	if first.Price == nil || *first.Price != 12.99 {
		t.Errorf("price = %v, want 12.99", first.Price)
	}
	if first.Demand != 2300 {
		t.Errorf("demand = %d, want 2300", first.Demand)
	}
	if first.Rating != 4.8 {
		t.Errorf("rating = %v, want 4.8", first.Rating)
	}
	if first.Competition != 412 {
		t.Errorf("competition = %d, want 412", first.Competition)
	}
	if first.SourceURL != "https://www.aliexpress.com/item/1005001.html" {
		t.Errorf("url = %q, want tracking query stripped", first.SourceURL)
	}
	if first.Origin != domain.OriginAliExpress || first.Keyword != "led lights" {
		t.Errorf("origin/keyword = %v/%q", first.Origin, first.Keyword)
	}

	// Sparse card keeps zero-value fields instead of being dropped.
	sparse := got[1]
	if sparse.Title != "Magnetic Phone Mount" || sparse.Price != nil || sparse.Demand != 0 {
		t.Errorf("sparse card = %+v", sparse)
	}
	if sparse.SourceURL != "https://www.aliexpress.com/item/1005002.html" {
		t.Errorf("sparse url = %q", sparse.SourceURL)
	}
}

func TestCardsLimit(t *testing.T) {
	got, err := Cards(supplierListingHTML, AliExpressCards(), domain.OriginAliExpress, "", 2)
	if err != nil {
		t.Fatalf("Cards: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d cards, want limit of 2", len(got))
	}
}

func TestCardsRetailDemandProxy(t *testing.T) {
	html := `
<div data-component-type="s-search-result">
  <h2><a href="/dp/B012345"><span>Wireless Earbuds Pro</span></a></h2>
  <span class="a-price"><span class="a-offscreen">$29.99</span></span>
  <i class="a-icon-alt">4.4 out of 5 stars</i>
  <a href="#customerReviews">1.8K</a>
</div>`
	got, err := Cards(html, AmazonCards(), domain.OriginAmazon, "earbuds", 0)
	if err != nil {
		t.Fatalf("Cards: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d cards, want 1", len(got))
	}
	c := got[0]
	if c.Competition != 1800 {
		t.Errorf("competition = %d, want 1800", c.Competition)
	}
	if c.Demand != c.Competition {
		t.Errorf("demand = %d, want reviews proxy %d", c.Demand, c.Competition)
	}
	if c.SourceURL != "https://www.amazon.com/dp/B012345" {
		t.Errorf("url = %q", c.SourceURL)
	}
}

func TestCardsNoMatches(t *testing.T) {
	got, err := Cards("<html><body><p>captcha</p></body></html>", AliExpressCards(), domain.OriginAliExpress, "", 0)
	if err != nil {
		t.Fatalf("Cards: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d cards from empty page, want 0", len(got))
	}
}

func TestNormalizeHref(t *testing.T) {
	tests := []struct {
		href, want string
	}{
		{"//www.aliexpress.com/item/1.html?x=1", "https://www.aliexpress.com/item/1.html"},
		{"https://example.com/item/2.html", "https://example.com/item/2.html"},
		{"/item/3.html", "https://www.aliexpress.com/item/3.html"},
		{"item/4.html", "item/4.html"},
	}
	for _, tt := range tests {
		if got := NormalizeHref(tt.href, "https://www.aliexpress.com"); got != tt.want {
			t.Errorf("NormalizeHref(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}
