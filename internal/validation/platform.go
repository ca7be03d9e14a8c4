package validation

import "strings"

// Supplier-platform hosts. Candidates whose URLs already live on one of
// these skip equivalence search.
const (
	supplierSearchURL = "https://www.aliexpress.com/wholesale?SearchText="
	productLinkQuery  = `a[href*="/item/"]`
	supplierBaseURL   = "https://www.aliexpress.com"
)

// IsSupplierURL reports whether the URL points at the supplier marketplace.
func IsSupplierURL(url string) bool {
	lower := strings.ToLower(url)
	return strings.Contains(lower, "aliexpress.com") || strings.Contains(lower, "aliexpress.us")
}

// IsAggregatorURL reports whether the URL points at the institutional
// dropshipping aggregator, whose store profile is a trusted constant.
func IsAggregatorURL(url string) bool {
	return strings.Contains(strings.ToLower(url), "cjdropshipping.com")
}

// UsableSeedURL rejects placeholder and script-href seed URLs up front.
func UsableSeedURL(url string) bool {
	return url != "" && url != "N/A" && !strings.Contains(url, "javascript:void")
}
