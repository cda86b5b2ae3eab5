package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"lunelle.GO/service/shopify"
)

// ProductFilter is the structured listing filter. A non-nil Query replaces the
// structured fields entirely; an empty Query means unfiltered.
type ProductFilter struct {
	Query    *string
	Category string
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
	First    int
}

// SearchQuery renders the filter in the Storefront search syntax.
//
//	product_type:Rings AND variants.price:>=50 AND variants.price:<=50
func (f ProductFilter) SearchQuery() string {
	if f.Query != nil {
		return *f.Query
	}
	var parts []string
	if c := strings.TrimSpace(f.Category); c != "" {
		parts = append(parts, "product_type:"+c)
	}
	if f.PriceMin != nil {
		parts = append(parts, "variants.price:>="+f.PriceMin.String())
	}
	if f.PriceMax != nil {
		parts = append(parts, "variants.price:<="+f.PriceMax.String())
	}
	return strings.Join(parts, " AND ")
}

func (f ProductFilter) pageSize() int {
	if f.First <= 0 {
		return shopify.DefaultProductPageSize
	}
	return f.First
}

// Equal compares filters by value.
func (f ProductFilter) Equal(o ProductFilter) bool {
	return f.SearchQuery() == o.SearchQuery() && f.pageSize() == o.pageSize() && (f.Query == nil) == (o.Query == nil)
}

// ParsePrice parses an optional price bound; blank or invalid input is no bound.
func ParsePrice(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return nil
	}
	return &d
}

// Query is a helper for building a raw query filter.
func Query(q string) *string {
	return &q
}
