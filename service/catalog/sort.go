package catalog

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"lunelle.GO/model/entity"
)

type SortOption string

const (
	SortNewest    SortOption = "newest"
	SortPriceLow  SortOption = "price-low"
	SortPriceHigh SortOption = "price-high"
	SortName      SortOption = "name"
)

// SortOptions lists the shop page choices in display order.
var SortOptions = []struct {
	Value SortOption
	Label string
}{
	{SortNewest, "Newest"},
	{SortPriceLow, "Price: Low to High"},
	{SortPriceHigh, "Price: High to Low"},
	{SortName, "Name"},
}

// ParseSort maps a query value to a SortOption, defaulting to newest.
func ParseSort(s string) SortOption {
	switch SortOption(s) {
	case SortPriceLow, SortPriceHigh, SortName:
		return SortOption(s)
	}
	return SortNewest
}

// SortProducts returns a sorted copy. Newest keeps the remote order.
func SortProducts(products []entity.Product, by SortOption) []entity.Product {
	out := append([]entity.Product(nil), products...)
	switch by {
	case SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.Amount.LessThan(out[j].Price.Amount) })
	case SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.Amount.GreaterThan(out[j].Price.Amount) })
	case SortName:
		sort.SliceStable(out, func(i, j int) bool { return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title) })
	}
	return out
}

// FilterByPrice keeps products whose display price is within [min, max]. Nil bounds are open.
func FilterByPrice(products []entity.Product, min, max *decimal.Decimal) []entity.Product {
	out := make([]entity.Product, 0, len(products))
	for _, p := range products {
		if min != nil && p.Price.Amount.LessThan(*min) {
			continue
		}
		if max != nil && p.Price.Amount.GreaterThan(*max) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// RelatedProducts drops the current product and keeps at most n others.
func RelatedProducts(products []entity.Product, currentHandle string, n int) []entity.Product {
	out := make([]entity.Product, 0, n)
	for _, p := range products {
		if p.Handle == currentHandle {
			continue
		}
		if len(out) == n {
			break
		}
		out = append(out, p)
	}
	return out
}
