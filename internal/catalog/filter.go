package catalog

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/marble-idols/storefront/internal/domain"
)

// ApplyFilters narrows records by search, categories, materials, styles and price (in that
// order) and then orders the survivors by state.Sort. The input slice is never modified and
// an empty result is returned as an empty, non-nil slice.
func ApplyFilters(records []domain.Product, state domain.FilterState) []domain.Product {
	state = Normalize(state)

	fold := cases.Fold()
	needle := fold.String(state.Search)

	out := make([]domain.Product, 0, len(records))
	for _, p := range records {
		if needle != "" && !strings.Contains(fold.String(p.Name), needle) {
			continue
		}
		if len(state.Categories) > 0 && !containsSorted(state.Categories, p.CategorySlug()) {
			continue
		}
		if len(state.Materials) > 0 && !containsSorted(state.Materials, p.MaterialSlug()) {
			continue
		}
		if len(state.Styles) > 0 && !slices.Contains(state.Styles, p.PaintingStyle) {
			continue
		}
		price := FilterPrice(p)
		if price < state.PriceRange.Min || price > state.PriceRange.Max {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, state.Sort)
	return out
}

func sortProducts(products []domain.Product, mode domain.SortMode) {
	switch mode {
	case domain.SortPriceLow:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(SortPrice(a), SortPrice(b))
		})
	case domain.SortPriceHigh:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(SortPrice(b), SortPrice(a))
		})
	case domain.SortNewest:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	default:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			switch {
			case a.Featured == b.Featured:
				return 0
			case a.Featured:
				return -1
			default:
				return 1
			}
		})
	}
}

// FilterPrice is the price used by the price window: the display price, then the actual
// price, then zero.
func FilterPrice(p domain.Product) float64 {
	if v, ok := ParsePrice(p.Price); ok {
		return v
	}
	if p.ActualPrice != nil {
		return *p.ActualPrice
	}
	return 0
}

// SortPrice is the price used for ordering: the actual price when present, else the display
// price, else zero.
func SortPrice(p domain.Product) float64 {
	if p.ActualPrice != nil {
		return *p.ActualPrice
	}
	if v, ok := ParsePrice(p.Price); ok {
		return v
	}
	return 0
}

var priceToken = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]+)?`)

// ParsePrice reads the first number in a display price such as "₹ 12,500", "Rs. 500" or
// "₹1,500/-". Grouping commas are dropped and currency marks or suffixes around the number
// are ignored.
func ParsePrice(raw string) (float64, bool) {
	token := priceToken.FindString(raw)
	if token == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func containsSorted(values []string, value string) bool {
	if value == "" {
		return false
	}
	_, found := slices.BinarySearch(values, value)
	return found
}
