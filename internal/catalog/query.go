package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/marble-idols/storefront/internal/domain"
)

// Query parameter names mirrored between FilterState and the page URL.
const (
	ParamSearch     = "search"
	ParamMaterials  = "materials"
	ParamStyles     = "styles"
	ParamCategories = "categories"
	ParamSort       = "sort"
	ParamPage       = "page"
	ParamMinPrice   = "minPrice"
	ParamMaxPrice   = "maxPrice"

	listSeparator = ","
)

// ToQueryString serialises the state, writing only fields that differ from the defaults.
// The default state encodes to an empty string.
func ToQueryString(state domain.FilterState) string {
	return ToValues(state).Encode()
}

// ToValues is ToQueryString before encoding.
func ToValues(state domain.FilterState) url.Values {
	state = Normalize(state)
	values := url.Values{}
	if state.Search != "" {
		values.Set(ParamSearch, state.Search)
	}
	if len(state.Materials) > 0 {
		values.Set(ParamMaterials, strings.Join(state.Materials, listSeparator))
	}
	if len(state.Styles) > 0 {
		styles := make([]string, 0, len(state.Styles))
		for _, s := range state.Styles {
			styles = append(styles, string(s))
		}
		values.Set(ParamStyles, strings.Join(styles, listSeparator))
	}
	if len(state.Categories) > 0 {
		values.Set(ParamCategories, strings.Join(state.Categories, listSeparator))
	}
	if state.Sort != domain.SortFeatured {
		values.Set(ParamSort, string(state.Sort))
	}
	if state.Page > 1 {
		values.Set(ParamPage, strconv.Itoa(state.Page))
	}
	if state.PriceRange.Min != domain.PriceFloor {
		values.Set(ParamMinPrice, formatPrice(state.PriceRange.Min))
	}
	if state.PriceRange.Max != domain.PriceCeiling {
		values.Set(ParamMaxPrice, formatPrice(state.PriceRange.Max))
	}
	return values
}

// FromQueryString parses a raw query string (with or without the leading "?"). Missing or
// malformed fields fall back to their defaults; it never fails.
func FromQueryString(raw string) domain.FilterState {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "?")
	// ParseQuery keeps every pair it managed to decode even when it reports an error.
	values, _ := url.ParseQuery(raw)
	return FromValues(values)
}

// FromValues builds a state from already decoded query values.
func FromValues(values url.Values) domain.FilterState {
	state := domain.DefaultFilterState()
	if values == nil {
		return state
	}

	state.Search = values.Get(ParamSearch)
	state.Materials = splitList(values[ParamMaterials])
	state.Categories = splitList(values[ParamCategories])
	for _, raw := range splitList(values[ParamStyles]) {
		state.Styles = append(state.Styles, domain.PaintingStyle(raw))
	}
	if mode, ok := domain.ParseSortMode(values.Get(ParamSort)); ok {
		state.Sort = mode
	}
	if page, err := strconv.Atoi(strings.TrimSpace(values.Get(ParamPage))); err == nil && page > 1 {
		state.Page = page
	}
	if min, ok := parseBound(values.Get(ParamMinPrice)); ok {
		state.PriceRange.Min = min
	}
	if max, ok := parseBound(values.Get(ParamMaxPrice)); ok {
		state.PriceRange.Max = max
	}
	return Normalize(state)
}

// splitList accepts both comma-joined values and repeated parameters.
func splitList(raw []string) []string {
	var out []string
	for _, entry := range raw {
		for _, part := range strings.Split(entry, listSeparator) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseBound(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
