// Package catalog derives the shopper-facing product view from a raw record set and the
// filter state held in the page URL.
package catalog

import (
	"math"
	"slices"
	"strings"

	"github.com/marble-idols/storefront/internal/domain"
)

// Normalize returns a copy of state that satisfies the FilterState invariants: page is at
// least 1, the price window is ordered and clamped, the sort mode is known and every set is
// sorted without duplicates. States returned by Normalize are the valid states.
func Normalize(state domain.FilterState) domain.FilterState {
	out := domain.FilterState{
		Search:     state.Search,
		Materials:  normalizeSet(state.Materials),
		Styles:     normalizeStyles(state.Styles),
		Categories: normalizeSet(state.Categories),
		PriceRange: normalizePriceRange(state.PriceRange),
		Sort:       state.Sort,
		Page:       state.Page,
	}
	if mode, ok := domain.ParseSortMode(string(out.Sort)); ok {
		out.Sort = mode
	} else {
		out.Sort = domain.SortFeatured
	}
	if out.Page < 1 {
		out.Page = 1
	}
	return out
}

// WithSearch replaces the search text and returns to the first page.
func WithSearch(state domain.FilterState, search string) domain.FilterState {
	state.Search = search
	return firstPage(state)
}

// ToggleMaterial adds or removes a material slug and returns to the first page.
func ToggleMaterial(state domain.FilterState, slug string) domain.FilterState {
	state.Materials = toggle(state.Materials, strings.TrimSpace(slug))
	return firstPage(state)
}

// ToggleCategory adds or removes a category slug and returns to the first page.
func ToggleCategory(state domain.FilterState, slug string) domain.FilterState {
	state.Categories = toggle(state.Categories, strings.TrimSpace(slug))
	return firstPage(state)
}

// ToggleStyle adds or removes a painting style and returns to the first page.
func ToggleStyle(state domain.FilterState, style domain.PaintingStyle) domain.FilterState {
	canonical, ok := parseStyle(string(style))
	if !ok {
		return Normalize(state)
	}
	idx := slices.Index(state.Styles, canonical)
	styles := slices.Clone(state.Styles)
	if idx >= 0 {
		styles = slices.Delete(styles, idx, idx+1)
	} else {
		styles = append(styles, canonical)
	}
	state.Styles = styles
	return firstPage(state)
}

// WithPriceRange replaces the price window and returns to the first page.
func WithPriceRange(state domain.FilterState, min, max float64) domain.FilterState {
	state.PriceRange = domain.PriceRange{Min: min, Max: max}
	return firstPage(state)
}

// WithSort replaces the sort mode and returns to the first page.
func WithSort(state domain.FilterState, mode domain.SortMode) domain.FilterState {
	state.Sort = mode
	return firstPage(state)
}

// WithPage moves to the given page without touching the filters.
func WithPage(state domain.FilterState, page int) domain.FilterState {
	state.Page = page
	return Normalize(state)
}

// Reset clears every filter.
func Reset() domain.FilterState {
	return domain.DefaultFilterState()
}

func firstPage(state domain.FilterState) domain.FilterState {
	state.Page = 1
	return Normalize(state)
}

func toggle(values []string, value string) []string {
	if value == "" {
		return values
	}
	out := slices.Clone(values)
	if idx := slices.Index(out, value); idx >= 0 {
		return slices.Delete(out, idx, idx+1)
	}
	return append(out, value)
}

func normalizeSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || strings.Contains(v, listSeparator) {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func normalizeStyles(values []domain.PaintingStyle) []domain.PaintingStyle {
	if len(values) == 0 {
		return nil
	}
	out := make([]domain.PaintingStyle, 0, len(values))
	for _, v := range values {
		if style, ok := parseStyle(string(v)); ok {
			out = append(out, style)
		}
	}
	if len(out) == 0 {
		return nil
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func parseStyle(raw string) (domain.PaintingStyle, bool) {
	raw = strings.TrimSpace(raw)
	for _, style := range domain.PaintingStyles {
		if strings.EqualFold(raw, string(style)) {
			return style, true
		}
	}
	return "", false
}

func normalizePriceRange(r domain.PriceRange) domain.PriceRange {
	min := clampPrice(r.Min, domain.PriceFloor)
	max := clampPrice(r.Max, domain.PriceCeiling)
	if min > max {
		min, max = max, min
	}
	return domain.PriceRange{Min: min, Max: max}
}

func clampPrice(v, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return math.Min(math.Max(v, domain.PriceFloor), domain.PriceCeiling)
}
