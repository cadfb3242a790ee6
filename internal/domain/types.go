package domain

import (
	"strings"
	"time"
)

// PaintingStyle enumerates the finishes offered for an idol.
type PaintingStyle string

const (
	// PaintingStyleFull covers the whole idol in paint.
	PaintingStyleFull PaintingStyle = "Full Paint"
	// PaintingStyleHalf leaves the marble partially exposed.
	PaintingStyleHalf PaintingStyle = "Half Paint"
)

// PaintingStyles lists the styles in the order shown to shoppers.
var PaintingStyles = []PaintingStyle{PaintingStyleFull, PaintingStyleHalf}

// SortMode indicates how a catalog view is ordered.
type SortMode string

const (
	// SortFeatured places featured products first and keeps the remaining order.
	SortFeatured SortMode = "featured"
	// SortPriceLow orders by ascending price.
	SortPriceLow SortMode = "price-low"
	// SortPriceHigh orders by descending price.
	SortPriceHigh SortMode = "price-high"
	// SortNewest orders by creation time, newest first.
	SortNewest SortMode = "newest"
)

// ParseSortMode normalises raw input, returning false for unknown modes.
func ParseSortMode(raw string) (SortMode, bool) {
	switch SortMode(strings.ToLower(strings.TrimSpace(raw))) {
	case SortFeatured:
		return SortFeatured, true
	case SortPriceLow:
		return SortPriceLow, true
	case SortPriceHigh:
		return SortPriceHigh, true
	case SortNewest:
		return SortNewest, true
	}
	return "", false
}

// CategoryRef is the denormalised category reference carried on a product.
type CategoryRef struct {
	ID       string
	Title    string
	Slug     string
	ImageURL string
}

// MaterialRef is the denormalised material reference carried on a product.
type MaterialRef struct {
	ID    string
	Title string
	Slug  string
}

// UnitRef is the denormalised measurement unit carried on a dimension.
type UnitRef struct {
	Title  string
	Symbol string
}

// Dimension is a single measured axis. Value and Unit are both optional.
type Dimension struct {
	Value *float64
	Unit  *UnitRef
}

// Symbol returns the unit symbol, falling back to the unit title.
func (d Dimension) Symbol() string {
	if d.Unit == nil {
		return ""
	}
	if symbol := strings.TrimSpace(d.Unit.Symbol); symbol != "" {
		return symbol
	}
	return strings.TrimSpace(d.Unit.Title)
}

// Dimensions groups the three named axes of an idol.
type Dimensions struct {
	Length Dimension
	Width  Dimension
	Height Dimension
}

// IsZero reports whether no axis carries a value.
func (d Dimensions) IsZero() bool {
	return d.Length.Value == nil && d.Width.Value == nil && d.Height.Value == nil
}

// Product is the read model for a catalog item with references already resolved.
type Product struct {
	ID            string
	Name          string
	Slug          string
	Description   string
	Price         string
	ActualPrice   *float64
	PaintingStyle PaintingStyle
	Images        []string
	Category      *CategoryRef
	Material      *MaterialRef
	Dimensions    Dimensions
	Featured      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MainImage returns the first image URL or an empty string.
func (p Product) MainImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// MaterialSlug returns the referenced material slug, if any.
func (p Product) MaterialSlug() string {
	if p.Material == nil {
		return ""
	}
	return p.Material.Slug
}

// CategorySlug returns the referenced category slug, if any.
func (p Product) CategorySlug() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Slug
}

// Category describes a browsable grouping of products.
type Category struct {
	ID          string
	Title       string
	Slug        string
	Description string
	ImageURL    string
}

// Material describes what an idol is carved from.
type Material struct {
	ID    string
	Title string
	Slug  string
}

// MeasurementUnit is a unit document such as centimetres or inches.
type MeasurementUnit struct {
	ID     string
	Title  string
	Symbol string
	Slug   string
}

// PriceRange is an inclusive price window.
type PriceRange struct {
	Min float64
	Max float64
}

const (
	// PriceFloor is the lowest selectable price.
	PriceFloor = 0
	// PriceCeiling is the highest selectable price.
	PriceCeiling = 50000
	// DefaultPageSize is the fixed number of products per catalog page.
	DefaultPageSize = 12
)

// FullPriceRange returns the default, unrestricted window.
func FullPriceRange() PriceRange {
	return PriceRange{Min: PriceFloor, Max: PriceCeiling}
}

// FilterState is the complete set of shopper-selected catalog view parameters.
// Set-valued fields are kept sorted and de-duplicated.
type FilterState struct {
	Search     string
	Materials  []string
	Styles     []PaintingStyle
	Categories []string
	PriceRange PriceRange
	Sort       SortMode
	Page       int
}

// DefaultFilterState returns the state of a freshly opened catalog page.
func DefaultFilterState() FilterState {
	return FilterState{
		PriceRange: FullPriceRange(),
		Sort:       SortFeatured,
		Page:       1,
	}
}

// Health statuses reported by readiness probes.
const (
	HealthStatusOK       = "ok"
	HealthStatusDegraded = "degraded"
	HealthStatusError    = "error"
)

// SystemHealthCheck is the outcome of one dependency probe.
type SystemHealthCheck struct {
	Status    string
	Detail    string
	Latency   time.Duration
	CheckedAt time.Time
}

// SystemHealthReport aggregates dependency probes.
type SystemHealthReport struct {
	Status      string
	Version     string
	Environment string
	Uptime      time.Duration
	Checks      map[string]SystemHealthCheck
	GeneratedAt time.Time
}
