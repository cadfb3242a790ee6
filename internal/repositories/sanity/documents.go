package sanity

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/marble-idols/storefront/internal/domain"
)

type productDocument struct {
	ID            string             `json:"_id"`
	Name          string             `json:"name"`
	Slug          string             `json:"slug"`
	Description   string             `json:"description"`
	Price         flexString         `json:"price"`
	ActualPrice   *flexNumber        `json:"actual_price"`
	PaintingStyle string             `json:"paintingStyle"`
	Featured      bool               `json:"featured"`
	Images        []*string          `json:"images"`
	Category      *categoryDocument  `json:"category"`
	Material      *materialDocument  `json:"material"`
	CreatedAt     string             `json:"createdAt"`
	UpdatedAt     string             `json:"_updatedAt"`
	Dimensions    dimensionsDocument `json:"dimensions"`
}

type categoryDocument struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type materialDocument struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type unitDocument struct {
	ID     string `json:"_id"`
	Title  string `json:"title"`
	Symbol string `json:"symbol"`
	Slug   string `json:"slug"`
}

type dimensionDocument struct {
	Value *flexNumber   `json:"value"`
	Unit  *unitDocument `json:"unit"`
}

type dimensionsDocument struct {
	Length *dimensionDocument `json:"length"`
	Width  *dimensionDocument `json:"width"`
	Height *dimensionDocument `json:"height"`
}

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(data)
	return nil
}

// flexNumber accepts a JSON number or a numeric string. Anything else decodes as absent.
type flexNumber struct {
	value float64
	ok    bool
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		*n = flexNumber{}
		return nil
	}
	*n = flexNumber{value: v, ok: true}
	return nil
}

func (n *flexNumber) ptr() *float64 {
	if n == nil || !n.ok {
		return nil
	}
	v := n.value
	return &v
}

var timestampLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func (d productDocument) toDomain() domain.Product {
	product := domain.Product{
		ID:            d.ID,
		Name:          strings.TrimSpace(d.Name),
		Slug:          d.Slug,
		Description:   strings.TrimSpace(d.Description),
		Price:         strings.TrimSpace(string(d.Price)),
		ActualPrice:   d.ActualPrice.ptr(),
		PaintingStyle: domain.PaintingStyle(strings.TrimSpace(d.PaintingStyle)),
		Featured:      d.Featured,
		CreatedAt:     parseTimestamp(d.CreatedAt),
		UpdatedAt:     parseTimestamp(d.UpdatedAt),
		Dimensions: domain.Dimensions{
			Length: d.Dimensions.Length.toDomain(),
			Width:  d.Dimensions.Width.toDomain(),
			Height: d.Dimensions.Height.toDomain(),
		},
	}
	for _, img := range d.Images {
		if img != nil && *img != "" {
			product.Images = append(product.Images, *img)
		}
	}
	if d.Category != nil {
		product.Category = &domain.CategoryRef{
			ID:       d.Category.ID,
			Title:    d.Category.Title,
			Slug:     d.Category.Slug,
			ImageURL: d.Category.Image,
		}
	}
	if d.Material != nil {
		product.Material = &domain.MaterialRef{
			ID:    d.Material.ID,
			Title: d.Material.Title,
			Slug:  d.Material.Slug,
		}
	}
	return product
}

func (d *dimensionDocument) toDomain() domain.Dimension {
	if d == nil {
		return domain.Dimension{}
	}
	dim := domain.Dimension{Value: d.Value.ptr()}
	if d.Unit != nil {
		dim.Unit = &domain.UnitRef{Title: d.Unit.Title, Symbol: d.Unit.Symbol}
	}
	return dim
}

func (d categoryDocument) toDomain() domain.Category {
	return domain.Category{
		ID:          d.ID,
		Title:       d.Title,
		Slug:        d.Slug,
		Description: d.Description,
		ImageURL:    d.Image,
	}
}

func (d materialDocument) toDomain() domain.Material {
	return domain.Material{ID: d.ID, Title: d.Title, Slug: d.Slug}
}

func (d unitDocument) toDomain() domain.MeasurementUnit {
	return domain.MeasurementUnit{ID: d.ID, Title: d.Title, Symbol: d.Symbol, Slug: d.Slug}
}
