package handlers

import "github.com/marble-idols/storefront/internal/format"

type productListResponse struct {
	Products []productPayload `json:"products"`
}

type categoryListResponse struct {
	Categories []categoryPayload `json:"categories"`
}

type materialListResponse struct {
	Materials []facetPayload `json:"materials"`
}

// listPagePayload carries the minimal query string and links so clients can update the
// address bar without reloading.
type listPagePayload struct {
	Status       string           `json:"status"`
	Products     []productPayload `json:"products"`
	Total        int              `json:"total"`
	Page         int              `json:"page"`
	TotalPages   int              `json:"total_pages"`
	PageSize     int              `json:"page_size"`
	PageReset    bool             `json:"page_reset,omitempty"`
	Query        string           `json:"query"`
	CanonicalURL string           `json:"canonical_url"`
	PrevURL      string           `json:"prev_url,omitempty"`
	NextURL      string           `json:"next_url,omitempty"`
	Filters      filtersPayload   `json:"filters"`
	Facets       facetsPayload    `json:"facets"`
	Error        string           `json:"error,omitempty"`
}

type categoryPagePayload struct {
	Category categoryPayload `json:"category"`
	listPagePayload
}

type filtersPayload struct {
	Search     string   `json:"search"`
	Materials  []string `json:"materials"`
	Styles     []string `json:"styles"`
	Categories []string `json:"categories"`
	MinPrice   float64  `json:"min_price"`
	MaxPrice   float64  `json:"max_price"`
	Sort       string   `json:"sort"`
}

type facetsPayload struct {
	Categories []facetPayload `json:"categories"`
	Materials  []facetPayload `json:"materials"`
	Styles     []string       `json:"styles"`
}

type facetPayload struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type categoryPayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

type productPayload struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Slug          string             `json:"slug"`
	Description   string             `json:"description,omitempty"`
	Price         string             `json:"price"`
	DisplayPrice  string             `json:"display_price"`
	ActualPrice   *float64           `json:"actual_price,omitempty"`
	PaintingStyle string             `json:"painting_style,omitempty"`
	Images        []string           `json:"images"`
	MainImage     string             `json:"main_image,omitempty"`
	Category      *facetPayload      `json:"category,omitempty"`
	Material      *facetPayload      `json:"material,omitempty"`
	Dimensions    *dimensionsPayload `json:"dimensions,omitempty"`
	Featured      bool               `json:"featured"`
	CreatedAt     string             `json:"created_at,omitempty"`
	BuyURL        string             `json:"buy_url"`
}

type productDetailPayload struct {
	productPayload
	DiscountPercent *int             `json:"discount_percent,omitempty"`
	DimensionsText  string           `json:"dimensions_text,omitempty"`
	Related         []productPayload `json:"related"`
}

type dimensionsPayload struct {
	Height *measurePayload `json:"height,omitempty"`
	Width  *measurePayload `json:"width,omitempty"`
	Length *measurePayload `json:"length,omitempty"`
}

type measurePayload struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

type contentPagePayload struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Summary     string `json:"summary,omitempty"`
	Description string `json:"description,omitempty"`
	HTML        string `json:"html"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

func displayPrice(raw string) string {
	return format.Price(raw)
}
