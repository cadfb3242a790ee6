package services

import (
	"context"
	"time"

	"github.com/marble-idols/storefront/internal/catalog"
	"github.com/marble-idols/storefront/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Product            = domain.Product
	Category           = domain.Category
	Material           = domain.Material
	FilterState        = domain.FilterState
	SystemHealthReport = domain.SystemHealthReport
)

// CatalogService serves the public catalog pages. List pages never fail on record store
// errors; they degrade to an empty ready view with Err set.
type CatalogService interface {
	ListProducts(ctx context.Context, state FilterState) (CatalogPage, error)
	GetProduct(ctx context.Context, slug string) (ProductDetail, error)
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategoryPage(ctx context.Context, slug string, state FilterState) (CategoryPage, error)
	ListMaterials(ctx context.Context) ([]Material, error)
	ListFeatured(ctx context.Context, limit int) ([]Product, error)
}

// DescriptionService drafts product descriptions through the configured completion provider.
type DescriptionService interface {
	Generate(ctx context.Context, cmd GenerateDescriptionCommand) (string, error)
}

// CheckoutService builds messaging hand-off links for a product inquiry.
type CheckoutService interface {
	StartWhatsApp(ctx context.Context, cmd WhatsAppCheckoutCommand) (WhatsAppCheckout, error)
}

// ContentService serves static informational pages.
type ContentService interface {
	GetPage(ctx context.Context, slug string) (ContentPage, error)
}

// SystemService reports readiness of external dependencies.
type SystemService interface {
	HealthReport(ctx context.Context) (SystemHealthReport, error)
}

// CatalogPage is a derived product list plus the facets shown beside it.
type CatalogPage struct {
	catalog.View
	Facets catalog.Facets
	// PageReset is set when the requested page was past the end and the first page was served.
	PageReset bool
}

// CategoryPage is a category header with its product list.
type CategoryPage struct {
	Category Category
	CatalogPage
}

// ProductDetail is a product with its display-ready derived fields.
type ProductDetail struct {
	Product         Product
	DisplayPrice    string
	DiscountPercent *int
	Dimensions      string
	Related         []Product
}

// GenerateDescriptionCommand carries the product fields used to prompt for a description.
// MaterialRef and unit refs are record store document ids.
type GenerateDescriptionCommand struct {
	Name          string
	MaterialRef   string
	PaintingStyle string
	Dimensions    DescriptionDimensions
}

// DescriptionDimensions lists the three measured axes of a draft product.
type DescriptionDimensions struct {
	Length DimensionInput
	Width  DimensionInput
	Height DimensionInput
}

// DimensionInput is an unresolved measurement. A nil Value renders as "null" in the prompt.
type DimensionInput struct {
	Value   *float64
	UnitRef string
}

// WhatsAppCheckoutCommand selects a product and quantity for an inquiry.
type WhatsAppCheckoutCommand struct {
	Slug     string
	Quantity int
}

// WhatsAppCheckout is the deep link handed to the shopper.
type WhatsAppCheckout struct {
	Reference string
	Message   string
	URL       string
	Quantity  int
	Product   Product
	IssuedAt  time.Time
}

// ContentPage is a rendered static page.
type ContentPage struct {
	Slug        string
	Title       string
	Summary     string
	HTML        string
	Description string
	UpdatedAt   time.Time
}
