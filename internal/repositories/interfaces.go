package repositories

import (
	"context"

	"github.com/marble-idols/storefront/internal/domain"
)

// RepositoryError wraps low-level record store failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// CatalogRepository reads denormalised catalog documents. Lookups of a single document
// return a RepositoryError with IsNotFound when it does not exist.
type CatalogRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListFeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error)
	ListProductsByCategory(ctx context.Context, categorySlug string) ([]domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (domain.Product, error)

	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (domain.Category, error)

	ListMaterials(ctx context.Context) ([]domain.Material, error)
	// GetMaterial resolves a material by document id.
	GetMaterial(ctx context.Context, id string) (domain.Material, error)
	// GetMeasurementUnit resolves a unit by document id.
	GetMeasurementUnit(ctx context.Context, id string) (domain.MeasurementUnit, error)
}

// HealthRepository probes external dependencies for readiness.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}
