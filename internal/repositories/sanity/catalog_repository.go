// Package sanity implements the catalog repository on top of the Sanity query API.
package sanity

import (
	"context"
	"errors"
	"strings"

	"github.com/marble-idols/storefront/internal/domain"
	platform "github.com/marble-idols/storefront/internal/platform/sanity"
	"github.com/marble-idols/storefront/internal/repositories"
)

// Querier runs a GROQ query and decodes the result into dest.
type Querier interface {
	Query(ctx context.Context, query string, params map[string]any, dest any) error
}

// CatalogRepository reads catalog documents through a Querier.
type CatalogRepository struct {
	client Querier
}

var _ repositories.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository constructs the repository.
func NewCatalogRepository(client Querier) (*CatalogRepository, error) {
	if client == nil {
		return nil, errors.New("sanity catalog repository: client is required")
	}
	return &CatalogRepository{client: client}, nil
}

// ListProducts returns every published product, newest first.
func (r *CatalogRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return r.products(ctx, "catalog.ListProducts", queryProducts, nil)
}

// ListFeaturedProducts returns up to limit featured products.
func (r *CatalogRepository) ListFeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 8
	}
	return r.products(ctx, "catalog.ListFeaturedProducts", queryFeaturedProducts, map[string]any{"limit": limit})
}

// ListProductsByCategory returns the products referencing the category with slug.
func (r *CatalogRepository) ListProductsByCategory(ctx context.Context, slug string) ([]domain.Product, error) {
	return r.products(ctx, "catalog.ListProductsByCategory", queryProductsByCategory, map[string]any{"slug": strings.TrimSpace(slug)})
}

// GetProductBySlug returns a single product.
func (r *CatalogRepository) GetProductBySlug(ctx context.Context, slug string) (domain.Product, error) {
	var doc productDocument
	if err := r.client.Query(ctx, queryProductBySlug, map[string]any{"slug": strings.TrimSpace(slug)}, &doc); err != nil {
		return domain.Product{}, platform.WrapError("catalog.GetProductBySlug", err)
	}
	return doc.toDomain(), nil
}

// ListCategories returns every category ordered by title.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var docs []categoryDocument
	if err := r.list(ctx, queryCategories, nil, &docs); err != nil {
		return nil, platform.WrapError("catalog.ListCategories", err)
	}
	out := make([]domain.Category, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toDomain())
	}
	return out, nil
}

// GetCategoryBySlug returns a single category.
func (r *CatalogRepository) GetCategoryBySlug(ctx context.Context, slug string) (domain.Category, error) {
	var doc categoryDocument
	if err := r.client.Query(ctx, queryCategoryBySlug, map[string]any{"slug": strings.TrimSpace(slug)}, &doc); err != nil {
		return domain.Category{}, platform.WrapError("catalog.GetCategoryBySlug", err)
	}
	return doc.toDomain(), nil
}

// ListMaterials returns every material ordered by title.
func (r *CatalogRepository) ListMaterials(ctx context.Context) ([]domain.Material, error) {
	var docs []materialDocument
	if err := r.list(ctx, queryMaterials, nil, &docs); err != nil {
		return nil, platform.WrapError("catalog.ListMaterials", err)
	}
	out := make([]domain.Material, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toDomain())
	}
	return out, nil
}

// GetMaterial resolves a material document id.
func (r *CatalogRepository) GetMaterial(ctx context.Context, id string) (domain.Material, error) {
	var doc materialDocument
	if err := r.client.Query(ctx, queryMaterialByID, map[string]any{"id": strings.TrimSpace(id)}, &doc); err != nil {
		return domain.Material{}, platform.WrapError("catalog.GetMaterial", err)
	}
	return doc.toDomain(), nil
}

// GetMeasurementUnit resolves a measurement document id.
func (r *CatalogRepository) GetMeasurementUnit(ctx context.Context, id string) (domain.MeasurementUnit, error) {
	var doc unitDocument
	if err := r.client.Query(ctx, queryMeasurementByID, map[string]any{"id": strings.TrimSpace(id)}, &doc); err != nil {
		return domain.MeasurementUnit{}, platform.WrapError("catalog.GetMeasurementUnit", err)
	}
	return doc.toDomain(), nil
}

// Ping issues a trivial query; it backs the readiness probe.
func (r *CatalogRepository) Ping(ctx context.Context) error {
	var count int
	return r.client.Query(ctx, queryPing, nil, &count)
}

func (r *CatalogRepository) products(ctx context.Context, op, query string, params map[string]any) ([]domain.Product, error) {
	var docs []productDocument
	if err := r.list(ctx, query, params, &docs); err != nil {
		return nil, platform.WrapError(op, err)
	}
	out := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toDomain())
	}
	return out, nil
}

// list treats a null result as an empty list.
func (r *CatalogRepository) list(ctx context.Context, query string, params map[string]any, dest any) error {
	err := r.client.Query(ctx, query, params, dest)
	if platform.IsNotFound(err) {
		var sErr *platform.Error
		if errors.As(err, &sErr) && sErr.StatusCode() == 0 {
			return nil
		}
	}
	return err
}
