package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/marble-idols/storefront/internal/catalog"
	"github.com/marble-idols/storefront/internal/domain"
	"github.com/marble-idols/storefront/internal/format"
	"github.com/marble-idols/storefront/internal/platform/observability"
	"github.com/marble-idols/storefront/internal/platform/requestctx"
	"github.com/marble-idols/storefront/internal/repositories"
)

const (
	defaultFeaturedLimit = 8
	maxFeaturedLimit     = 24
	relatedProductsLimit = 4
)

// Catalog page kinds used for metrics and logs.
const (
	catalogPageProducts = "products"
	catalogPageCategory = "category"
)

// CatalogServiceDeps bundles constructor inputs for the catalog service.
type CatalogServiceDeps struct {
	Catalog       repositories.CatalogRepository
	Metrics       *observability.Metrics
	FeaturedLimit int
}

type catalogService struct {
	repo          repositories.CatalogRepository
	metrics       *observability.Metrics
	featuredLimit int
}

var _ CatalogService = (*catalogService)(nil)

var (
	// ErrCatalogRepositoryMissing indicates the repository dependency is absent.
	ErrCatalogRepositoryMissing = errors.New("catalog service: repository is not configured")
	// ErrCatalogInvalidInput indicates the caller supplied an unusable slug or limit.
	ErrCatalogInvalidInput = errors.New("catalog service: invalid input")
)

// NewCatalogService constructs the catalog service with the supplied dependencies.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Catalog == nil {
		return nil, ErrCatalogRepositoryMissing
	}
	limit := deps.FeaturedLimit
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}
	return &catalogService{
		repo:          deps.Catalog,
		metrics:       deps.Metrics,
		featuredLimit: min(limit, maxFeaturedLimit),
	}, nil
}

func (s *catalogService) ListProducts(ctx context.Context, state FilterState) (CatalogPage, error) {
	ctrl, err := catalog.NewController(s.repo.ListProducts, catalog.WithFacets(s.storeFacets))
	if err != nil {
		return CatalogPage{}, err
	}
	if err := ctrl.Load(ctx); err != nil {
		requestctx.Logger(ctx).Warn("catalog load failed; serving empty view",
			zap.String("page", catalogPageProducts),
			zap.Error(err),
		)
	}

	page := s.view(ctrl, state)
	page.Facets = ctrl.Facets()
	s.metrics.CatalogView(ctx, catalogPageProducts, string(page.State.Sort), page.Err != nil)
	return page, nil
}

func (s *catalogService) GetCategoryPage(ctx context.Context, slug string, state FilterState) (CategoryPage, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return CategoryPage{}, fmt.Errorf("%w: category slug is required", ErrCatalogInvalidInput)
	}

	var (
		category    domain.Category
		categoryErr error
	)
	ctrl, err := catalog.NewController(
		func(ctx context.Context) ([]domain.Product, error) {
			return s.repo.ListProductsByCategory(ctx, slug)
		},
		catalog.WithFacets(func(ctx context.Context) (catalog.Facets, error) {
			category, categoryErr = s.repo.GetCategoryBySlug(ctx, slug)
			if categoryErr != nil {
				return catalog.Facets{}, categoryErr
			}
			return catalog.Facets{Categories: []domain.Category{category}}, nil
		}),
	)
	if err != nil {
		return CategoryPage{}, err
	}

	if err := ctrl.Load(ctx); err != nil {
		if isRepoNotFound(categoryErr) {
			return CategoryPage{}, categoryErr
		}
		requestctx.Logger(ctx).Warn("catalog load failed; serving empty view",
			zap.String("page", catalogPageCategory),
			zap.String("category", slug),
			zap.Error(err),
		)
	}

	page := s.view(ctrl, state)
	facets := catalog.FacetsFromProducts(ctrl.Records())
	if categoryErr == nil && category.Slug != "" {
		facets.Categories = []domain.Category{category}
	} else {
		category = domain.Category{Slug: slug}
	}
	page.Facets = facets
	s.metrics.CatalogView(ctx, catalogPageCategory, string(page.State.Sort), page.Err != nil)

	return CategoryPage{Category: category, CatalogPage: page}, nil
}

func (s *catalogService) GetProduct(ctx context.Context, slug string) (ProductDetail, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ProductDetail{}, fmt.Errorf("%w: product slug is required", ErrCatalogInvalidInput)
	}

	product, err := s.repo.GetProductBySlug(ctx, slug)
	if err != nil {
		return ProductDetail{}, err
	}

	detail := ProductDetail{
		Product:      product,
		DisplayPrice: format.Price(product.Price),
		Dimensions:   format.Dimensions(product.Dimensions),
		Related:      []domain.Product{},
	}
	if price, ok := catalog.ParsePrice(product.Price); ok && product.ActualPrice != nil {
		if pct, ok := format.DiscountPercent(price, *product.ActualPrice); ok {
			detail.DiscountPercent = &pct
		}
	}

	if categorySlug := product.CategorySlug(); categorySlug != "" {
		siblings, err := s.repo.ListProductsByCategory(ctx, categorySlug)
		if err != nil {
			requestctx.Logger(ctx).Warn("related products unavailable",
				zap.String("product", slug),
				zap.Error(err),
			)
		}
		for _, candidate := range siblings {
			if candidate.ID == product.ID || candidate.Slug == product.Slug {
				continue
			}
			detail.Related = append(detail.Related, candidate)
			if len(detail.Related) == relatedProductsLimit {
				break
			}
		}
	}

	return detail, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	return categories, nil
}

func (s *catalogService) ListMaterials(ctx context.Context) ([]Material, error) {
	materials, err := s.repo.ListMaterials(ctx)
	if err != nil {
		return nil, err
	}
	if materials == nil {
		materials = []domain.Material{}
	}
	return materials, nil
}

func (s *catalogService) ListFeatured(ctx context.Context, limit int) ([]Product, error) {
	switch {
	case limit < 0:
		return nil, fmt.Errorf("%w: limit must be positive", ErrCatalogInvalidInput)
	case limit == 0:
		limit = s.featuredLimit
	case limit > maxFeaturedLimit:
		limit = maxFeaturedLimit
	}
	products, err := s.repo.ListFeaturedProducts(ctx, limit)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// storeFacets loads the category and material options shown on the all-products page.
func (s *catalogService) storeFacets(ctx context.Context) (catalog.Facets, error) {
	facets := catalog.Facets{Styles: append([]domain.PaintingStyle(nil), domain.PaintingStyles...)}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		facets.Categories, err = s.repo.ListCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		facets.Materials, err = s.repo.ListMaterials(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return catalog.Facets{}, err
	}
	return facets, nil
}

// view derives the page for state, falling back to the first page when the requested page
// is past the end of a non-empty result.
func (s *catalogService) view(ctrl *catalog.Controller, state FilterState) CatalogPage {
	view := ctrl.View(state)
	if len(view.Items) == 0 && view.Total > 0 && view.State.Page > 1 {
		return CatalogPage{View: ctrl.View(catalog.WithPage(view.State, 1)), PageReset: true}
	}
	return CatalogPage{View: view}
}

func isRepoNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}
