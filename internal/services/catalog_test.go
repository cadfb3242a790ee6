package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/marble-idols/storefront/internal/catalog"
	"github.com/marble-idols/storefront/internal/domain"
)

type repoError struct {
	notFound    bool
	unavailable bool
}

func (e *repoError) Error() string       { return fmt.Sprintf("repo error notFound=%v", e.notFound) }
func (e *repoError) IsNotFound() bool    { return e.notFound }
func (e *repoError) IsConflict() bool    { return false }
func (e *repoError) IsUnavailable() bool { return e.unavailable }

type stubCatalogRepository struct {
	mu sync.Mutex

	products      []domain.Product
	productsErr   error
	byCategory    map[string][]domain.Product
	categoryErr   error
	categories    []domain.Category
	categoriesErr error
	materials     []domain.Material
	materialsErr  error
	units         map[string]domain.MeasurementUnit
	featuredLimit int
	lookups       []string
}

func (s *stubCatalogRepository) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups = append(s.lookups, call)
}

func (s *stubCatalogRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	s.record("products")
	return s.products, s.productsErr
}

func (s *stubCatalogRepository) ListFeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	s.mu.Lock()
	s.featuredLimit = limit
	s.mu.Unlock()
	var out []domain.Product
	for _, p := range s.products {
		if p.Featured && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, s.productsErr
}

func (s *stubCatalogRepository) ListProductsByCategory(ctx context.Context, slug string) ([]domain.Product, error) {
	s.record("category-products:" + slug)
	return s.byCategory[slug], s.productsErr
}

func (s *stubCatalogRepository) GetProductBySlug(ctx context.Context, slug string) (domain.Product, error) {
	for _, p := range s.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return domain.Product{}, &repoError{notFound: true}
}

func (s *stubCatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories, s.categoriesErr
}

func (s *stubCatalogRepository) GetCategoryBySlug(ctx context.Context, slug string) (domain.Category, error) {
	if s.categoryErr != nil {
		return domain.Category{}, s.categoryErr
	}
	for _, c := range s.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return domain.Category{}, &repoError{notFound: true}
}

func (s *stubCatalogRepository) ListMaterials(ctx context.Context) ([]domain.Material, error) {
	return s.materials, s.materialsErr
}

func (s *stubCatalogRepository) GetMaterial(ctx context.Context, id string) (domain.Material, error) {
	s.record("material:" + id)
	for _, m := range s.materials {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.Material{}, &repoError{notFound: true}
}

func (s *stubCatalogRepository) GetMeasurementUnit(ctx context.Context, id string) (domain.MeasurementUnit, error) {
	s.record("unit:" + id)
	unit, ok := s.units[id]
	if !ok {
		return domain.MeasurementUnit{}, &repoError{unavailable: true}
	}
	return unit, nil
}

func ptr[T any](v T) *T { return &v }

func sampleProducts(n int) []domain.Product {
	out := make([]domain.Product, 0, n)
	for i := 0; i < n; i++ {
		material := &domain.MaterialRef{ID: "mat-marble", Title: "Marble", Slug: "marble"}
		if i%2 == 1 {
			material = &domain.MaterialRef{ID: "mat-brass", Title: "Brass", Slug: "brass"}
		}
		out = append(out, domain.Product{
			ID:       fmt.Sprintf("p%02d", i),
			Name:     fmt.Sprintf("Idol %02d", i),
			Slug:     fmt.Sprintf("idol-%02d", i),
			Price:    fmt.Sprintf("%d", 1000+i*100),
			Material: material,
			Category: &domain.CategoryRef{ID: "cat-ganesha", Title: "Ganesha", Slug: "ganesha"},
			Featured: i%5 == 0,
		})
	}
	return out
}

func TestNewCatalogServiceRequiresRepository(t *testing.T) {
	if _, err := NewCatalogService(CatalogServiceDeps{}); !errors.Is(err, ErrCatalogRepositoryMissing) {
		t.Fatalf("expected ErrCatalogRepositoryMissing, got %v", err)
	}
}

func TestCatalogServiceListProducts(t *testing.T) {
	repo := &stubCatalogRepository{
		products:   sampleProducts(15),
		categories: []domain.Category{{ID: "cat-ganesha", Title: "Ganesha", Slug: "ganesha"}},
		materials:  []domain.Material{{ID: "mat-brass", Title: "Brass", Slug: "brass"}},
	}
	svc, err := NewCatalogService(CatalogServiceDeps{Catalog: repo})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}

	state := catalog.WithSort(domain.DefaultFilterState(), domain.SortPriceHigh)
	state = catalog.WithPage(state, 2)
	page, err := svc.ListProducts(context.Background(), state)
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if page.Status != catalog.StatusReady || page.Err != nil {
		t.Fatalf("expected ready view without error, got %s %v", page.Status, page.Err)
	}
	if page.Total != 15 || page.TotalPages != 2 || len(page.Items) != 3 {
		t.Fatalf("unexpected totals: total=%d pages=%d items=%d", page.Total, page.TotalPages, len(page.Items))
	}
	if page.Items[0].ID != "p02" {
		t.Fatalf("expected third cheapest first on page 2, got %s", page.Items[0].ID)
	}
	if page.Query != "page=2&sort=price-high" {
		t.Fatalf("unexpected query %q", page.Query)
	}
	if len(page.Facets.Categories) != 1 || len(page.Facets.Materials) != 1 || len(page.Facets.Styles) != 2 {
		t.Fatalf("unexpected facets %+v", page.Facets)
	}
}

func TestCatalogServiceListProductsResetsPagePastEnd(t *testing.T) {
	repo := &stubCatalogRepository{products: sampleProducts(5)}
	svc, err := NewCatalogService(CatalogServiceDeps{Catalog: repo})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}

	page, err := svc.ListProducts(context.Background(), catalog.WithPage(domain.DefaultFilterState(), 7))
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if !page.PageReset || page.State.Page != 1 || len(page.Items) != 5 {
		t.Fatalf("expected reset to page 1, got reset=%v page=%d items=%d", page.PageReset, page.State.Page, len(page.Items))
	}
}

func TestCatalogServiceListProductsDegradesOnFailure(t *testing.T) {
	boom := &repoError{unavailable: true}
	repo := &stubCatalogRepository{products: sampleProducts(4), materialsErr: boom}
	svc, err := NewCatalogService(CatalogServiceDeps{Catalog: repo})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}

	page, err := svc.ListProducts(context.Background(), domain.DefaultFilterState())
	if err != nil {
		t.Fatalf("expected list pages not to fail, got %v", err)
	}
	if page.Status != catalog.StatusReady || page.Total != 0 || page.Items == nil {
		t.Fatalf("expected empty ready view, got %+v", page.View)
	}
	if !errors.Is(page.Err, boom) {
		t.Fatalf("expected load error on view, got %v", page.Err)
	}
}

func TestCatalogServiceCategoryPage(t *testing.T) {
	products := sampleProducts(6)
	repo := &stubCatalogRepository{
		byCategory: map[string][]domain.Product{"ganesha": products},
		categories: []domain.Category{{ID: "cat-ganesha", Title: "Ganesha", Slug: "ganesha"}},
	}
	svc, err := NewCatalogService(CatalogServiceDeps{Catalog: repo})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}

	state := catalog.ToggleMaterial(domain.DefaultFilterState(), "brass")
	page, err := svc.GetCategoryPage(context.Background(), "ganesha", state)
	if err != nil {
		t.Fatalf("GetCategoryPage: %v", err)
	}
	if page.Category.Title != "Ganesha" {
		t.Fatalf("unexpected category %+v", page.Category)
	}
	if page.Total != 3 {
		t.Fatalf("expected 3 brass products, got %d", page.Total)
	}
	if len(page.Facets.Materials) != 2 {
		t.Fatalf("expected materials derived from every category product, got %+v", page.Facets.Materials)
	}
}

func TestCatalogServiceCategoryPageNotFound(t *testing.T) {
	repo := &stubCatalogRepository{byCategory: map[string][]domain.Product{}}
	svc, err := NewCatalogService(CatalogServiceDeps{Catalog: repo})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}

	_, err = svc.GetCategoryPage(context.Background(), "missing", domain.DefaultFilterState())
	var notFound *repoError
	if !errors.As(err, &notFound) || !notFound.IsNotFound() {
		t.Fatalf("expected not found error, got %v", err)
	}

	if _, err := svc.GetCategoryPage(context.Background(), " ", domain.DefaultFilterState()); !errors.Is(err, ErrCatalogInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestCatalogServiceCategoryPageDegradesWhenCategoryUnavailable(t *testing.T) {
	repo := &stubCatalogRepository{
		byCategory:  map[string][]domain.Product{"ganesha": sampleProducts(2)},
		categoryErr: &repoError{unavailable: true},
	}
	svc, err := NewCatalogService(CatalogServiceDeps{Catalog: repo})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}

	page, err := svc.GetCategoryPage(context.Background(), "ganesha", domain.DefaultFilterState())
	if err != nil {
		t.Fatalf("expected degraded page, got %v", err)
	}
	if page.Err == nil || page.Total != 0 || page.Category.Slug != "ganesha" {
		t.Fatalf("unexpected degraded page %+v", page)
	}
}

func TestCatalogServiceGetProduct(t *testing.T) {
	products := sampleProducts(7)
	products[0].ActualPrice = ptr(1250.0)
	products[0].Dimensions = domain.Dimensions{
		Height: domain.Dimension{Value: ptr(63.0), Unit: &domain.UnitRef{Symbol: "in"}},
	}
	repo := &stubCatalogRepository{
		products:   products,
		byCategory: map[string][]domain.Product{"ganesha": products},
	}
	svc, err := NewCatalogService(CatalogServiceDeps{Catalog: repo})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}

	detail, err := svc.GetProduct(context.Background(), "idol-00")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if detail.DiscountPercent == nil || *detail.DiscountPercent != 20 {
		t.Fatalf("expected 20%% discount, got %v", detail.DiscountPercent)
	}
	if detail.DisplayPrice != "₹1,000" {
		t.Fatalf("unexpected display price %q", detail.DisplayPrice)
	}
	if detail.Dimensions != `Height: 5'3"` {
		t.Fatalf("unexpected dimensions %q", detail.Dimensions)
	}
	if len(detail.Related) != relatedProductsLimit {
		t.Fatalf("expected %d related products, got %d", relatedProductsLimit, len(detail.Related))
	}
	for _, related := range detail.Related {
		if related.ID == detail.Product.ID {
			t.Fatalf("related products include the product itself")
		}
	}

	if _, err := svc.GetProduct(context.Background(), "missing"); err == nil {
		t.Fatalf("expected not found error")
	}
}

func TestCatalogServiceListFeaturedLimits(t *testing.T) {
	repo := &stubCatalogRepository{products: sampleProducts(30)}
	svc, err := NewCatalogService(CatalogServiceDeps{Catalog: repo, FeaturedLimit: 3})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}

	featured, err := svc.ListFeatured(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListFeatured: %v", err)
	}
	if repo.featuredLimit != 3 || len(featured) != 3 {
		t.Fatalf("expected default limit 3, got limit=%d len=%d", repo.featuredLimit, len(featured))
	}

	if _, err := svc.ListFeatured(context.Background(), 500); err != nil {
		t.Fatalf("ListFeatured: %v", err)
	}
	if repo.featuredLimit != maxFeaturedLimit {
		t.Fatalf("expected limit capped at %d, got %d", maxFeaturedLimit, repo.featuredLimit)
	}

	if _, err := svc.ListFeatured(context.Background(), -1); !errors.Is(err, ErrCatalogInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestCatalogServiceListsNeverReturnNil(t *testing.T) {
	svc, err := NewCatalogService(CatalogServiceDeps{Catalog: &stubCatalogRepository{}})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}
	categories, err := svc.ListCategories(context.Background())
	if err != nil || categories == nil {
		t.Fatalf("expected empty categories, got %#v %v", categories, err)
	}
	materials, err := svc.ListMaterials(context.Background())
	if err != nil || materials == nil {
		t.Fatalf("expected empty materials, got %#v %v", materials, err)
	}
}
