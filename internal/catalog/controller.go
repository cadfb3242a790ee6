package catalog

import (
	"context"
	"errors"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/marble-idols/storefront/internal/domain"
)

// Status reports where a controller is in its lifecycle.
type Status string

const (
	// StatusLoading is the state before the record sets have been fetched.
	StatusLoading Status = "loading"
	// StatusReady is terminal: records are held (possibly empty) and views can be derived.
	StatusReady Status = "ready"
)

// ErrNoProductFetcher is returned when a controller is built without a product source.
var ErrNoProductFetcher = errors.New("catalog: product fetcher is required")

// ProductFetcher loads the raw product record set for a page.
type ProductFetcher func(ctx context.Context) ([]domain.Product, error)

// FacetFetcher loads the filter options shown next to the product list.
type FacetFetcher func(ctx context.Context) (Facets, error)

// Facets lists the selectable filter values for a page.
type Facets struct {
	Categories []domain.Category
	Materials  []domain.Material
	Styles     []domain.PaintingStyle
}

// FacetsFromProducts derives the materials and painting styles present in products, in first
// seen order. Categories are left empty.
func FacetsFromProducts(products []domain.Product) Facets {
	var facets Facets
	seenMaterials := make(map[string]struct{})
	for _, p := range products {
		if p.Material != nil && p.Material.Slug != "" {
			if _, ok := seenMaterials[p.Material.Slug]; !ok {
				seenMaterials[p.Material.Slug] = struct{}{}
				facets.Materials = append(facets.Materials, domain.Material{
					ID:    p.Material.ID,
					Title: p.Material.Title,
					Slug:  p.Material.Slug,
				})
			}
		}
		if style, ok := parseStyle(string(p.PaintingStyle)); ok && !slices.Contains(facets.Styles, style) {
			facets.Styles = append(facets.Styles, style)
		}
	}
	return facets
}

// View is the derived, paginated product list for one FilterState.
type View struct {
	Status     Status
	State      domain.FilterState
	Items      []domain.Product
	Total      int
	TotalPages int
	PageSize   int
	Query      string
	Err        error
}

// Controller holds the record sets of one page instance. It moves from loading to ready
// exactly once; views are then derived from the held records without refetching.
type Controller struct {
	fetchProducts ProductFetcher
	fetchFacets   FacetFetcher
	pageSize      int

	mu       sync.RWMutex
	status   Status
	records  []domain.Product
	facets   Facets
	loadErr  error
	loadOnce sync.Once
}

// ControllerOption customises a Controller.
type ControllerOption func(*Controller)

// WithFacets fetches facets alongside the products.
func WithFacets(fetch FacetFetcher) ControllerOption {
	return func(c *Controller) {
		c.fetchFacets = fetch
	}
}

// WithPageSize overrides the default page size.
func WithPageSize(size int) ControllerOption {
	return func(c *Controller) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// NewController builds a controller in the loading state.
func NewController(fetch ProductFetcher, opts ...ControllerOption) (*Controller, error) {
	if fetch == nil {
		return nil, ErrNoProductFetcher
	}
	c := &Controller{
		fetchProducts: fetch,
		pageSize:      domain.DefaultPageSize,
		status:        StatusLoading,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Load fetches products and facets concurrently and waits for both. If either fetch fails
// the controller holds empty record sets, remembers the error and still becomes ready.
// The returned error is the fetch error, if any. Calls after the first are no-ops.
func (c *Controller) Load(ctx context.Context) error {
	c.loadOnce.Do(func() {
		var (
			products []domain.Product
			facets   Facets
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			products, err = c.fetchProducts(gctx)
			return err
		})
		if c.fetchFacets != nil {
			g.Go(func() error {
				var err error
				facets, err = c.fetchFacets(gctx)
				return err
			})
		}
		err := g.Wait()

		c.mu.Lock()
		defer c.mu.Unlock()
		c.status = StatusReady
		if err != nil {
			c.records = nil
			c.facets = Facets{}
			c.loadErr = err
			return
		}
		c.records = products
		c.facets = facets
	})
	return c.Err()
}

// Status reports the lifecycle state.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Err returns the error from Load, if any.
func (c *Controller) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadErr
}

// Records returns a copy of the held product records.
func (c *Controller) Records() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.records)
}

// Facets returns the held facets.
func (c *Controller) Facets() Facets {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.facets
}

// View derives the page for state. The page number is not clamped here; a page past the end
// produces an empty item list so the caller can decide to fall back to the first page.
func (c *Controller) View(state domain.FilterState) View {
	state = Normalize(state)

	c.mu.RLock()
	status, records, loadErr := c.status, c.records, c.loadErr
	c.mu.RUnlock()

	filtered := ApplyFilters(records, state)
	return View{
		Status:     status,
		State:      state,
		Items:      Paginate(filtered, state.Page, c.pageSize),
		Total:      len(filtered),
		TotalPages: TotalPages(len(filtered), c.pageSize),
		PageSize:   c.pageSize,
		Query:      ToQueryString(state),
		Err:        loadErr,
	}
}
