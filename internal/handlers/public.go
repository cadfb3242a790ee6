package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/marble-idols/storefront/internal/catalog"
	"github.com/marble-idols/storefront/internal/domain"
	"github.com/marble-idols/storefront/internal/platform/httpx"
	"github.com/marble-idols/storefront/internal/services"
)

const (
	productsPagePath = "/products"
	categoryPagePath = "/category/"
	buyPath          = "/buy/"
)

// PublicHandlers exposes the unauthenticated catalog and page endpoints.
type PublicHandlers struct {
	catalog services.CatalogService
	content services.ContentService
	baseURL string
}

// PublicOption customises construction of PublicHandlers.
type PublicOption func(*PublicHandlers)

// WithPublicCatalogService injects the catalog service dependency.
func WithPublicCatalogService(svc services.CatalogService) PublicOption {
	return func(h *PublicHandlers) {
		h.catalog = svc
	}
}

// WithPublicContentService injects the content service dependency.
func WithPublicContentService(svc services.ContentService) PublicOption {
	return func(h *PublicHandlers) {
		h.content = svc
	}
}

// WithPublicBaseURL sets the storefront origin used for canonical and paging links.
func WithPublicBaseURL(base string) PublicOption {
	return func(h *PublicHandlers) {
		h.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

// NewPublicHandlers constructs handlers for public endpoints.
func NewPublicHandlers(opts ...PublicOption) *PublicHandlers {
	handler := &PublicHandlers{}
	for _, opt := range opts {
		if opt != nil {
			opt(handler)
		}
	}
	return handler
}

// Routes registers public endpoints against the provided router.
func (h *PublicHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/products", h.listProducts)
	r.Get("/products/{slug}", h.getProduct)
	r.Get("/featured", h.listFeatured)
	r.Get("/categories", h.listCategories)
	r.Get("/categories/{slug}", h.getCategory)
	r.Get("/materials", h.listMaterials)
	r.Get("/pages/{slug}", h.getPage)
}

func (h *PublicHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	state := catalog.FromValues(r.URL.Query())
	page, err := h.catalog.ListProducts(r.Context(), state)
	if err != nil {
		writeCatalogError(r.Context(), w, err, "product")
		return
	}
	writeJSON(w, http.StatusOK, h.buildListPayload(page, productsPagePath))
}

func (h *PublicHandlers) getCategory(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	state := catalog.FromValues(r.URL.Query())
	page, err := h.catalog.GetCategoryPage(r.Context(), slug, state)
	if err != nil {
		writeCatalogError(r.Context(), w, err, "category")
		return
	}

	payload := categoryPagePayload{
		Category:        buildCategoryPayload(page.Category),
		listPagePayload: h.buildListPayload(page.CatalogPage, categoryPagePath+url.PathEscape(page.Category.Slug)),
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *PublicHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	detail, err := h.catalog.GetProduct(r.Context(), slug)
	if err != nil {
		writeCatalogError(r.Context(), w, err, "product")
		return
	}

	payload := productDetailPayload{
		productPayload:  h.buildProductPayload(detail.Product),
		DiscountPercent: detail.DiscountPercent,
		DimensionsText:  detail.Dimensions,
		Related:         make([]productPayload, 0, len(detail.Related)),
	}
	for _, related := range detail.Related {
		payload.Related = append(payload.Related, h.buildProductPayload(related))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *PublicHandlers) listFeatured(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "limit must be a positive integer", http.StatusBadRequest))
			return
		}
		limit = parsed
	}

	products, err := h.catalog.ListFeatured(r.Context(), limit)
	if err != nil {
		writeCatalogError(r.Context(), w, err, "product")
		return
	}
	writeJSON(w, http.StatusOK, productListResponse{Products: h.buildProductPayloads(products)})
}

func (h *PublicHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeCatalogError(r.Context(), w, err, "category")
		return
	}
	items := make([]categoryPayload, 0, len(categories))
	for _, category := range categories {
		items = append(items, buildCategoryPayload(category))
	}
	writeJSON(w, http.StatusOK, categoryListResponse{Categories: items})
}

func (h *PublicHandlers) listMaterials(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	materials, err := h.catalog.ListMaterials(r.Context())
	if err != nil {
		writeCatalogError(r.Context(), w, err, "material")
		return
	}
	items := make([]facetPayload, 0, len(materials))
	for _, material := range materials {
		items = append(items, facetPayload{ID: material.ID, Title: material.Title, Slug: material.Slug})
	}
	writeJSON(w, http.StatusOK, materialListResponse{Materials: items})
}

func (h *PublicHandlers) getPage(w http.ResponseWriter, r *http.Request) {
	if h.content == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("content_unavailable", "content service is unavailable", http.StatusServiceUnavailable))
		return
	}

	page, err := h.content.GetPage(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeContentError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, contentPagePayload{
		Slug:        page.Slug,
		Title:       page.Title,
		Summary:     page.Summary,
		Description: page.Description,
		HTML:        page.HTML,
		UpdatedAt:   formatTimestamp(page.UpdatedAt),
	})
}

func (h *PublicHandlers) buildListPayload(page services.CatalogPage, path string) listPagePayload {
	state := page.State
	payload := listPagePayload{
		Status:       string(page.Status),
		Products:     h.buildProductPayloads(page.Items),
		Total:        page.Total,
		Page:         state.Page,
		TotalPages:   page.TotalPages,
		PageSize:     page.PageSize,
		PageReset:    page.PageReset,
		Query:        page.Query,
		CanonicalURL: h.pageURL(path, page.Query),
		Filters: filtersPayload{
			Search:     state.Search,
			Materials:  nonNil(state.Materials),
			Styles:     styleStrings(state.Styles),
			Categories: nonNil(state.Categories),
			MinPrice:   state.PriceRange.Min,
			MaxPrice:   state.PriceRange.Max,
			Sort:       string(state.Sort),
		},
		Facets: buildFacetsPayload(page.Facets),
	}
	if state.Page > 1 {
		payload.PrevURL = h.pageURL(path, catalog.ToQueryString(catalog.WithPage(state, state.Page-1)))
	}
	if state.Page < page.TotalPages {
		payload.NextURL = h.pageURL(path, catalog.ToQueryString(catalog.WithPage(state, state.Page+1)))
	}
	if page.Err != nil {
		payload.Error = "catalog is temporarily unavailable"
	}
	return payload
}

func (h *PublicHandlers) pageURL(path, query string) string {
	link := h.baseURL + path
	if query != "" {
		link += "?" + query
	}
	return link
}

func (h *PublicHandlers) buildProductPayloads(products []domain.Product) []productPayload {
	items := make([]productPayload, 0, len(products))
	for _, product := range products {
		items = append(items, h.buildProductPayload(product))
	}
	return items
}

func (h *PublicHandlers) buildProductPayload(p domain.Product) productPayload {
	payload := productPayload{
		ID:            p.ID,
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		Price:         p.Price,
		DisplayPrice:  displayPrice(p.Price),
		ActualPrice:   p.ActualPrice,
		PaintingStyle: string(p.PaintingStyle),
		Images:        nonNil(p.Images),
		MainImage:     p.MainImage(),
		Featured:      p.Featured,
		Dimensions:    buildDimensionsPayload(p.Dimensions),
		CreatedAt:     formatTimestamp(p.CreatedAt),
		BuyURL:        h.baseURL + buyPath + url.PathEscape(p.Slug),
	}
	if p.Category != nil {
		payload.Category = &facetPayload{ID: p.Category.ID, Title: p.Category.Title, Slug: p.Category.Slug}
	}
	if p.Material != nil {
		payload.Material = &facetPayload{ID: p.Material.ID, Title: p.Material.Title, Slug: p.Material.Slug}
	}
	return payload
}

func buildFacetsPayload(f catalog.Facets) facetsPayload {
	payload := facetsPayload{
		Categories: make([]facetPayload, 0, len(f.Categories)),
		Materials:  make([]facetPayload, 0, len(f.Materials)),
		Styles:     styleStrings(f.Styles),
	}
	for _, c := range f.Categories {
		payload.Categories = append(payload.Categories, facetPayload{ID: c.ID, Title: c.Title, Slug: c.Slug})
	}
	for _, m := range f.Materials {
		payload.Materials = append(payload.Materials, facetPayload{ID: m.ID, Title: m.Title, Slug: m.Slug})
	}
	return payload
}

func buildCategoryPayload(c domain.Category) categoryPayload {
	return categoryPayload{
		ID:          c.ID,
		Title:       c.Title,
		Slug:        c.Slug,
		Description: c.Description,
		ImageURL:    c.ImageURL,
	}
}

func buildDimensionsPayload(d domain.Dimensions) *dimensionsPayload {
	if d.IsZero() {
		return nil
	}
	axis := func(dim domain.Dimension) *measurePayload {
		if dim.Value == nil {
			return nil
		}
		return &measurePayload{Value: *dim.Value, Unit: dim.Symbol()}
	}
	return &dimensionsPayload{
		Height: axis(d.Height),
		Width:  axis(d.Width),
		Length: axis(d.Length),
	}
}

func styleStrings(styles []domain.PaintingStyle) []string {
	out := make([]string, 0, len(styles))
	for _, s := range styles {
		out = append(out, string(s))
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
