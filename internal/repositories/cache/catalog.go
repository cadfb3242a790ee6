// Package cache provides a read-through TTL cache in front of the catalog repository.
package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/marble-idols/storefront/internal/domain"
	"github.com/marble-idols/storefront/internal/repositories"
)

type entry struct {
	value   any
	expires time.Time
}

// Option customises a CatalogCache.
type Option func(*CatalogCache)

// WithMaxEntries bounds how many keys the cache holds. Stores past the bound are skipped
// until expired entries are swept.
func WithMaxEntries(n int) Option {
	return func(c *CatalogCache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) Option {
	return func(c *CatalogCache) {
		if now != nil {
			c.now = now
		}
	}
}

// CatalogCache memoises successful reads for a fixed TTL. Concurrent misses for the same key
// share one upstream call. Errors are never cached.
type CatalogCache struct {
	next       repositories.CatalogRepository
	ttl        time.Duration
	now        func() time.Time
	maxEntries int

	mu        sync.RWMutex
	entries   map[string]entry
	nextSweep time.Time
	group     singleflight.Group
}

const defaultMaxEntries = 2048

var _ repositories.CatalogRepository = (*CatalogCache)(nil)

// NewCatalogCache wraps next. A non-positive ttl disables memoisation but still coalesces
// concurrent identical reads.
func NewCatalogCache(next repositories.CatalogRepository, ttl time.Duration, opts ...Option) (*CatalogCache, error) {
	if next == nil {
		return nil, errors.New("catalog cache: repository is required")
	}
	c := &CatalogCache{
		next:       next,
		ttl:        ttl,
		now:        time.Now,
		maxEntries: defaultMaxEntries,
		entries:    make(map[string]entry),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Purge drops every cached entry.
func (c *CatalogCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

func (c *CatalogCache) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return load(ctx, c, "products", slices.Clone[[]domain.Product], c.next.ListProducts)
}

func (c *CatalogCache) ListFeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	return load(ctx, c, fmt.Sprintf("featured:%d", limit), slices.Clone[[]domain.Product], func(ctx context.Context) ([]domain.Product, error) {
		return c.next.ListFeaturedProducts(ctx, limit)
	})
}

// ListProductsByCategory does not remember empty listings, so unknown slugs never occupy
// cache entries.
func (c *CatalogCache) ListProductsByCategory(ctx context.Context, slug string) ([]domain.Product, error) {
	slug = strings.TrimSpace(slug)
	return loadIf(ctx, c, "category-products:"+slug, slices.Clone[[]domain.Product], func(ctx context.Context) ([]domain.Product, error) {
		return c.next.ListProductsByCategory(ctx, slug)
	}, func(products []domain.Product) bool { return len(products) > 0 })
}

func (c *CatalogCache) GetProductBySlug(ctx context.Context, slug string) (domain.Product, error) {
	slug = strings.TrimSpace(slug)
	return load(ctx, c, "product:"+slug, identity[domain.Product], func(ctx context.Context) (domain.Product, error) {
		return c.next.GetProductBySlug(ctx, slug)
	})
}

func (c *CatalogCache) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return load(ctx, c, "categories", slices.Clone[[]domain.Category], c.next.ListCategories)
}

func (c *CatalogCache) GetCategoryBySlug(ctx context.Context, slug string) (domain.Category, error) {
	slug = strings.TrimSpace(slug)
	return load(ctx, c, "category:"+slug, identity[domain.Category], func(ctx context.Context) (domain.Category, error) {
		return c.next.GetCategoryBySlug(ctx, slug)
	})
}

func (c *CatalogCache) ListMaterials(ctx context.Context) ([]domain.Material, error) {
	return load(ctx, c, "materials", slices.Clone[[]domain.Material], c.next.ListMaterials)
}

func (c *CatalogCache) GetMaterial(ctx context.Context, id string) (domain.Material, error) {
	return load(ctx, c, "material:"+id, identity[domain.Material], func(ctx context.Context) (domain.Material, error) {
		return c.next.GetMaterial(ctx, id)
	})
}

func (c *CatalogCache) GetMeasurementUnit(ctx context.Context, id string) (domain.MeasurementUnit, error) {
	return load(ctx, c, "unit:"+id, identity[domain.MeasurementUnit], func(ctx context.Context) (domain.MeasurementUnit, error) {
		return c.next.GetMeasurementUnit(ctx, id)
	})
}

func identity[T any](v T) T { return v }

func load[T any](ctx context.Context, c *CatalogCache, key string, clone func(T) T, fetch func(context.Context) (T, error)) (T, error) {
	return loadIf(ctx, c, key, clone, fetch, nil)
}

// loadIf is load with a keep predicate; results it rejects are returned but not stored.
func loadIf[T any](ctx context.Context, c *CatalogCache, key string, clone func(T) T, fetch func(context.Context) (T, error), keep func(T) bool) (T, error) {
	if v, ok := c.lookup(key); ok {
		return clone(v.(T)), nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// Detached from the caller: the result is shared by every waiter.
		v, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if keep == nil || keep(v) {
			c.store(key, v)
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return clone(res.Val.(T)), nil
	}
}

func (c *CatalogCache) lookup(key string) (any, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expires) {
		return nil, false
	}
	return e.value, true
}

func (c *CatalogCache) store(key string, value any) {
	if c.ttl <= 0 {
		return
	}
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists {
		if !now.Before(c.nextSweep) || len(c.entries) >= c.maxEntries {
			c.evictLocked(now)
		}
		if len(c.entries) >= c.maxEntries {
			return
		}
	}
	c.entries[key] = entry{value: value, expires: now.Add(c.ttl)}
}

func (c *CatalogCache) evictLocked(now time.Time) {
	for key, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, key)
		}
	}
	c.nextSweep = now.Add(c.ttl)
}
