package catalog

import "github.com/marble-idols/storefront/internal/domain"

// Paginate returns the records in the window [(page-1)*pageSize, page*pageSize) clipped to the
// list length. A page past the end yields an empty slice; callers decide whether to clamp.
// A non-positive pageSize falls back to the default page size.
func Paginate(list []domain.Product, page, pageSize int) []domain.Product {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	if page < 1 || page > TotalPages(len(list), pageSize) {
		return []domain.Product{}
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(list))
	return list[start:end:end]
}

// TotalPages reports how many pages n records span.
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	if n <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}
