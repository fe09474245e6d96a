package utils

import "github.com/gofiber/fiber/v2"

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxPage         = 1_000_000
)

// Pagination is a resolved page window over a listing.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// PageMeta is the pagination block returned next to listed data.
type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// ParsePagination builds a window from ?page= and ?limit=. Unparseable values fall back to defaults.
func ParsePagination(c *fiber.Ctx) Pagination {
	return NewPagination(c.QueryInt("page", 1), c.QueryInt("limit", defaultPageSize))
}

// NewPagination clamps page and limit into range and derives the offset.
func NewPagination(page, limit int) Pagination {
	switch {
	case limit <= 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	page = min(max(page, 1), maxPage)

	return Pagination{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// Meta describes the window relative to total matching rows.
func (p Pagination) Meta(total int64) PageMeta {
	size := int64(p.Limit)
	return PageMeta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: (total + size - 1) / size,
	}
}
