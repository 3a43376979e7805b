package models

import "math"

// MaxPage is the highest page number a listing will serve
const MaxPage = 1_000_000

// Pagination is the metadata attached to every paginated list response
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewPagination computes Pages as ceil(total/limit)
func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 && total > 0 {
		pages = int(total / int64(limit))
		if total%int64(limit) != 0 {
			pages++
		}
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// Skip returns the number of documents to skip for the page, saturating at math.MaxInt64
func (p Pagination) Skip() int64 {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	before, limit := int64(p.Page-1), int64(p.Limit)
	if before > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return before * limit
}
