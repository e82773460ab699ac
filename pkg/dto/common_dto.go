package dto

import "io"

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

// NewPaginationMeta computes page counts for a listing.
func NewPaginationMeta(page, limit int, total int64) PaginationMeta {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return PaginationMeta{
		CurrentPage: page,
		TotalPages:  pages,
		TotalItems:  total,
		Limit:       limit,
	}
}

func (m PaginationMeta) HasPrev() bool { return m.CurrentPage > 1 }
func (m PaginationMeta) HasNext() bool { return m.CurrentPage < m.TotalPages }
func (m PaginationMeta) Prev() int     { return m.CurrentPage - 1 }
func (m PaginationMeta) Next() int     { return m.CurrentPage + 1 }

// AvatarFile is an uploaded avatar waiting to be stored.
type AvatarFile struct {
	Reader   io.Reader
	FileName string
}
