package dto

import (
	"strings"

	"anoa.com/codediary/internal/entity"
	commonDto "anoa.com/codediary/pkg/dto"
)

const PageSize = 10

// EntryInput is the create/update form. Date is optional and defaults to today;
// the entry service parses it and reports ErrInvalidDate.
type EntryInput struct {
	Date         string `form:"date" json:"date"`
	Title        string `form:"title" json:"title" binding:"required,max=200"`
	Content      string `form:"content" json:"content" binding:"required"`
	Technologies string `form:"technologies" json:"technologies" binding:"required,max=200"`
}

// Normalize trims surrounding whitespace from every field.
func (in *EntryInput) Normalize() {
	in.Date = strings.TrimSpace(in.Date)
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Technologies = strings.TrimSpace(in.Technologies)
}

// FromEntry pre-fills the form for editing.
func FromEntry(e *entity.DiaryEntry) EntryInput {
	return EntryInput{
		Date:         e.DateString(),
		Title:        e.Title,
		Content:      e.Content,
		Technologies: e.Technologies,
	}
}

type EntryListResult struct {
	Entries []*entity.DiaryEntry
	Meta    commonDto.PaginationMeta
}
