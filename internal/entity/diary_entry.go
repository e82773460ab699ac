package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is the wire and form format of an entry's logical date.
const DateLayout = "2006-01-02"

type DiaryEntry struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_entries_author_created,priority:1" json:"user_id"`
	User         User      `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	Date         time.Time `gorm:"type:date;not null;index" json:"date"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	Technologies string    `gorm:"size:200;not null" json:"technologies"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index:idx_entries_author_created,priority:2" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DiaryEntry) TableName() string { return "diary_entries" }

func (e *DiaryEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID, err = uuid.NewV7()
	}
	return
}

// TechList splits the comma separated technologies into trimmed, non-empty tags.
func (e *DiaryEntry) TechList() []string {
	parts := strings.Split(e.Technologies, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// DateString formats the logical date for display and forms.
func (e *DiaryEntry) DateString() string {
	return e.Date.Format(DateLayout)
}

func (e *DiaryEntry) String() string {
	return e.DateString() + ": " + e.Title
}
