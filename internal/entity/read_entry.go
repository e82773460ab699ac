package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReadEntry records that a user opened a followed author's entry.
type ReadEntry struct {
	ID      uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_read_entries_user_entry,priority:1" json:"user_id"`
	User    User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	EntryID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_read_entries_user_entry,priority:2;index" json:"entry_id"`
	Entry   DiaryEntry `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE" json:"-"`
	ReadAt  time.Time  `gorm:"autoCreateTime" json:"read_at"`
}

func (ReadEntry) TableName() string { return "read_entries" }

func (r *ReadEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
