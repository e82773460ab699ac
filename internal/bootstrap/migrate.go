package bootstrap

import (
	"anoa.com/codediary/internal/entity"
	"gorm.io/gorm"
)

// Migrate creates or updates every table the application owns. Order matters:
// referenced tables first.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Profile{},
		&entity.Follow{},
		&entity.DiaryEntry{},
		&entity.ReadEntry{},
	)
}
