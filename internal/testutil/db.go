// Package testutil provides sqlite-backed fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"anoa.com/codediary/internal/bootstrap"
	"anoa.com/codediary/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewTestDB opens a fresh, migrated in-memory database that is closed when the
// test ends. Each call gets its own database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_foreign_keys=on", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, bootstrap.Migrate(db))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateUser inserts a user with an empty profile.
func CreateUser(t *testing.T, db *gorm.DB, username string) *entity.User {
	t.Helper()

	u := &entity.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Profile:      &entity.Profile{},
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// Follow inserts a follow edge directly.
func Follow(t *testing.T, db *gorm.DB, follower, followee *entity.User) {
	t.Helper()
	require.NoError(t, db.Create(&entity.Follow{FollowerID: follower.ID, FolloweeID: followee.ID}).Error)
}

// CreateEntry inserts an entry authored by author. A zero createdAt keeps the
// server-assigned timestamp.
func CreateEntry(t *testing.T, db *gorm.DB, author *entity.User, title string, createdAt time.Time) *entity.DiaryEntry {
	t.Helper()

	e := &entity.DiaryEntry{
		UserID:       author.ID,
		Date:         time.Now().UTC().Truncate(24 * time.Hour),
		Title:        title,
		Content:      "content of " + title,
		Technologies: "Go, SQL",
	}
	require.NoError(t, db.Create(e).Error)

	if !createdAt.IsZero() {
		require.NoError(t, db.Model(e).UpdateColumn("created_at", createdAt.UTC()).Error)
		e.CreatedAt = createdAt.UTC()
	}
	return e
}

// CountReadEntries counts read-state rows for viewer.
func CountReadEntries(t *testing.T, db *gorm.DB, viewerID uuid.UUID) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.WithContext(context.Background()).
		Model(&entity.ReadEntry{}).
		Where("user_id = ?", viewerID).
		Count(&n).Error)
	return n
}
