package repository

import (
	"context"
	"time"

	"anoa.com/codediary/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EntryRepository interface {
	Create(ctx context.Context, entry *entity.DiaryEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.DiaryEntry, error)
	Update(ctx context.Context, entry *entity.DiaryEntry) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, offset, limit int) ([]*entity.DiaryEntry, int64, error)
	ListRecentByAuthors(ctx context.Context, authorIDs []uuid.UUID, since time.Time) ([]*entity.DiaryEntry, error)
	CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)
}

type entryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) EntryRepository {
	return &entryRepository{db: db}
}

func (r *entryRepository) Create(ctx context.Context, entry *entity.DiaryEntry) error {
	return r.db.WithContext(ctx).Omit("User").Create(entry).Error
}

func (r *entryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.DiaryEntry, error) {
	var entry entity.DiaryEntry
	if err := r.db.WithContext(ctx).
		Preload("User").
		First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// Update writes the editable fields only; author and created_at never change.
func (r *entryRepository) Update(ctx context.Context, entry *entity.DiaryEntry) error {
	return r.db.WithContext(ctx).
		Model(entry).
		Select("date", "title", "content", "technologies", "updated_at").
		Updates(entry).Error
}

func (r *entryRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&entity.DiaryEntry{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *entryRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, offset, limit int) ([]*entity.DiaryEntry, int64, error) {
	var (
		entries []*entity.DiaryEntry
		total   int64
	)

	query := r.db.WithContext(ctx).Model(&entity.DiaryEntry{}).Where("user_id = ?", authorID)
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Session(&gorm.Session{}).
		Preload("User").
		Order("date desc").
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// ListRecentByAuthors returns entries by any of authorIDs created strictly
// after since.
func (r *entryRepository) ListRecentByAuthors(ctx context.Context, authorIDs []uuid.UUID, since time.Time) ([]*entity.DiaryEntry, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}

	var entries []*entity.DiaryEntry
	err := r.db.WithContext(ctx).
		Where("user_id IN ? AND created_at > ?", authorIDs, since).
		Order("created_at desc").
		Find(&entries).Error
	return entries, err
}

func (r *entryRepository) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&entity.DiaryEntry{}).Where("user_id = ?", authorID).Count(&cnt).Error
	return cnt, err
}
