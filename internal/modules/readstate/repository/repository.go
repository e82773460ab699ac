package repository

import (
	"context"

	"anoa.com/codediary/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReadStateRepository interface {
	// Create records the read and reports whether a new row was written.
	Create(ctx context.Context, viewerID, entryID uuid.UUID) (bool, error)
	// ReadEntryIDs returns the subset of entryIDs the viewer has read.
	ReadEntryIDs(ctx context.Context, viewerID uuid.UUID, entryIDs []uuid.UUID) ([]uuid.UUID, error)
}

type readStateRepository struct {
	db *gorm.DB
}

func NewReadStateRepository(db *gorm.DB) ReadStateRepository {
	return &readStateRepository{db: db}
}

func (r *readStateRepository) Create(ctx context.Context, viewerID, entryID uuid.UUID) (bool, error) {
	row := &entity.ReadEntry{UserID: viewerID, EntryID: entryID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "entry_id"}},
			DoNothing: true,
		}).
		Create(row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *readStateRepository) ReadEntryIDs(ctx context.Context, viewerID uuid.UUID, entryIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(entryIDs) == 0 {
		return nil, nil
	}

	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entity.ReadEntry{}).
		Where("user_id = ? AND entry_id IN ?", viewerID, entryIDs).
		Pluck("entry_id", &ids).Error
	return ids, err
}
