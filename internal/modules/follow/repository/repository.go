package repository

import (
	"context"

	"anoa.com/codediary/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowRepository interface {
	Create(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error)
	Delete(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error)
	Exists(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error)
	FolloweeIDs(ctx context.Context, followerID uuid.UUID) ([]uuid.UUID, error)
	FollowerIDs(ctx context.Context, followeeID uuid.UUID) ([]uuid.UUID, error)
	ListFollowers(ctx context.Context, followeeID uuid.UUID) ([]*entity.User, error)
	ListFollowing(ctx context.Context, followerID uuid.UUID) ([]*entity.User, error)
	CountFollowers(ctx context.Context, followeeID uuid.UUID) (int64, error)
	CountFollowing(ctx context.Context, followerID uuid.UUID) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create inserts the edge and reports whether a new row was written. A
// duplicate pair is ignored by the unique index.
func (r *followRepository) Create(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	f := &entity.Follow{FollowerID: followerID, FolloweeID: followeeID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "follower_id"}, {Name: "followee_id"}},
			DoNothing: true,
		}).
		Create(f)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&entity.Follow{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&entity.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *followRepository) FolloweeIDs(ctx context.Context, followerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entity.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("followee_id", &ids).Error
	return ids, err
}

func (r *followRepository) FollowerIDs(ctx context.Context, followeeID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entity.Follow{}).
		Where("followee_id = ?", followeeID).
		Pluck("follower_id", &ids).Error
	return ids, err
}

func (r *followRepository) ListFollowers(ctx context.Context, followeeID uuid.UUID) ([]*entity.User, error) {
	var users []*entity.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followee_id = ?", followeeID).
		Order("follows.created_at desc").
		Find(&users).Error
	return users, err
}

func (r *followRepository) ListFollowing(ctx context.Context, followerID uuid.UUID) ([]*entity.User, error) {
	var users []*entity.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.followee_id = users.id").
		Where("follows.follower_id = ?", followerID).
		Order("follows.created_at desc").
		Find(&users).Error
	return users, err
}

func (r *followRepository) CountFollowers(ctx context.Context, followeeID uuid.UUID) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&entity.Follow{}).Where("followee_id = ?", followeeID).Count(&cnt).Error
	return cnt, err
}

func (r *followRepository) CountFollowing(ctx context.Context, followerID uuid.UUID) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&entity.Follow{}).Where("follower_id = ?", followerID).Count(&cnt).Error
	return cnt, err
}
