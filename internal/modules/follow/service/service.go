package service

import (
	"context"
	"fmt"

	"anoa.com/codediary/internal/entity"
	"anoa.com/codediary/internal/modules/follow/dto"
	"anoa.com/codediary/internal/modules/follow/repository"
	"github.com/google/uuid"
)

// FollowService owns the directed follow graph. Every call takes the acting
// user explicitly.
type FollowService interface {
	Follow(ctx context.Context, actorID, targetID uuid.UUID) (dto.FollowResult, error)
	Unfollow(ctx context.Context, actorID, targetID uuid.UUID) (dto.FollowResult, error)
	IsFollowing(ctx context.Context, actorID, targetID uuid.UUID) (bool, error)
	FolloweesOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	FollowersOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ListFollowers(ctx context.Context, userID uuid.UUID) ([]*entity.User, error)
	ListFollowing(ctx context.Context, userID uuid.UUID) ([]*entity.User, error)
	Counts(ctx context.Context, userID uuid.UUID) (followers, following int64, err error)
}

type followService struct {
	repo repository.FollowRepository
}

func NewFollowService(repo repository.FollowRepository) FollowService {
	return &followService{repo: repo}
}

// Follow is idempotent. Following yourself is reported as already following
// and never creates an edge.
func (s *followService) Follow(ctx context.Context, actorID, targetID uuid.UUID) (dto.FollowResult, error) {
	if actorID == targetID {
		return dto.AlreadyFollowing, nil
	}

	created, err := s.repo.Create(ctx, actorID, targetID)
	if err != nil {
		return "", fmt.Errorf("failed to follow user: %w", err)
	}
	if !created {
		return dto.AlreadyFollowing, nil
	}
	return dto.NowFollowing, nil
}

// Unfollow removes only the edge; read history is kept.
func (s *followService) Unfollow(ctx context.Context, actorID, targetID uuid.UUID) (dto.FollowResult, error) {
	removed, err := s.repo.Delete(ctx, actorID, targetID)
	if err != nil {
		return "", fmt.Errorf("failed to unfollow user: %w", err)
	}
	if !removed {
		return dto.WasNotFollowing, nil
	}
	return dto.Unfollowed, nil
}

func (s *followService) IsFollowing(ctx context.Context, actorID, targetID uuid.UUID) (bool, error) {
	if actorID == targetID {
		return false, nil
	}
	return s.repo.Exists(ctx, actorID, targetID)
}

func (s *followService) FolloweesOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.FolloweeIDs(ctx, userID)
}

func (s *followService) FollowersOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.FollowerIDs(ctx, userID)
}

func (s *followService) ListFollowers(ctx context.Context, userID uuid.UUID) ([]*entity.User, error) {
	return s.repo.ListFollowers(ctx, userID)
}

func (s *followService) ListFollowing(ctx context.Context, userID uuid.UUID) ([]*entity.User, error) {
	return s.repo.ListFollowing(ctx, userID)
}

func (s *followService) Counts(ctx context.Context, userID uuid.UUID) (int64, int64, error) {
	followers, err := s.repo.CountFollowers(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	following, err := s.repo.CountFollowing(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}
