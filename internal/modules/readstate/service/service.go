package service

import (
	"context"
	"fmt"

	"anoa.com/codediary/internal/entity"
	"anoa.com/codediary/internal/modules/readstate/repository"
	"github.com/google/uuid"
)

// FollowChecker reports whether one user follows another.
type FollowChecker interface {
	IsFollowing(ctx context.Context, actorID, targetID uuid.UUID) (bool, error)
}

type ReadStateService interface {
	MarkReadIfApplicable(ctx context.Context, viewerID *uuid.UUID, entry *entity.DiaryEntry) (bool, error)
}

type readStateService struct {
	repo    repository.ReadStateRepository
	follows FollowChecker
}

func NewReadStateService(repo repository.ReadStateRepository, follows FollowChecker) ReadStateService {
	return &readStateService{repo: repo, follows: follows}
}

// MarkReadIfApplicable records that viewer opened entry. It only does so for a
// signed-in viewer who follows the author and is not the author; every other
// case is a silent no-op. The return value reports whether a row was created.
func (s *readStateService) MarkReadIfApplicable(ctx context.Context, viewerID *uuid.UUID, entry *entity.DiaryEntry) (bool, error) {
	if viewerID == nil || entry == nil || *viewerID == entry.UserID {
		return false, nil
	}

	following, err := s.follows.IsFollowing(ctx, *viewerID, entry.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	if !following {
		return false, nil
	}

	created, err := s.repo.Create(ctx, *viewerID, entry.ID)
	if err != nil {
		return false, fmt.Errorf("failed to mark entry read: %w", err)
	}
	return created, nil
}
