package profile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"anoa.com/codediary/internal/entity"
	profileDto "anoa.com/codediary/internal/modules/profile/dto"
	userRepo "anoa.com/codediary/internal/modules/user/repository"
	"anoa.com/codediary/pkg/apperror"
	commonDto "anoa.com/codediary/pkg/dto"
	"anoa.com/codediary/pkg/logger"
	"anoa.com/codediary/pkg/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const avatarFolder = "avatars"

var ErrUserNotFound = apperror.NotFound("user not found")

type FollowCounter interface {
	Counts(ctx context.Context, userID uuid.UUID) (followers, following int64, err error)
}

type EntryCounter interface {
	CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)
}

type ProfileService interface {
	UpdateProfile(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput, avatar *commonDto.AvatarFile) (*profileDto.CurrentProfileResponse, error)
	GetProfileByUsername(ctx context.Context, username string) (*profileDto.PublicProfileResponse, error)
	GetCurrentProfile(ctx context.Context, userID uuid.UUID) (*profileDto.CurrentProfileResponse, error)
}

type profileService struct {
	repo         userRepo.UserRepository
	imageStorage storage.ImageStorage
	follows      FollowCounter
	entries      EntryCounter
}

func NewProfileService(repo userRepo.UserRepository, imageStorage storage.ImageStorage, follows FollowCounter, entries EntryCounter) ProfileService {
	return &profileService{
		repo:         repo,
		imageStorage: imageStorage,
		follows:      follows,
		entries:      entries,
	}
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput, avatar *commonDto.AvatarFile) (*profileDto.CurrentProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapUserErr(err)
	}

	if avatar != nil && avatar.Reader != nil {
		if s.imageStorage == nil {
			return nil, apperror.New(http.StatusServiceUnavailable, "avatar uploads are not configured", apperror.ErrUnavailable)
		}
		url, err := s.imageStorage.UploadImage(ctx, avatar.Reader, avatarFolder, avatar.FileName)
		if err != nil {
			return nil, err
		}
		if user.AvatarURL != nil && *user.AvatarURL != "" {
			old := *user.AvatarURL
			if err := s.imageStorage.DeleteImage(ctx, old); err != nil {
				logger.Warn("failed to delete previous avatar", zap.String("url", old), zap.Error(err))
			}
		}
		user.AvatarURL = &url
	}

	profile := user.Profile
	if input.Bio != nil {
		if profile == nil {
			profile = &entity.Profile{UserID: user.ID}
		}
		profile.Bio = normalizeOptional(input.Bio)
	}

	if err := s.repo.Update(ctx, user, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return s.GetCurrentProfile(ctx, userID)
}

func (s *profileService) GetProfileByUsername(ctx context.Context, username string) (*profileDto.PublicProfileResponse, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, mapUserErr(err)
	}

	stats, err := s.stats(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	response := &profileDto.PublicProfileResponse{
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
		Stats:     stats,
	}
	if user.Profile != nil {
		response.Bio = user.Profile.Bio
	}

	return response, nil
}

func (s *profileService) GetCurrentProfile(ctx context.Context, userID uuid.UUID) (*profileDto.CurrentProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapUserErr(err)
	}

	user.PasswordHash = ""

	stats, err := s.stats(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &profileDto.CurrentProfileResponse{
		User:    user,
		Profile: user.Profile,
		Stats:   stats,
	}, nil
}

func (s *profileService) stats(ctx context.Context, userID uuid.UUID) (profileDto.ProfileStats, error) {
	var stats profileDto.ProfileStats
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		stats.Followers, stats.Following, err = s.follows.Counts(gCtx, userID)
		if err != nil {
			return fmt.Errorf("failed to count follows: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		stats.Entries, err = s.entries.CountByAuthor(gCtx, userID)
		if err != nil {
			return fmt.Errorf("failed to count entries: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return profileDto.ProfileStats{}, err
	}
	return stats, nil
}

func mapUserErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}

	result := trimmed
	return &result
}
