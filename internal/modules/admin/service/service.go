package service

import (
	"context"
	"fmt"
	"strings"

	"anoa.com/codediary/internal/entity"
	"anoa.com/codediary/internal/modules/admin/dto"
	userDto "anoa.com/codediary/internal/modules/user/dto"
	userRepo "anoa.com/codediary/internal/modules/user/repository"
	"anoa.com/codediary/pkg/apperror"
	"anoa.com/codediary/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrDeleteSelf = apperror.Invalid("admins cannot delete their own account")

// Registrar creates a user together with its profile.
type Registrar interface {
	Register(ctx context.Context, input userDto.SignupInput, isAdmin bool) (*entity.User, error)
}

type AdminService interface {
	CreateUser(ctx context.Context, input dto.CreateUserInput) (*dto.AdminUserResponse, error)
	GetAllUsers(ctx context.Context) ([]dto.AdminUserResponse, error)
	DeleteUser(ctx context.Context, actorID, id uuid.UUID) error
}

type adminService struct {
	users     userRepo.UserRepository
	registrar Registrar
}

func NewAdminService(users userRepo.UserRepository, registrar Registrar) AdminService {
	return &adminService{users: users, registrar: registrar}
}

func (s *adminService) CreateUser(ctx context.Context, input dto.CreateUserInput) (*dto.AdminUserResponse, error) {
	user, err := s.registrar.Register(ctx, userDto.SignupInput{
		Username:        input.Username,
		Email:           input.Email,
		Password:        input.Password,
		PasswordConfirm: input.Password,
	}, input.IsAdmin)
	if err != nil {
		return nil, err
	}

	if input.Bio != nil && strings.TrimSpace(*input.Bio) != "" {
		stored, err := s.users.FindByID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload user: %w", err)
		}
		bio := strings.TrimSpace(*input.Bio)
		stored.Profile.Bio = &bio
		if err := s.users.Update(ctx, stored, stored.Profile); err != nil {
			return nil, fmt.Errorf("failed to save bio: %w", err)
		}
		user = stored
	}

	logger.Info("admin created user",
		zap.String("user_id", user.ID.String()),
		zap.Bool("is_admin", user.IsAdmin),
	)

	res := toResponse(user)
	return &res, nil
}

func (s *adminService) GetAllUsers(ctx context.Context) ([]dto.AdminUserResponse, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	out := make([]dto.AdminUserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toResponse(u))
	}
	return out, nil
}

// DeleteUser removes the account; entries, follow edges and read states go
// with it.
func (s *adminService) DeleteUser(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return ErrDeleteSelf
	}

	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if !deleted {
		return apperror.NotFound("user not found")
	}

	logger.Info("admin deleted user",
		zap.String("actor_id", actorID.String()),
		zap.String("user_id", id.String()),
	)
	return nil
}

func toResponse(u *entity.User) dto.AdminUserResponse {
	res := dto.AdminUserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
	if u.Profile != nil {
		res.Bio = u.Profile.Bio
	}
	return res
}

