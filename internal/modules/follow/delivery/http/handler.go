package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"anoa.com/codediary/internal/entity"
	"anoa.com/codediary/internal/modules/follow/dto"
	follow "anoa.com/codediary/internal/modules/follow/service"
	userRepo "anoa.com/codediary/internal/modules/user/repository"
	"anoa.com/codediary/internal/web"
	"anoa.com/codediary/pkg/apperror"
	"anoa.com/codediary/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FollowHandler struct {
	service  follow.FollowService
	users    userRepo.UserRepository
	renderer *web.Renderer
}

func NewFollowHandler(service follow.FollowService, users userRepo.UserRepository, renderer *web.Renderer) *FollowHandler {
	return &FollowHandler{service: service, users: users, renderer: renderer}
}

// Follow handles POST /users/:username/follow.
func (h *FollowHandler) Follow(c *gin.Context) {
	actorID, err := response.GetUserID(c)
	if err != nil {
		h.renderer.Error(c, err)
		return
	}

	target, err := h.findUser(c)
	if err != nil {
		h.renderer.Error(c, err)
		return
	}

	res, err := h.service.Follow(c.Request.Context(), actorID, target.ID)
	if err != nil {
		h.renderer.Error(c, err)
		return
	}

	if res == dto.NowFollowing {
		web.AddFlash(c, web.LevelSuccess, fmt.Sprintf("You are now following %s.", target.Username))
	} else {
		web.AddFlash(c, web.LevelInfo, fmt.Sprintf("You are already following %s.", target.Username))
	}
	c.Redirect(http.StatusFound, authorEntriesURL(target.Username))
}

// Unfollow handles POST /users/:username/unfollow.
func (h *FollowHandler) Unfollow(c *gin.Context) {
	actorID, err := response.GetUserID(c)
	if err != nil {
		h.renderer.Error(c, err)
		return
	}

	target, err := h.findUser(c)
	if err != nil {
		h.renderer.Error(c, err)
		return
	}

	res, err := h.service.Unfollow(c.Request.Context(), actorID, target.ID)
	if err != nil {
		h.renderer.Error(c, err)
		return
	}

	if res == dto.Unfollowed {
		web.AddFlash(c, web.LevelSuccess, fmt.Sprintf("You have unfollowed %s.", target.Username))
	} else {
		web.AddFlash(c, web.LevelInfo, fmt.Sprintf("You were not following %s.", target.Username))
	}
	c.Redirect(http.StatusFound, authorEntriesURL(target.Username))
}

// Followers handles GET /api/users/:username/followers.
func (h *FollowHandler) Followers(c *gin.Context) {
	target, err := h.findUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	users, err := h.service.ListFollowers(c.Request.Context(), target.ID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, toListResponse(target.Username, users))
}

// Following handles GET /api/users/:username/following.
func (h *FollowHandler) Following(c *gin.Context) {
	target, err := h.findUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	users, err := h.service.ListFollowing(c.Request.Context(), target.ID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, toListResponse(target.Username, users))
}

func (h *FollowHandler) findUser(c *gin.Context) (*entity.User, error) {
	user, err := h.users.FindByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

func authorEntriesURL(username string) string {
	return "/users/" + url.PathEscape(username) + "/entries"
}

func toListResponse(username string, users []*entity.User) dto.FollowListResponse {
	out := dto.FollowListResponse{
		Username: username,
		Users:    make([]dto.FollowUserResponse, 0, len(users)),
		Total:    len(users),
	}
	for _, u := range users {
		out.Users = append(out.Users, dto.FollowUserResponse{
			ID:        u.ID,
			Username:  u.Username,
			AvatarURL: u.AvatarURL,
			CreatedAt: u.CreatedAt,
		})
	}
	return out
}
