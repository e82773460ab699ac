package dto

import (
	"time"

	"anoa.com/codediary/internal/entity"
)

// UpdateProfileInput represents the input for updating the signed-in user's profile
type UpdateProfileInput struct {
	Bio *string `json:"bio" form:"bio" binding:"omitempty,max=500"`
}

type ProfileStats struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
	Entries   int64 `json:"entries"`
}

// CurrentProfileResponse is returned for the signed-in user
type CurrentProfileResponse struct {
	User    *entity.User    `json:"user"`
	Profile *entity.Profile `json:"profile"`
	Stats   ProfileStats    `json:"stats"`
}

// PublicProfileResponse is returned when viewing another user's public profile
type PublicProfileResponse struct {
	Username  string       `json:"username"`
	AvatarURL *string      `json:"avatar_url,omitempty"`
	Bio       *string      `json:"bio,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	Stats     ProfileStats `json:"stats"`
}
