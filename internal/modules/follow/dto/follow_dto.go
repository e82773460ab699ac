package dto

import (
	"time"

	"github.com/google/uuid"
)

// FollowResult is the outcome of a follow or unfollow request, worded for the
// flash message shown afterwards.
type FollowResult string

const (
	NowFollowing     FollowResult = "now following"
	AlreadyFollowing FollowResult = "already following"
	Unfollowed       FollowResult = "unfollowed"
	WasNotFollowing  FollowResult = "was not following"
)

type FollowUserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

type FollowListResponse struct {
	Username string               `json:"username"`
	Users    []FollowUserResponse `json:"users"`
	Total    int                  `json:"total"`
}
