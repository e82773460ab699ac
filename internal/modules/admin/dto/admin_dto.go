package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateUserInput struct {
	Username string  `json:"username" form:"username" binding:"required,min=3,max=150,alphanumunicode"`
	Email    string  `json:"email" form:"email" binding:"required,email,max=254"`
	Password string  `json:"password" form:"password" binding:"required,min=8,max=72"`
	IsAdmin  bool    `json:"is_admin" form:"is_admin"`
	Bio      *string `json:"bio" form:"bio" binding:"omitempty,max=500"`
}

type AdminUserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
