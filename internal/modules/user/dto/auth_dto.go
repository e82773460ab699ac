package dto

import (
	"anoa.com/codediary/internal/entity"
)

type SignupInput struct {
	Username        string `form:"username" json:"username" binding:"required,min=3,max=150,alphanumunicode"`
	Email           string `form:"email" json:"email" binding:"required,email,max=254"`
	Password        string `form:"password" json:"password" binding:"required,min=8,max=72"`
	PasswordConfirm string `form:"password_confirm" json:"password_confirm" binding:"required,eqfield=Password"`
}

type LoginInput struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int64           `json:"expires_in"`
	User        *entity.User    `json:"user"`
	Profile     *entity.Profile `json:"profile"`
}
