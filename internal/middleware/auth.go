package middleware

import (
	"errors"
	"net/http"
	"strings"

	userRepo "anoa.com/codediary/internal/modules/user/repository"
	userService "anoa.com/codediary/internal/modules/user/service"
	"anoa.com/codediary/internal/web"
	"anoa.com/codediary/pkg/logger"
	"anoa.com/codediary/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TokenParser verifies session tokens.
type TokenParser interface {
	ParseToken(tokenString string) (*userService.Session, error)
}

type AuthMiddleware struct {
	tokens   TokenParser
	userRepo userRepo.UserRepository
}

func NewAuthMiddleware(tokens TokenParser, userRepo userRepo.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		userRepo: userRepo,
	}
}

// Authenticate identifies the caller when a valid token is present and leaves
// the request anonymous otherwise. It never aborts.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		session, err := m.tokens.ParseToken(tokenString)
		if err != nil {
			c.Next()
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), session.UserID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("failed to load session user",
					zap.String("user_id", session.UserID.String()),
					zap.Error(err),
				)
			}
			c.Next()
			return
		}

		c.Set(response.KeyUserID, user.ID.String())
		c.Set(response.KeyUsername, user.Username)
		c.Next()
	}
}

// RequireAuth sends anonymous browser requests to the login page.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(response.KeyUserID) == "" {
			web.RedirectToLogin(c)
			return
		}
		c.Next()
	}
}

// RequireAPIAuth rejects anonymous JSON requests with 401.
func (m *AuthMiddleware) RequireAPIAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(response.KeyUserID) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDStr := c.GetString(response.KeyUserID)
		if userIDStr == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			c.Abort()
			return
		}

		if !user.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}

	if cookie, err := c.Cookie(response.SessionCookie); err == nil && cookie != "" {
		return cookie
	}

	// Fallback to query parameter "token" (useful for WebSockets)
	return c.Query("token")
}
