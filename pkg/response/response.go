package response

import (
	"net/http"

	"anoa.com/codediary/pkg/apperror"
	"anoa.com/codediary/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context keys set by the auth middleware.
const (
	KeyUserID   = "user_id"
	KeyUsername = "username"
)

// SessionCookie holds the signed session token for browser clients.
const SessionCookie = "session"

// GetUserID retrieves the authenticated user ID from the context.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr := c.GetString(KeyUserID)
	if userIDStr == "" {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// OptionalUserID returns nil for anonymous requests.
func OptionalUserID(c *gin.Context) *uuid.UUID {
	id, err := GetUserID(c)
	if err != nil {
		return nil
	}
	return &id
}

// ResponseError writes a standardized JSON error.
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		if code == http.StatusInternalServerError {
			c.JSON(code, gin.H{"error": apperror.ErrInternal.Error()})
			return
		}
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
