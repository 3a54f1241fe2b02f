package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medbook/appointment-api/internal/middleware"
	apperrors "github.com/medbook/appointment-api/pkg/errors"
)

// CallerID returns the authenticated user's ID set by the auth middleware.
func CallerID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.GetString(middleware.ContextUserID))
	if err != nil {
		return uuid.Nil, apperrors.Unauthorized(err)
	}
	return id, nil
}

// CallerRole returns the authenticated user's role set by the auth middleware.
func CallerRole(c *gin.Context) string {
	return c.GetString(middleware.ContextRole)
}
