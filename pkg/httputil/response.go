package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medbook/appointment-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents an API error payload
type Error struct {
	Code          int    `json:"code"`
	Message       string `json:"message"`
	SuggestedSlot string `json:"suggested_slot,omitempty"`
}

// RespondWithSuccess sends a 200 success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithCreated sends a 201 success response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError maps an application error onto the wire format. Slot
// conflicts carry the suggested alternative so clients can retry immediately.
func RespondWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	apiErr := &Error{
		Code:    status,
		Message: "internal server error",
	}

	if appErr, ok := errors.AsAppError(err); ok {
		status = appErr.StatusCode()
		apiErr.Code = status
		apiErr.Message = appErr.Message
		apiErr.SuggestedSlot = appErr.SuggestedSlot
	}

	c.JSON(status, Response{
		Success: false,
		Error:   apiErr,
	})
}
