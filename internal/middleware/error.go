package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/medbook/appointment-api/pkg/httputil"
	"github.com/medbook/appointment-api/pkg/logger"
)

// ErrorHandler converts errors attached to the gin context into the wire
// format. Handlers that call httputil directly bypass this; it is the
// safety net for errors pushed via c.Error.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		for _, e := range c.Errors {
			l.Error(e.Err, "request error",
				"request_id", c.GetString(ContextRequestID),
				"path", c.Request.URL.Path,
				"method", c.Request.Method)
		}

		if c.Writer.Written() {
			return
		}
		httputil.RespondWithError(c, c.Errors.Last().Err)
	}
}
