package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medbook/appointment-api/pkg/logger"
)

// Logger logs each request after it completes. Request bodies are never
// logged: they carry patient identifying data.
func Logger(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		fields := []interface{}{
			"request_id", c.GetString(ContextRequestID),
			"client_ip", c.ClientIP(),
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", latency.Milliseconds(),
		}

		switch {
		case status >= 500:
			l.Error(nil, "server error", fields...)
		case status >= 400:
			l.Warn("client error", fields...)
		default:
			l.Info("request processed", fields...)
		}
	}
}
