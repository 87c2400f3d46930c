package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alexmorbo/bttn-relay/pkg/logger"
)

// Logging records one line per request. The route template is logged
// instead of the raw path so signed tokens never reach the logs.
func Logging(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		requestID := logger.GetRequestID(c.Request.Context())

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		attrs := []any{
			logger.HTTPFields(
				requestID,
				method,
				route,
				c.ClientIP(),
				status,
				time.Since(start),
				int(c.Request.ContentLength),
				c.Writer.Size(),
			),
		}
		if name := c.GetString(ButtonKey); name != "" {
			attrs = append(attrs, logger.Button(name))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("error", c.Errors.String()))
		}

		log.Log(c.Request.Context(), level, "HTTP request completed", attrs...)
	}
}
