package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/alexmorbo/bttn-relay/pkg/logger"
)

// Recovery turns a panic into the same plain "Internal error" body the relay
// returns for transport failures.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("Panic recovered",
					slog.Any("error", err),
					slog.String("stack", string(debug.Stack())),
					slog.String("route", c.FullPath()),
					slog.String("method", c.Request.Method),
					slog.String("request_id", logger.GetRequestID(c.Request.Context())),
				)
				c.Abort()
				c.String(http.StatusInternalServerError, "Internal error")
			}
		}()
		c.Next()
	}
}
