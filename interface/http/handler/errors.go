package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alexmorbo/bttn-relay/application/usecase"
	"github.com/alexmorbo/bttn-relay/domain/remote"
	"github.com/alexmorbo/bttn-relay/pkg/logger"
)

// ErrorResponder maps use case errors to the relay's plain-text answers.
// In debug mode the error text is returned instead of the generic phrase.
type ErrorResponder struct {
	debug  bool
	logger *slog.Logger
}

func NewErrorResponder(debug bool, log *slog.Logger) *ErrorResponder {
	return &ErrorResponder{debug: debug, logger: log}
}

func (r *ErrorResponder) Respond(c *gin.Context, operation string, err error) {
	status, body := classify(err)

	_ = c.Error(err)
	logger.FromContext(c.Request.Context(), r.logger).Error("Request failed",
		slog.String("operation", operation),
		slog.Int("status", status),
		logger.Err(err),
	)

	if r.debug {
		body = err.Error()
	}
	c.String(status, body)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrPressThrottled):
		return http.StatusTooManyRequests, "Too many requests"
	case errors.Is(err, remote.ErrTransport):
		return http.StatusInternalServerError, "Internal error"
	default:
		return http.StatusBadRequest, "Invalid request"
	}
}
