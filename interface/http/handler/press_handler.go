package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alexmorbo/bttn-relay/application/usecase"
	"github.com/alexmorbo/bttn-relay/interface/http/middleware"
)

type PressExecutor interface {
	Execute(ctx context.Context, tok string) (*usecase.PressResult, error)
}

type PressHandler struct {
	press    PressExecutor
	defaults *DefaultTokens
	errors   *ErrorResponder
	timeout  time.Duration
}

func NewPressHandler(press PressExecutor, defaults *DefaultTokens, errors *ErrorResponder, timeout time.Duration) *PressHandler {
	return &PressHandler{press: press, defaults: defaults, errors: errors, timeout: timeout}
}

// Press answers "OK <count>" so the device operator can see the press landed.
func (h *PressHandler) Press(c *gin.Context) {
	tok := c.Param("token")
	if tok == "" {
		tok = h.defaults.For("")
	}

	// A press that got past Advance must finish its dispatch even if the
	// device hangs up, so only the timeout bounds the outbound calls.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), h.timeout)
	defer cancel()

	result, err := h.press.Execute(ctx, tok)
	if err != nil {
		h.errors.Respond(c, "press", err)
		return
	}

	c.Set(middleware.ButtonKey, result.Button)
	c.String(http.StatusOK, fmt.Sprintf("OK %d\n", result.Count))
}
