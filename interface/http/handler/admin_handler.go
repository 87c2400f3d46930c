package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alexmorbo/bttn-relay/interface/http/middleware"
)

type ButtonManager interface {
	Delete(ctx context.Context, tok string) (string, error)
	Initialise(ctx context.Context, tok string) (string, error)
}

// AdminHandler exposes room teardown and re-initialisation. Both routes
// need a token signed for the matching action; there is no default button.
type AdminHandler struct {
	manager ButtonManager
	errors  *ErrorResponder
	timeout time.Duration
}

func NewAdminHandler(manager ButtonManager, errors *ErrorResponder, timeout time.Duration) *AdminHandler {
	return &AdminHandler{manager: manager, errors: errors, timeout: timeout}
}

func (h *AdminHandler) Delete(c *gin.Context) {
	h.run(c, "delete", h.manager.Delete)
}

func (h *AdminHandler) Initialise(c *gin.Context) {
	h.run(c, "initialise", h.manager.Initialise)
}

func (h *AdminHandler) run(c *gin.Context, operation string, fn func(context.Context, string) (string, error)) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), h.timeout)
	defer cancel()

	name, err := fn(ctx, c.Param("token"))
	if err != nil {
		h.errors.Respond(c, operation, err)
		return
	}

	c.Set(middleware.ButtonKey, name)
	c.String(http.StatusOK, "OK")
}
