package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alexmorbo/bttn-relay/domain/token"
	"github.com/alexmorbo/bttn-relay/infrastructure/twilio"
)

type CallExecutor interface {
	Execute(tok string) (string, error)
}

// CallHandler serves the TwiML fetched by Twilio once a placed call is
// answered.
type CallHandler struct {
	call     CallExecutor
	defaults *DefaultTokens
	errors   *ErrorResponder
}

func NewCallHandler(call CallExecutor, defaults *DefaultTokens, errors *ErrorResponder) *CallHandler {
	return &CallHandler{call: call, defaults: defaults, errors: errors}
}

func (h *CallHandler) Call(c *gin.Context) {
	tok := c.Param("token")
	if tok == "" {
		tok = h.defaults.For(token.ActionCall)
	}

	say, err := h.call.Execute(tok)
	if err != nil {
		h.errors.Respond(c, "call", err)
		return
	}

	body, err := twilio.RenderSay(say)
	if err != nil {
		h.errors.Respond(c, "call", err)
		return
	}
	c.Data(http.StatusOK, "text/xml; charset=utf-8", body)
}
