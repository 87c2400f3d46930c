package handler

import "github.com/alexmorbo/bttn-relay/domain/token"

// DefaultTokens stands in for the token on routes called without one.
type DefaultTokens struct {
	codec  *token.Codec
	button string
}

func NewDefaultTokens(codec *token.Codec, button string) *DefaultTokens {
	return &DefaultTokens{codec: codec, button: button}
}

// For returns the default button's token for action, or "" when no default
// button is configured.
func (d *DefaultTokens) For(action string) string {
	if d == nil || d.button == "" {
		return ""
	}
	return d.codec.Sign(d.button, action)
}
