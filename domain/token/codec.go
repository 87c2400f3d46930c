package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	ActionCall       = "call"
	ActionDelete     = "delete"
	ActionInitialise = "initialise"

	// IndexLabel is signed on its own to protect the button listing.
	IndexLabel = "index"
)

var encoding = base64.URLEncoding

// Codec signs and verifies button labels. A codec without a key is a
// pass-through: Sign returns the label and Verify returns the token.
type Codec struct {
	key []byte
}

func NewCodec(key string) *Codec {
	if key == "" {
		return &Codec{}
	}
	return &Codec{key: []byte(key)}
}

func (c *Codec) Signed() bool {
	return len(c.key) > 0
}

// Sign produces base64(label[-action] ":" base64(hmac(label[-action]))).
func (c *Codec) Sign(label, action string) string {
	if !c.Signed() {
		return label
	}
	if action != "" {
		label += "-" + action
	}
	digest := encoding.EncodeToString(c.digest(label))
	return encoding.EncodeToString([]byte(label + ":" + digest))
}

// Verify returns the label carried by token. When action is not empty the
// signed label must end with that action, and the bare label is returned.
func (c *Codec) Verify(token, action string) (string, error) {
	if !c.Signed() {
		return token, nil
	}

	raw, err := encoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: incorrect encoding", ErrInvalidToken)
	}

	label, digest, ok := strings.Cut(string(raw), ":")
	if !ok {
		return "", fmt.Errorf("%w: no hash", ErrInvalidToken)
	}

	signature, err := encoding.DecodeString(digest)
	if err != nil {
		return "", fmt.Errorf("%w: incorrect hash encoding", ErrInvalidToken)
	}
	if !hmac.Equal(signature, c.digest(label)) {
		return "", fmt.Errorf("%w: incorrect hash", ErrInvalidToken)
	}

	if action == "" {
		return label, nil
	}

	name, suffix, ok := strings.Cut(label, "-")
	if !ok {
		return "", fmt.Errorf("%w: missing action", ErrInvalidToken)
	}
	if suffix != action {
		return "", fmt.Errorf("%w: incorrect action", ErrInvalidToken)
	}
	return name, nil
}

// Tokens returns the token set published for the given buttons: the press
// token, one token per administrative action, and the index token.
func (c *Codec) Tokens(names []string) map[string]string {
	tokens := make(map[string]string, len(names)*4+1)
	for _, name := range names {
		tokens[name] = c.Sign(name, "")
		for _, action := range []string{ActionCall, ActionDelete, ActionInitialise} {
			tokens[name+"-"+action] = c.Sign(name, action)
		}
	}
	tokens[IndexLabel] = c.Sign(IndexLabel, "")
	return tokens
}

func (c *Codec) digest(label string) []byte {
	mac := hmac.New(sha256.New, c.key)
	_, _ = mac.Write([]byte(label))
	return mac.Sum(nil)
}
