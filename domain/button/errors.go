package button

import "errors"

var (
	ErrInvalidName   = errors.New("invalid button name")
	ErrConfiguration = errors.New("configuration error")

	ErrEmptyMessage  = errors.New("no message to send")
	ErrNoNumber      = errors.New("no target number")
	ErrNoCallbackURL = errors.New("no callback url")
)
