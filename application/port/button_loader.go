package port

import "github.com/alexmorbo/bttn-relay/domain/button"

type ButtonLoader interface {
	// LoadButton merges generic settings with the button's own file. A
	// missing or broken file is reported by the loader, not returned.
	LoadButton(name string) button.Config
	ListButtons() ([]string, error)
}

type TokenWriter interface {
	WriteTokens(tokens map[string]string) error
}

type PressLimiter interface {
	Allow(button string) bool
}
