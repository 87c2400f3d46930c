package room

import (
	"errors"
	"strings"
)

var ErrNotFound = errors.New("room not found")

type Room struct {
	ID    string
	Title string
}

// Matches reports whether title belongs to the configured room name. Matching
// is by containment, so "Incident" picks up "Incident - floor 2".
func Matches(name, title string) bool {
	if name == "" {
		return false
	}
	return strings.Contains(title, name)
}
