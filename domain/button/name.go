package button

import (
	"fmt"
	"regexp"
)

// Dashes are reserved for action suffixes in signed labels.
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_.]*$`)

const maxNameLength = 128

type Name struct {
	value string
}

func NewName(value string) (Name, error) {
	if value == "" {
		return Name{}, fmt.Errorf("%w: empty value", ErrInvalidName)
	}
	if len(value) > maxNameLength {
		return Name{}, fmt.Errorf("%w: exceeds max length %d", ErrInvalidName, maxNameLength)
	}
	if !nameRegex.MatchString(value) {
		return Name{}, fmt.Errorf("%w: contains invalid characters", ErrInvalidName)
	}
	return Name{value: value}, nil
}

func (n Name) Value() string {
	return n.value
}

func (n Name) String() string {
	return n.value
}
