package theme

import (
	"errors"
	"strings"
)

// StorageKey is where the preference is persisted.
const StorageKey = "contractguard-theme"

var ErrInvalidTheme = errors.New("theme must be light or dark")

// Theme is a colour scheme.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Parse accepts exactly "light" or "dark".
func Parse(raw string) (Theme, bool) {
	switch Theme(strings.TrimSpace(raw)) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	default:
		return "", false
	}
}

// Opposite returns the theme a toggle switches to.
func (t Theme) Opposite() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}
