// Package theme models the portal's light/dark display preference.
package theme

import "strings"

// Mode is the active color scheme.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// CookieName is the browser-side storage key for the preference.
const CookieName = "themeMode"

// Parse returns the mode named by s, defaulting to Light.
func Parse(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(Dark)) {
		return Dark
	}
	return Light
}

// Toggle returns the opposite mode.
func (m Mode) Toggle() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

func (m Mode) String() string { return string(m) }
