package analytics

import (
	"errors"
	"strings"
)

// Window is one of the fixed reporting windows.
type Window string

const (
	Window24h Window = "24h"
	Window7d  Window = "7d"
	Window30d Window = "30d"
	Window90d Window = "90d"
)

// DefaultWindow is used when the caller does not pick one.
const DefaultWindow = Window7d

// ErrInvalidWindow is returned by ParseWindow for unknown selectors.
var ErrInvalidWindow = errors.New("window must be one of 24h, 7d, 30d, 90d")

var windowDays = map[Window]int{
	Window24h: 1,
	Window7d:  7,
	Window30d: 30,
	Window90d: 90,
}

// Days returns the day count of w, or 0 for an unknown window.
func (w Window) Days() int { return windowDays[w] }

// ParseWindow parses a selector such as "7d". An empty string yields
// DefaultWindow.
func ParseWindow(s string) (Window, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultWindow, nil
	}
	w := Window(s)
	if w.Days() == 0 {
		return "", ErrInvalidWindow
	}
	return w, nil
}
