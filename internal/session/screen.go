package session

import (
	"errors"
	"fmt"
	"strings"
)

// Screen is one of the three mutually exclusive top-level views.
type Screen string

const (
	Auth       Screen = "auth"
	Onboarding Screen = "onboarding"
	Dashboard  Screen = "dashboard"
)

// Screens lists every screen in display order.
var Screens = []Screen{Auth, Onboarding, Dashboard}

var ErrUnknownScreen = errors.New("unknown screen")

func (s Screen) String() string { return string(s) }

func (s Screen) Valid() bool {
	switch s {
	case Auth, Onboarding, Dashboard:
		return true
	}
	return false
}

// ParseScreen accepts user input such as " Dashboard ".
func ParseScreen(raw string) (Screen, error) {
	s := Screen(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownScreen, raw)
	}
	return s, nil
}
