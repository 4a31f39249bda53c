package profile

import (
	"fmt"

	"github.com/tutor-radar/internal/domain"
)

// Screen is the dashboard surface currently shown to the user.
type Screen string

const (
	ScreenBasicEdit    Screen = "basic_edit"
	ScreenAdvancedEdit Screen = "advanced_edit"
	ScreenMap          Screen = "map"
)

// Event is a user action that moves between onboarding screens.
type Event string

const (
	EventBasicSaved     Event = "basic_saved"
	EventBasicClosed    Event = "basic_closed"
	EventAdvancedClosed Event = "advanced_closed"
	EventEditIdentity   Event = "edit_identity"
	EventEditAdvanced   Event = "edit_advanced"
)

var onboarding = map[Screen]map[Event]Screen{
	ScreenBasicEdit: {
		EventBasicSaved:  ScreenAdvancedEdit,
		EventBasicClosed: ScreenMap,
	},
	ScreenAdvancedEdit: {
		EventAdvancedClosed: ScreenMap,
	},
	ScreenMap: {
		EventEditIdentity: ScreenBasicEdit,
		EventEditAdvanced: ScreenAdvancedEdit,
	},
}

// InitialScreen is where the dashboard opens for p, which may be nil.
func InitialScreen(p *domain.Profile) Screen {
	if !p.HasRole() {
		return ScreenBasicEdit
	}
	return ScreenMap
}

// Next applies e to s. Closing the basic editor without a role keeps the
// user on it.
func Next(s Screen, e Event, hasRole bool) (Screen, error) {
	to, ok := onboarding[s][e]
	if !ok {
		return s, fmt.Errorf("%s not allowed from %s: %w", e, s, domain.ErrBadRequest)
	}
	if e == EventBasicClosed && !hasRole {
		return ScreenBasicEdit, nil
	}
	return to, nil
}
