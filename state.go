package evergreen

// Source identifies who wrote the application state.
type Source uint8

const (
	SourceNone    Source = iota // initial state
	SourceUI                    // explicit user command
	SourceGesture               // gesture classifier
	SourceScene                 // scene bookkeeping, e.g. a focused photo was removed
)

// String returns the lower-case name of the source.
func (s Source) String() string {
	switch s {
	case SourceUI:
		return "ui"
	case SourceGesture:
		return "gesture"
	case SourceScene:
		return "scene"
	default:
		return "none"
	}
}

// ModeEvent describes one application state change.
type ModeEvent struct {
	From, To Mode
	FocusID  string
	Source   Source
	// Time is the scene time of the change in seconds.
	Time float64
}

// EventSink is the interface for optional observers of state changes, such as
// the Donburi bridge in evergreen/ecs.
type EventSink interface {
	EmitEvent(event ModeEvent)
}

// AppState is the single authoritative mode, focus target and rotation
// control. It has one writer per tick (the Scene), so it carries no lock.
type AppState struct {
	mode     Mode
	focusID  string
	rotation Vec2
	source   Source
}

// Mode returns the active mode.
func (s AppState) Mode() Mode {
	return s.mode
}

// FocusID returns the focused photo's ID, or "" when not in ModeFocus.
func (s AppState) FocusID() string {
	if s.mode != ModeFocus {
		return ""
	}
	return s.focusID
}

// Rotation returns the rotation-control signal.
func (s AppState) Rotation() Vec2 {
	return s.rotation
}

// Source returns who made the latest mode change.
func (s AppState) Source() Source {
	return s.source
}

// set applies a mode change. Entering ModeFocus requires a focus ID; leaving
// it clears the ID. It reports whether anything changed.
func (s *AppState) set(mode Mode, focusID string, src Source) (ModeEvent, bool) {
	if mode == ModeFocus && focusID == "" {
		return ModeEvent{}, false
	}
	if mode != ModeFocus {
		focusID = ""
	}
	if mode == s.mode && focusID == s.focusID {
		return ModeEvent{}, false
	}
	ev := ModeEvent{From: s.mode, To: mode, FocusID: focusID, Source: src}
	s.mode = mode
	s.focusID = focusID
	s.source = src
	if mode == ModeFormed {
		s.rotation = Vec2{}
	}
	return ev, true
}

// setRotation stores the rotation-control signal; it is forced neutral while
// formed.
func (s *AppState) setRotation(r Vec2) {
	if s.mode == ModeFormed {
		r = Vec2{}
	}
	s.rotation = r
}
