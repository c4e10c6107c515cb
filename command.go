package evergreen

import (
	"fmt"

	"github.com/tanema/gween/ease"
)

// commandKind enumerates the UI commands applied during Tick.
type commandKind uint8

const (
	commandToggle commandKind = iota
	commandSetMode
	commandFocus
)

// command is one queued UI action. Commands are applied after the gesture
// step of the same tick, so explicit user intent wins over the classifier.
type command struct {
	kind    commandKind
	mode    Mode
	focusID string
}

// Toggle switches between ModeFormed and ModeScattered on the next tick.
// From ModeFocus it forms the tree.
func (s *Scene) Toggle() {
	s.commands = append(s.commands, command{kind: commandToggle})
}

// SetMode requests mode m on the next tick. ModeFocus picks a random photo,
// the same policy as the pinch gesture, and is ignored when there are none.
func (s *Scene) SetMode(m Mode) {
	s.commands = append(s.commands, command{kind: commandSetMode, mode: m})
}

// SelectFocus requests focus on the photo with the given ID on the next tick.
func (s *Scene) SelectFocus(id string) error {
	if !s.hasFocusable(id) {
		return fmt.Errorf("select focus %q: %w", id, ErrUnknownFocus)
	}
	s.commands = append(s.commands, command{kind: commandFocus, focusID: id})
	return nil
}

// Zoom adjusts the focus distance by delta while in ModeFocus. Positive moves
// the photo away from the camera.
func (s *Scene) Zoom(delta float64) {
	if s.state.Mode() != ModeFocus {
		return
	}
	s.zoomTween = nil
	s.focus.AdjustZoom(delta)
}

// ZoomTo eases the focus distance to zoom over duration seconds while in
// ModeFocus. A later Zoom or focus change cancels it.
func (s *Scene) ZoomTo(zoom float64, duration float32) {
	if s.state.Mode() != ModeFocus {
		return
	}
	s.zoomTween = TweenZoom(s.focus, zoom, duration, ease.InOutQuad)
}

// processCommands applies queued UI commands in order.
func (s *Scene) processCommands() {
	for _, c := range s.commands {
		switch c.kind {
		case commandToggle:
			if s.state.Mode() == ModeFormed {
				s.apply(ModeScattered, "", SourceUI)
			} else {
				s.apply(ModeFormed, "", SourceUI)
			}
		case commandSetMode:
			id := ""
			if c.mode == ModeFocus {
				if s.state.Mode() == ModeFocus {
					continue
				}
				id = s.randomFocusable()
			}
			s.apply(c.mode, id, SourceUI)
		case commandFocus:
			// The photo may have been removed since the command was queued.
			if s.hasFocusable(c.focusID) {
				s.apply(ModeFocus, c.focusID, SourceUI)
			}
		}
	}
	s.commands = s.commands[:0]
}
