package evergreen

import (
	"encoding/json"
	"fmt"
)

// scriptStep represents a single action in a script.
type scriptStep struct {
	Action string  `json:"action"`
	Pose   string  `json:"pose,omitempty"`
	ID     string  `json:"id,omitempty"`
	Delta  float64 `json:"delta,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// script is the top-level JSON structure for a script.
type script struct {
	Steps []scriptStep `json:"steps"`
}

// scriptActions lists the accepted step actions.
var scriptActions = map[string]bool{
	"toggle":  true,
	"formed":  true,
	"scatter": true,
	"focus":   true,
	"zoom":    true,
	"hand":    true,
	"wait":    true,
}

// ScriptRunner sequences UI commands and synthetic hand poses across ticks
// for demos and automated tests. Attach to a Scene via SetScriptRunner.
//
// Actions:
//
//	toggle            flip formed/scattered
//	formed, scatter   set the mode
//	focus  [id]       focus a photo, or a random one when id is empty
//	zoom   delta      adjust the focus distance
//	hand   pose [frames]  inject a named pose (fist, open, pinch, neutral)
//	wait   frames     idle for a number of ticks
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
	err       error
}

// LoadScript parses a JSON script and returns a ScriptRunner ready to be
// attached to a Scene via SetScriptRunner.
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var sc script
	if err := json.Unmarshal(jsonData, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range sc.Steps {
		if !scriptActions[st.Action] {
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
		if st.Action == "hand" {
			if _, err := PoseSample(st.Pose); err != nil {
				return nil, fmt.Errorf("parse script: step %d: %w", i, err)
			}
		}
	}
	return &ScriptRunner{steps: sc.Steps}, nil
}

// SetScriptRunner attaches a ScriptRunner to the scene. The runner's step
// method is called from Scene.Tick before gestures and UI commands.
func (s *Scene) SetScriptRunner(runner *ScriptRunner) {
	s.runner = runner
}

// Done reports whether all steps in the script have been executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Err returns the first error a step produced, such as focusing an unknown
// photo. Failed steps are skipped.
func (r *ScriptRunner) Err() error {
	return r.err
}

// step advances the runner by one tick. Called from Scene.Tick.
func (r *ScriptRunner) step(s *Scene) {
	if r.done {
		return
	}
	// Wait for injected hand samples to drain before advancing.
	if len(s.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "toggle":
		s.Toggle()
	case "formed":
		s.SetMode(ModeFormed)
	case "scatter":
		s.SetMode(ModeScattered)
	case "focus":
		if st.ID == "" {
			s.SetMode(ModeFocus)
		} else if err := s.SelectFocus(st.ID); err != nil && r.err == nil {
			r.err = err
		}
	case "zoom":
		s.Zoom(st.Delta)
	case "hand":
		if err := s.InjectPose(st.Pose, st.Frames); err != nil && r.err == nil {
			r.err = err
		}
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this tick counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(s.injectQueue) == 0 {
		r.done = true
	}
}
