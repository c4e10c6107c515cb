package evergreen

import (
	"fmt"
	"math"
)

// InjectHandSample queues a synthetic hand sample. Injected samples take the
// tracker's place: one is consumed per tick, and while any are queued the
// tracker is not polled.
func (s *Scene) InjectHandSample(h HandSample) {
	s.injectQueue = append(s.injectQueue, h)
}

// InjectPose queues count copies of a named pose (see PoseSample).
func (s *Scene) InjectPose(name string, count int) error {
	h, err := PoseSample(name)
	if err != nil {
		return err
	}
	for range max(count, 1) {
		s.InjectHandSample(h)
	}
	return nil
}

// SyntheticHand builds a 21-landmark hand centered at (cx, cy). Every
// fingertip sits exactly spread from the wrist, so Openness() == spread, and
// the thumb tip sits pinch from the index tip.
func SyntheticHand(spread, pinch, cx, cy float64) HandSample {
	h := make(HandSample, HandLandmarkCount)
	wrist := Landmark{X: cx, Y: cy + 0.08}
	for i := range h {
		h[i] = Landmark{X: cx, Y: cy}
	}
	h[LandmarkWrist] = wrist
	h[LandmarkMiddleMCP] = Landmark{X: cx, Y: cy}

	// Fan the four fingertips upward from the wrist.
	angles := [4]float64{-0.3, -0.1, 0.1, 0.3}
	for i, tip := range fingertips {
		s, c := math.Sincos(angles[i])
		h[tip] = Landmark{X: wrist.X + spread*s, Y: wrist.Y - spread*c}
	}
	idx := h[LandmarkIndexTip]
	h[LandmarkThumbTip] = Landmark{X: idx.X - pinch, Y: idx.Y}
	return h
}

// Named poses accepted by PoseSample.
const (
	PoseFist    = "fist"
	PoseOpen    = "open"
	PosePinch   = "pinch"
	PoseNeutral = "neutral"
)

// PoseSample returns a centered synthetic hand for a named pose. The spreads
// sit well inside each classifier band of DefaultGestureConfig.
func PoseSample(name string) (HandSample, error) {
	switch name {
	case PoseFist:
		return SyntheticHand(0.05, 0.1, 0.5, 0.5), nil
	case PoseOpen:
		return SyntheticHand(0.5, 0.2, 0.5, 0.5), nil
	case PosePinch:
		return SyntheticHand(0.25, 0.02, 0.5, 0.5), nil
	case PoseNeutral:
		return SyntheticHand(0.25, 0.15, 0.5, 0.5), nil
	}
	return nil, fmt.Errorf("unknown pose %q", name)
}
