package evergreen

import "math"

// Hand landmark indices of a 21-point hand model.
const (
	LandmarkWrist     = 0
	LandmarkThumbTip  = 4
	LandmarkIndexTip  = 8
	LandmarkMiddleMCP = 9
	LandmarkMiddleTip = 12
	LandmarkRingTip   = 16
	LandmarkPinkyTip  = 20

	// HandLandmarkCount is the number of landmarks in a valid HandSample.
	HandLandmarkCount = 21
)

// fingertips are the four non-thumb fingertip landmarks.
var fingertips = [4]int{LandmarkIndexTip, LandmarkMiddleTip, LandmarkRingTip, LandmarkPinkyTip}

// Landmark is one hand keypoint with each axis normalized to [0, 1].
type Landmark struct {
	X, Y, Z float64
}

// Dist returns the Euclidean distance between two landmarks.
func (l Landmark) Dist(o Landmark) float64 {
	dx, dy, dz := l.X-o.X, l.Y-o.Y, l.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// HandSample is one frame's landmarks for a single detected hand. Samples are
// not retained beyond the classification step.
type HandSample []Landmark

// Valid reports whether the sample has the full landmark set.
func (h HandSample) Valid() bool {
	return len(h) == HandLandmarkCount
}

// Openness returns the mean distance from the four fingertips to the wrist.
func (h HandSample) Openness() float64 {
	wrist := h[LandmarkWrist]
	var sum float64
	for _, i := range fingertips {
		sum += h[i].Dist(wrist)
	}
	return sum / float64(len(fingertips))
}

// PinchDistance returns the thumb-tip to index-tip distance.
func (h HandSample) PinchDistance() float64 {
	return h[LandmarkThumbTip].Dist(h[LandmarkIndexTip])
}

// Center returns the hand-center landmark.
func (h HandSample) Center() Landmark {
	return h[LandmarkMiddleMCP]
}

// GestureConfig holds the classifier thresholds, in normalized landmark units.
type GestureConfig struct {
	// FistThreshold: mean fingertip-to-wrist distance below this is a fist.
	FistThreshold float64 `toml:"fist_threshold"`
	// OpenThreshold: mean fingertip-to-wrist distance above this is an open hand.
	OpenThreshold float64 `toml:"open_threshold"`
	// PinchThreshold: thumb-to-index distance below this is a pinch.
	PinchThreshold float64 `toml:"pinch_threshold"`
	// RotationRange bounds the rotation-control signal to ±RotationRange.
	RotationRange float64 `toml:"rotation_range"`
	// StableFrames is how many consecutive samples must agree on a new mode
	// before it is committed. 1 commits immediately.
	StableFrames int `toml:"stable_frames"`
}

// DefaultGestureConfig returns the thresholds used by DefaultConfig.
func DefaultGestureConfig() GestureConfig {
	return GestureConfig{
		FistThreshold:  0.15,
		OpenThreshold:  0.35,
		PinchThreshold: 0.05,
		RotationRange:  1.5,
		StableFrames:   1,
	}
}

// Decision is the classifier's output for one sample.
type Decision struct {
	// Signal is false when the sample carried no usable hand.
	Signal bool
	// Mode is the resulting mode; equal to the prior mode unless Changed.
	Mode    Mode
	Changed bool
	// FocusID is the selected focus target when Changed into ModeFocus.
	FocusID string
	// Rotation is the rotation-control signal. Neutral while formed.
	Rotation Vec2
}

// Classifier turns hand samples into discrete mode transitions.
//
// Rules, in priority order: a fist forms the tree; an open hand scatters it;
// otherwise a pinch focuses a random focusable entity unless already focused;
// any other pose keeps the prior mode. The band between the fist and open
// thresholds is the hysteresis that keeps a relaxing hand from flickering.
type Classifier struct {
	cfg       GestureConfig
	rng       RandSource
	candidate Mode
	streak    int
}

// NewClassifier returns a classifier. rng picks focus targets; nil uses
// DefaultRand.
func NewClassifier(cfg GestureConfig, rng RandSource) *Classifier {
	if rng == nil {
		rng = DefaultRand
	}
	if cfg.StableFrames < 1 {
		cfg.StableFrames = 1
	}
	return &Classifier{cfg: cfg, rng: rng}
}

// Config returns the classifier thresholds.
func (c *Classifier) Config() GestureConfig {
	return c.cfg
}

// Classify evaluates one sample against the prior mode. focusables lists the
// IDs a pinch may select from.
func (c *Classifier) Classify(sample HandSample, prior Mode, focusables []string) Decision {
	d := Decision{Mode: prior}
	if !sample.Valid() {
		c.streak = 0
		return d
	}
	d.Signal = true

	cand, hit := c.candidateFor(sample, prior, len(focusables) > 0)
	if !hit || cand == prior {
		c.streak = 0
	} else if c.confirm(cand) {
		d.Mode = cand
		d.Changed = true
		if cand == ModeFocus {
			d.FocusID = focusables[c.pick(len(focusables))]
		}
	}

	if d.Mode != ModeFormed {
		d.Rotation = c.rotation(sample.Center())
	}
	return d
}

func (c *Classifier) candidateFor(sample HandSample, prior Mode, canFocus bool) (Mode, bool) {
	open := sample.Openness()
	switch {
	case open < c.cfg.FistThreshold:
		return ModeFormed, true
	case open > c.cfg.OpenThreshold:
		return ModeScattered, true
	case sample.PinchDistance() < c.cfg.PinchThreshold && prior != ModeFocus && canFocus:
		return ModeFocus, true
	}
	return prior, false
}

// confirm counts consecutive samples agreeing on cand.
func (c *Classifier) confirm(cand Mode) bool {
	if c.streak > 0 && c.candidate == cand {
		c.streak++
	} else {
		c.candidate = cand
		c.streak = 1
	}
	if c.streak >= c.cfg.StableFrames {
		c.streak = 0
		return true
	}
	return false
}

func (c *Classifier) pick(n int) int {
	i := int(c.rng.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// rotation maps the hand center to ±RotationRange on each axis. Moving the
// hand right yaws positive, moving it up pitches positive.
func (c *Classifier) rotation(center Landmark) Vec2 {
	r := c.cfg.RotationRange
	return Vec2{
		X: clamp((center.X-0.5)*2*r, -r, r),
		Y: clamp((0.5-center.Y)*2*r, -r, r),
	}
}
