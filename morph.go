package evergreen

import "github.com/tanema/gween/ease"

// DefaultSmoothingRate is the morph convergence rate per second used when a
// group config leaves it unset.
const DefaultSmoothingRate = 1.8

// MorphClock is the interpolation progress of one animated group toward the
// active configuration. Progress 0 is fully scattered, 1 fully formed.
//
// There is no global timer; the owning group calls Advance once per tick.
type MorphClock struct {
	progress float64
	target   float64
	rate     float64
}

// NewMorphClock returns a clock at progress 0 converging at rate per second.
// A non-positive rate falls back to DefaultSmoothingRate.
func NewMorphClock(rate float64) MorphClock {
	if rate <= 0 {
		rate = DefaultSmoothingRate
	}
	return MorphClock{rate: rate}
}

// Advance moves progress toward 1 when formed is true and toward 0 otherwise,
// by exponential smoothing over dt seconds. Callers clamp dt (Scene.Tick caps
// it at Config.MaxFrameDelta); the blend factor is clamped to [0, 1] so a long
// frame gap lands on the target instead of overshooting it.
func (c *MorphClock) Advance(dt float64, formed bool) {
	if formed {
		c.target = 1
	} else {
		c.target = 0
	}
	if dt <= 0 {
		return
	}
	k := clamp(c.rate*dt, 0, 1)
	c.progress = clamp(c.progress+(c.target-c.progress)*k, 0, 1)
}

// Progress returns the raw interpolation value in [0, 1].
func (c *MorphClock) Progress() float64 {
	return c.progress
}

// Target returns 1 while converging toward formed, 0 otherwise.
func (c *MorphClock) Target() float64 {
	return c.target
}

// Rate returns the smoothing rate per second.
func (c *MorphClock) Rate() float64 {
	return c.rate
}

// Eased returns progress passed through the cubic in-out curve.
func (c *MorphClock) Eased() float64 {
	return EaseInOutCubic(c.progress)
}

// EasedWith returns progress passed through fn, or the raw progress when fn
// is nil.
func (c *MorphClock) EasedWith(fn ease.TweenFunc) float64 {
	if fn == nil {
		return c.progress
	}
	return applyEase(fn, c.progress)
}

// EaseInOutCubic is 4t³ below 0.5 and 1-(-2t+2)³/2 above.
func EaseInOutCubic(t float64) float64 {
	return applyEase(ease.InOutCubic, t)
}

// applyEase evaluates a gween easing function over the unit interval.
func applyEase(fn ease.TweenFunc, t float64) float64 {
	return clamp(float64(fn(float32(clamp(t, 0, 1)), 0, 1, 1)), 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
