package evergreen

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// referenceFPS is the frame rate at which blend rates are specified.
const referenceFPS = 60

// Pose carries the per-frame values shared by every entity of a group.
type Pose struct {
	// Blend is the (possibly eased) morph progress in [0, 1].
	Blend float64
	// Time is the scene's elapsed time in seconds.
	Time float64
	// Spin is the group's accumulated spin phase. It advances at
	// SpinRate * (1 - Blend) per second, so it freezes once formed.
	Spin float64
}

// frameContext is everything a group needs from the scene for one tick.
type frameContext struct {
	mode        Mode
	focusID     string
	time        float64
	blendRate   float64
	focusTarget InstanceTransform
}

// ComputeTransform returns the transform of e for one frame, without any
// focus override or smoothing.
//
// Position blends linearly from the scattered to the formed position and then
// adds a per-axis sinusoidal float whose amplitude shrinks as the group forms.
// Rotation slerps from the spinning scattered orientation to the static formed
// one. Scale blends between the group's scatter and formed factors.
func ComputeTransform(e *Entity, cfg *GroupConfig, p Pose) InstanceTransform {
	return computeTransform(e, cfg, p, e.Scatter.Quat(), e.Formed.Quat())
}

func computeTransform(e *Entity, cfg *GroupConfig, p Pose, scatterQ, formedQ mgl64.Quat) InstanceTransform {
	t := p.Blend

	pos := lerpVec(e.Scatter.Position, e.Formed.Position, t)
	if amp := idleAmplitude(cfg, t); amp > 0 {
		pos = pos.Add(idleOffset(e, p.Time).Mul(amp))
	}

	rot := scatterQ
	if cfg.SpinRate != 0 {
		rot = spinQuat(e, p.Spin).Mul(scatterQ)
	}
	rot = slerp(rot, formedQ, t)

	scale := lerp(e.Scatter.Scale*cfg.ScatterScale, e.Formed.Scale*cfg.FormedScale, t) * e.Scale

	return InstanceTransform{Position: pos, Rotation: rot, Scale: scale}
}

// idleAmplitude is full when scattered and FormedIdle of it once formed.
func idleAmplitude(cfg *GroupConfig, blend float64) float64 {
	return cfg.IdleAmplitude * math.Max(1-blend, cfg.FormedIdle)
}

// idleOffset is a unit-bounded per-axis wobble, desynchronized by the entity's
// seed and phase speed.
func idleOffset(e *Entity, time float64) mgl64.Vec3 {
	ph := time*e.PhaseSpeed + e.Seed
	return mgl64.Vec3{
		math.Sin(ph),
		math.Cos(ph*0.9 + e.Seed),
		math.Sin(ph*1.1 + 2*e.Seed),
	}
}

// spinQuat rotates mostly about Y with a per-entity tilt of the axis.
func spinQuat(e *Entity, spin float64) mgl64.Quat {
	s, c := math.Sincos(e.Seed)
	axis := mgl64.Vec3{0.3 * s, 1, 0.3 * c}.Normalize()
	return mgl64.QuatRotate(spin*e.PhaseSpeed, axis)
}

// approachAlpha converts a per-frame blend rate specified at 60 Hz into the
// fraction of the remaining distance to cover over dt seconds.
func approachAlpha(rate, dt float64) float64 {
	if rate <= 0 || dt <= 0 {
		return 0
	}
	if rate >= 1 {
		return 1
	}
	return 1 - math.Pow(1-rate, dt*referenceFPS)
}

// Approach moves current toward target by alpha in [0, 1]: positions and
// scales linearly, orientation along the shortest arc.
func Approach(current, target InstanceTransform, alpha float64) InstanceTransform {
	alpha = clamp(alpha, 0, 1)
	return InstanceTransform{
		Position: lerpVec(current.Position, target.Position, alpha),
		Rotation: slerp(current.Rotation, target.Rotation, alpha),
		Scale:    lerp(current.Scale, target.Scale, alpha),
	}
}
