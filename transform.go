package evergreen

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Frame is an explicit parent coordinate system: a uniform scale, then a
// rotation, then a translation. Entities of every group live in the rig's
// Frame; converting between it and world space is always done through these
// methods rather than through a node hierarchy.
//
// Composition order:
//
//	Scale -> Rotate -> Translate(Origin)
type Frame struct {
	Origin   mgl64.Vec3
	Rotation mgl64.Quat
	// Scale is the uniform scale factor. Zero is treated as 1.
	Scale float64
}

// IdentityFrame returns the frame that leaves points unchanged.
func IdentityFrame() Frame {
	return Frame{Rotation: mgl64.QuatIdent(), Scale: 1}
}

func (f Frame) scale() float64 {
	if f.Scale == 0 {
		return 1
	}
	return f.Scale
}

// Matrix returns the local-to-world matrix of the frame.
func (f Frame) Matrix() mgl64.Mat4 {
	s := f.scale()
	return mgl64.Translate3D(f.Origin[0], f.Origin[1], f.Origin[2]).
		Mul4(f.Rotation.Mat4()).
		Mul4(mgl64.Scale3D(s, s, s))
}

// ToWorld converts a point in this frame to world space.
func (f Frame) ToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return f.Origin.Add(f.Rotation.Rotate(local.Mul(f.scale())))
}

// ToLocal converts a world-space point into this frame.
func (f Frame) ToLocal(world mgl64.Vec3) mgl64.Vec3 {
	return f.Rotation.Inverse().Rotate(world.Sub(f.Origin)).Mul(1 / f.scale())
}

// WorldRotation converts an orientation expressed in this frame to world space.
func (f Frame) WorldRotation(local mgl64.Quat) mgl64.Quat {
	return f.Rotation.Mul(local).Normalize()
}

// LocalRotation converts a world-space orientation into this frame, so that a
// child given the result appears with the world orientation once the frame is
// applied.
func (f Frame) LocalRotation(world mgl64.Quat) mgl64.Quat {
	return f.Rotation.Inverse().Mul(world).Normalize()
}

// Compose returns the frame equivalent to applying child inside f.
func (f Frame) Compose(child Frame) Frame {
	return Frame{
		Origin:   f.ToWorld(child.Origin),
		Rotation: f.Rotation.Mul(child.Rotation).Normalize(),
		Scale:    f.scale() * child.scale(),
	}
}

// Inverse returns the frame that undoes f.
func (f Frame) Inverse() Frame {
	inv := f.Rotation.Inverse()
	s := 1 / f.scale()
	return Frame{
		Origin:   inv.Rotate(f.Origin.Mul(-1)).Mul(s),
		Rotation: inv,
		Scale:    s,
	}
}

// InstanceToWorld converts an instance transform in this frame to world space.
func (f Frame) InstanceToWorld(it InstanceTransform) InstanceTransform {
	return InstanceTransform{
		Position: f.ToWorld(it.Position),
		Rotation: f.WorldRotation(it.Rotation),
		Scale:    it.Scale * f.scale(),
	}
}

// slerp interpolates along the shortest arc between a and b.
func slerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatSlerp(a, b, t).Normalize()
}

func lerpVec(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// wrapAngle maps an angle to [-π, π).
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
