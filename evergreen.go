package evergreen

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// Vec2 is a 2D vector. The rotation-control signal uses X for yaw and Y for pitch.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Range is a general-purpose min/max range used by entity generation.
type Range struct {
	Min, Max float64
}

// Random returns a random float64 in [Min, Max) drawn from rng.
func (r Range) Random(rng RandSource) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// RandSource is the random source used by every generator in the package.
// *rand.Rand from math/rand/v2 satisfies it; tests inject seeded sources.
type RandSource interface {
	Float64() float64
}

type randFunc func() float64

func (f randFunc) Float64() float64 { return f() }

// DefaultRand draws from the math/rand/v2 global generator.
var DefaultRand RandSource = randFunc(rand.Float64)

// Mode is the top-level display mode. Exactly one is active at a time.
type Mode uint8

const (
	ModeScattered Mode = iota // dispersed cloud
	ModeFormed                // assembled tree
	ModeFocus                 // single photo locked in front of the camera
)

// String returns the lower-case name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeScattered:
		return "scattered"
	case ModeFormed:
		return "formed"
	case ModeFocus:
		return "focus"
	default:
		return "unknown"
	}
}

// Category distinguishes the visually distinct entity populations.
type Category uint8

const (
	CategoryFoliage  Category = iota // needle points, shader-driven
	CategoryOrnament                 // baubles, one group per material
	CategoryGift                     // boxes near the base
	CategoryLight                    // small emissive bulbs
	CategoryPhoto                    // focusable image cards
	CategoryTopper                   // single star at the apex
)

// String returns the lower-case name of the category.
func (c Category) String() string {
	switch c {
	case CategoryFoliage:
		return "foliage"
	case CategoryOrnament:
		return "ornament"
	case CategoryGift:
		return "gift"
	case CategoryLight:
		return "light"
	case CategoryPhoto:
		return "photo"
	case CategoryTopper:
		return "topper"
	default:
		return "unknown"
	}
}

// Shape is the primitive-type tag handed to the render collaborator.
type Shape uint8

const (
	ShapePoint  Shape = iota // billboarded point sprite
	ShapeSphere              // instanced sphere
	ShapeBox                 // instanced box
	ShapeCard                // textured quad with a white frame
	ShapeStar                // extruded star
)

// Transform is one of the two immutable target configurations of an entity.
// Rotation holds XYZ Euler angles in radians.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Vec3
	Scale    float64
}

// Quat returns the transform's orientation as a quaternion.
func (t Transform) Quat() mgl64.Quat {
	return mgl64.AnglesToQuat(t.Rotation[0], t.Rotation[1], t.Rotation[2], mgl64.XYZ)
}

// InstanceTransform is the derived per-frame transform of one entity, expressed
// in its group's parent frame.
type InstanceTransform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    float64
}

// Matrix returns the model matrix Translate * Rotate * Scale.
func (it InstanceTransform) Matrix() mgl64.Mat4 {
	s := it.Scale
	return mgl64.Translate3D(it.Position[0], it.Position[1], it.Position[2]).
		Mul4(it.Rotation.Mat4()).
		Mul4(mgl64.Scale3D(s, s, s))
}
