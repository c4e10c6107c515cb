package evergreen

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// TreeShape describes the cone the formed configuration fills and the sphere
// the scattered configuration fills.
type TreeShape struct {
	// Height is the cone height in scene units.
	Height float64 `toml:"height"`
	// BaseRadius is the cone radius at its base.
	BaseRadius float64 `toml:"base_radius"`
	// YOffset is the y coordinate of the cone base.
	YOffset float64 `toml:"y_offset"`
	// ScatterRadius is the radius of the scattered cloud.
	ScatterRadius float64 `toml:"scatter_radius"`
}

// DefaultTreeShape returns the shape used by DefaultConfig.
func DefaultTreeShape() TreeShape {
	return TreeShape{Height: 14, BaseRadius: 5.5, YOffset: -7, ScatterRadius: 22}
}

// apex returns the top of the cone.
func (s TreeShape) apex() mgl64.Vec3 {
	return mgl64.Vec3{0, s.YOffset + s.Height, 0}
}

var foliagePalette = []Color{
	{0.02, 0.32, 0.12, 1},
	{0.04, 0.42, 0.18, 1},
	{0.1, 0.5, 0.22, 1},
	{0.0, 0.25, 0.1, 1},
}

var giftPalette = []Color{
	{0.75, 0.05, 0.1, 1},
	{0.05, 0.45, 0.2, 1},
	{0.95, 0.8, 0.2, 1},
	{0.9, 0.9, 0.92, 1},
	{0.2, 0.3, 0.7, 1},
}

var lightPalette = []Color{
	{1.0, 0.85, 0.55, 1},
	{1.0, 0.75, 0.35, 1},
	{1.0, 0.95, 0.8, 1},
}

func pick(rng RandSource, colors []Color) Color {
	i := int(rng.Float64() * float64(len(colors)))
	if i >= len(colors) {
		i = len(colors) - 1
	}
	return colors[i]
}

// newEntity fills the fields every category shares.
func newEntity(rng RandSource, cat Category, shape Shape, formed, scatter mgl64.Vec3, phase, scale Range) Entity {
	return Entity{
		Category:   cat,
		Shape:      shape,
		Formed:     Transform{Position: formed, Scale: 1},
		Scatter:    Transform{Position: scatter, Scale: 1},
		PhaseSpeed: phase.Random(rng),
		Seed:       rng.Float64() * 2 * math.Pi,
		Scale:      scale.Random(rng),
	}
}

// GenerateFoliage returns n needle points filling the cone volume.
func GenerateFoliage(rng RandSource, n int, shape TreeShape) []Entity {
	out := make([]Entity, n)
	for i := range out {
		e := newEntity(rng, CategoryFoliage, ShapePoint,
			TreePoint(rng, shape.Height, shape.BaseRadius, shape.YOffset),
			ScatterPoint(rng, shape.ScatterRadius),
			Range{0.5, 1.5}, Range{0.6, 1.4})
		e.Color = pick(rng, foliagePalette)
		out[i] = e
	}
	return out
}

// GenerateOrnaments returns n baubles of one material on the cone surface.
func GenerateOrnaments(rng RandSource, n int, shape TreeShape, m Material) []Entity {
	palette := m.palette()
	out := make([]Entity, n)
	for i := range out {
		e := newEntity(rng, CategoryOrnament, ShapeSphere,
			surfacePoint(rng, shape, 0.04, 0.92),
			ScatterPoint(rng, shape.ScatterRadius),
			Range{0.6, 1.6}, Range{0.18, 0.32})
		e.Formed.Rotation = RandomEuler(rng)
		e.Scatter.Rotation = RandomEuler(rng)
		e.Color = pick(rng, palette)
		out[i] = e
	}
	return out
}

// GenerateGifts returns n boxes arranged on the ground around the trunk.
func GenerateGifts(rng RandSource, n int, shape TreeShape) []Entity {
	out := make([]Entity, n)
	for i := range out {
		r := shape.BaseRadius * (0.3 + 0.9*rng.Float64())
		formed := polarPoint(rng, r, shape.YOffset+0.2)
		e := newEntity(rng, CategoryGift, ShapeBox,
			formed,
			ScatterPoint(rng, shape.ScatterRadius),
			Range{0.3, 0.9}, Range{0.4, 0.8})
		e.Formed.Rotation = mgl64.Vec3{0, rng.Float64() * 2 * math.Pi, 0}
		e.Scatter.Rotation = RandomEuler(rng)
		e.Color = pick(rng, giftPalette)
		out[i] = e
	}
	return out
}

// GenerateLights returns n bulbs on the cone surface. Lights twinkle faster
// than ornaments, so their phase speeds run higher.
func GenerateLights(rng RandSource, n int, shape TreeShape) []Entity {
	out := make([]Entity, n)
	for i := range out {
		e := newEntity(rng, CategoryLight, ShapeSphere,
			surfacePoint(rng, shape, 0.02, 0.95),
			ScatterPoint(rng, shape.ScatterRadius),
			Range{1.0, 3.0}, Range{0.06, 0.1})
		e.Color = pick(rng, lightPalette)
		out[i] = e
	}
	return out
}

// GeneratePhotos returns one card per photo, facing outward from the trunk.
func GeneratePhotos(rng RandSource, photos []Photo, shape TreeShape) []Entity {
	out := make([]Entity, len(photos))
	for i, p := range photos {
		formed := surfacePoint(rng, shape, 0.1, 0.85)
		e := newEntity(rng, CategoryPhoto, ShapeCard,
			formed,
			ScatterPoint(rng, shape.ScatterRadius*0.7),
			Range{0.4, 0.8}, Range{1, 1})
		tilt := (rng.Float64() - 0.5) * 0.3
		e.Formed.Rotation = mgl64.Vec3{tilt, math.Atan2(formed[0], formed[2]), 0}
		e.Scatter.Rotation = RandomEuler(rng)
		e.Color = ColorWhite
		e.ImageID = p.ID
		e.ImageURL = p.URL
		out[i] = e
	}
	return out
}

// GenerateTopper returns the single star that crowns the tree.
func GenerateTopper(rng RandSource, shape TreeShape) []Entity {
	e := newEntity(rng, CategoryTopper, ShapeStar,
		shape.apex().Add(mgl64.Vec3{0, 0.4, 0}),
		ScatterPoint(rng, shape.ScatterRadius*0.5),
		Range{0.5, 0.5}, Range{1, 1})
	e.Scatter.Rotation = RandomEuler(rng)
	e.Color = Color{1, 0.85, 0.3, 1}
	return []Entity{e}
}
