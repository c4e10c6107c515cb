package evergreen

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// minRadialBias is the fraction of the per-height cone radius below which
// TreePoint never places a point.
const minRadialBias = 0.2

// ScatterPoint returns a point uniformly distributed by volume inside a sphere
// of the given radius centered on the origin.
func ScatterPoint(rng RandSource, radius float64) mgl64.Vec3 {
	theta := rng.Float64() * 2 * math.Pi
	phi := math.Acos(2*rng.Float64() - 1)
	r := radius * math.Cbrt(rng.Float64())

	sinPhi, cosPhi := math.Sincos(phi)
	sinTheta, cosTheta := math.Sincos(theta)
	return mgl64.Vec3{
		r * sinPhi * cosTheta,
		r * sinPhi * sinTheta,
		r * cosPhi,
	}
}

// TreePoint returns a point inside a cone whose base of radius baseRadius sits
// at y = yOffset and whose apex is at y = yOffset + height. The radial distance
// is sqrt-uniform between 20% and 100% of the cone radius at that height.
func TreePoint(rng RandSource, height, baseRadius, yOffset float64) mgl64.Vec3 {
	if height <= 0 {
		return mgl64.Vec3{0, yOffset, 0}
	}
	h := rng.Float64() * height
	maxR := baseRadius * (1 - h/height)
	r := maxR * (minRadialBias + (1-minRadialBias)*math.Sqrt(rng.Float64()))
	return polarPoint(rng, r, h+yOffset)
}

// surfacePoint is TreePoint restricted to the outer shell of the cone (85-100%
// of the radius) so that cards and bulbs sit on the visible surface. hMin and
// hMax bound the normalized height band.
func surfacePoint(rng RandSource, shape TreeShape, hMin, hMax float64) mgl64.Vec3 {
	if shape.Height <= 0 {
		return mgl64.Vec3{0, shape.YOffset, 0}
	}
	h := (hMin + rng.Float64()*(hMax-hMin)) * shape.Height
	maxR := shape.BaseRadius * (1 - h/shape.Height)
	r := maxR * (0.85 + 0.15*rng.Float64())
	return polarPoint(rng, r, h+shape.YOffset)
}

func polarPoint(rng RandSource, r, y float64) mgl64.Vec3 {
	sin, cos := math.Sincos(rng.Float64() * 2 * math.Pi)
	return mgl64.Vec3{r * cos, y, r * sin}
}

// RandomEuler returns XYZ Euler angles uniformly drawn from [0, 2π) per axis.
func RandomEuler(rng RandSource) mgl64.Vec3 {
	return mgl64.Vec3{
		rng.Float64() * 2 * math.Pi,
		rng.Float64() * 2 * math.Pi,
		rng.Float64() * 2 * math.Pi,
	}
}
