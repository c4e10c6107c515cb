package evergreen

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween/ease"
)

var worldUp = mgl64.Vec3{0, 1, 0}

// Camera is a perspective camera. It looks down its local -Z axis with +Y up.
type Camera struct {
	// Position is the camera's world-space position.
	Position mgl64.Vec3
	// Orientation is the camera's world-space rotation.
	Orientation mgl64.Quat
	// FovY is the vertical field of view in radians.
	FovY float64
	// Near and Far are the clip plane distances.
	Near, Far float64
	// Viewport is the screen-space rectangle this camera renders into.
	Viewport Rect

	lookTarget mgl64.Vec3
	tracking   bool
	move       *TweenGroup
}

// NewCamera creates a camera at a default vantage point looking at the origin.
func NewCamera(viewport Rect) *Camera {
	c := &Camera{
		Position:    mgl64.Vec3{0, 2, 30},
		Orientation: mgl64.QuatIdent(),
		FovY:        mgl64.DegToRad(45),
		Near:        0.1,
		Far:         200,
		Viewport:    viewport,
	}
	c.LookAt(mgl64.Vec3{})
	return c
}

// LookAt orients the camera toward target, keeping world +Y up where possible.
func (c *Camera) LookAt(target mgl64.Vec3) {
	c.Orientation = lookRotation(target.Sub(c.Position), worldUp)
}

// Track keeps the camera looking at target while it moves.
func (c *Camera) Track(target mgl64.Vec3) {
	c.lookTarget = target
	c.tracking = true
	c.LookAt(target)
}

// Untrack stops re-aiming the camera after moves.
func (c *Camera) Untrack() {
	c.tracking = false
}

// Orbit places the camera distance units from target at the given yaw and
// pitch (radians) and aims it at target.
func (c *Camera) Orbit(target mgl64.Vec3, distance, yaw, pitch float64) {
	sy, cy := math.Sincos(yaw)
	sp, cp := math.Sincos(pitch)
	c.Position = target.Add(mgl64.Vec3{sy * cp, sp, cy * cp}.Mul(distance))
	c.LookAt(target)
}

// MoveTo animates the camera to pos over duration seconds.
func (c *Camera) MoveTo(pos mgl64.Vec3, duration float32, easeFn ease.TweenFunc) {
	c.move = TweenCamera(c, pos, duration, easeFn)
}

// Moving reports whether a MoveTo animation is in progress.
func (c *Camera) Moving() bool {
	return c.move != nil
}

// update advances MoveTo and tracking. Called from Scene.Tick.
func (c *Camera) update(dt float64) {
	if c.move != nil {
		c.move.Update(float32(dt))
		if c.move.Done {
			c.move = nil
		}
	}
	if c.tracking {
		c.LookAt(c.lookTarget)
	}
}

// Forward returns the unit direction the camera looks along.
func (c *Camera) Forward() mgl64.Vec3 {
	return c.Orientation.Rotate(mgl64.Vec3{0, 0, -1})
}

// Up returns the camera's unit up direction.
func (c *Camera) Up() mgl64.Vec3 {
	return c.Orientation.Rotate(worldUp)
}

// Right returns the camera's unit right direction.
func (c *Camera) Right() mgl64.Vec3 {
	return c.Orientation.Rotate(mgl64.Vec3{1, 0, 0})
}

// ViewMatrix returns the world-to-camera matrix.
func (c *Camera) ViewMatrix() mgl64.Mat4 {
	p := c.Position
	return c.Orientation.Inverse().Mat4().Mul4(mgl64.Translate3D(-p[0], -p[1], -p[2]))
}

// aspect returns the viewport aspect ratio, or 1 for an empty viewport.
func (c *Camera) aspect() float64 {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return 1
	}
	return c.Viewport.Width / c.Viewport.Height
}

// ProjectionMatrix returns the perspective projection for the viewport.
func (c *Camera) ProjectionMatrix() mgl64.Mat4 {
	return mgl64.Perspective(c.FovY, c.aspect(), c.Near, c.Far)
}

// ViewProjection returns ProjectionMatrix * ViewMatrix.
func (c *Camera) ViewProjection() mgl64.Mat4 {
	return c.ProjectionMatrix().Mul4(c.ViewMatrix())
}

// Project converts a world-space point to viewport pixel coordinates. depth is
// the distance along the view direction. ok is false for points behind the
// camera.
func (c *Camera) Project(world mgl64.Vec3) (sx, sy, depth float64, ok bool) {
	return projectWith(c.ViewProjection(), c.Viewport, world)
}

// projectWith projects using a precomputed view-projection, for callers that
// project many points per frame.
func projectWith(vp mgl64.Mat4, viewport Rect, world mgl64.Vec3) (sx, sy, depth float64, ok bool) {
	clip := vp.Mul4x1(world.Vec4(1))
	w := clip.W()
	if w <= 1e-9 {
		return 0, 0, 0, false
	}
	nx := clip.X() / w
	ny := clip.Y() / w
	sx = viewport.X + (nx+1)/2*viewport.Width
	sy = viewport.Y + (1-ny)/2*viewport.Height
	return sx, sy, w, true
}

// Projector projects many points against one camera snapshot.
type Projector struct {
	vp       mgl64.Mat4
	viewport Rect
}

// Projector captures the camera's current view-projection.
func (c *Camera) Projector() Projector {
	return Projector{vp: c.ViewProjection(), viewport: c.Viewport}
}

// Project is Camera.Project against the captured snapshot.
func (p Projector) Project(world mgl64.Vec3) (sx, sy, depth float64, ok bool) {
	return projectWith(p.vp, p.viewport, world)
}

// lookRotation returns the orientation whose -Z axis points along dir and
// whose +Y axis is as close to up as possible.
func lookRotation(dir, up mgl64.Vec3) mgl64.Quat {
	if dir.Len() < 1e-12 {
		return mgl64.QuatIdent()
	}
	back := dir.Normalize().Mul(-1)
	right := up.Cross(back)
	if right.Len() < 1e-9 {
		// Looking straight up or down; pick any perpendicular right axis.
		right = mgl64.Vec3{1, 0, 0}.Cross(back)
	}
	right = right.Normalize()
	camUp := back.Cross(right)
	m := mgl64.Mat4{
		right[0], right[1], right[2], 0,
		camUp[0], camUp[1], camUp[2], 0,
		back[0], back[1], back[2], 0,
		0, 0, 0, 1,
	}
	return mgl64.Mat4ToQuat(m).Normalize()
}
