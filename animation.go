package evergreen

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 fields simultaneously. Create one via
// the convenience constructors (TweenCamera, TweenRig, TweenZoom) and call
// Update(dt) each frame. The group writes values straight into the fields.
//
// There is no global animation manager; owners call Update themselves.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	Done   bool
}

func (g *TweenGroup) add(field *float64, to float64, duration float32, fn ease.TweenFunc) {
	g.tweens[g.count] = gween.New(float32(*field), float32(to), duration, fn)
	g.fields[g.count] = field
	g.count++
}

// Update advances all tweens by dt seconds and writes values to the fields.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

// TweenCamera creates a TweenGroup that moves cam.Position to pos.
func TweenCamera(cam *Camera, pos mgl64.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	for i := range 3 {
		g.add(&cam.Position[i], pos[i], duration, fn)
	}
	return g
}

// TweenRig creates a TweenGroup that turns the rig to the given yaw and pitch.
func TweenRig(r *Rig, yaw, pitch float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	g.add(&r.Yaw, yaw, duration, fn)
	g.add(&r.Pitch, pitch, duration, fn)
	return g
}

// TweenZoom creates a TweenGroup that eases the focus distance to zoom,
// clamped to the controller's bounds.
func TweenZoom(f *FocusController, zoom float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	g.add(&f.zoom, clamp(zoom, f.cfg.MinZoom, f.cfg.MaxZoom), duration, fn)
	return g
}
