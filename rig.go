package evergreen

import (
	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween/ease"
)

// RigConfig controls the whole-group orientation that every entity sits under.
type RigConfig struct {
	// AutoRotateSpeed is the yaw speed in radians per second while formed.
	AutoRotateSpeed float64 `toml:"auto_rotate_speed"`
	// LevelRate is how fast pitch returns to level while formed, per second.
	LevelRate float64 `toml:"level_rate"`
	// RecenterDuration is how long the recenter to identity takes on entering
	// focus, in seconds.
	RecenterDuration float64 `toml:"recenter_duration"`
	// SpringFrequency and SpringDamping shape how the scattered rig follows
	// the rotation-control signal.
	SpringFrequency float64 `toml:"spring_frequency"`
	SpringDamping   float64 `toml:"spring_damping"`
}

// DefaultRigConfig returns the rig settings used by DefaultConfig.
func DefaultRigConfig() RigConfig {
	return RigConfig{
		AutoRotateSpeed:  0.25,
		LevelRate:        2,
		RecenterDuration: 0.8,
		SpringFrequency:  4,
		SpringDamping:    1,
	}
}

// Rig is the parent orientation of all groups: yaw about world Y, then pitch
// about the rig's X axis.
type Rig struct {
	Yaw, Pitch float64
	Origin     mgl64.Vec3

	cfg      RigConfig
	yawVel   float64
	pitchVel float64
	recenter *TweenGroup
	mode     Mode
	started  bool
}

// NewRig returns a level rig at the origin.
func NewRig(cfg RigConfig) *Rig {
	return &Rig{cfg: cfg}
}

// Frame returns the rig's current parent frame.
func (r *Rig) Frame() Frame {
	rot := mgl64.QuatRotate(r.Yaw, mgl64.Vec3{0, 1, 0}).
		Mul(mgl64.QuatRotate(r.Pitch, mgl64.Vec3{1, 0, 0}))
	return Frame{Origin: r.Origin, Rotation: rot.Normalize(), Scale: 1}
}

// Recentering reports whether the focus recenter animation is running.
func (r *Rig) Recentering() bool {
	return r.recenter != nil
}

// update advances the rig by dt for the given mode. control is the
// rotation-control signal, used only while scattered.
func (r *Rig) update(dt float64, mode Mode, control Vec2) {
	if !r.started || mode != r.mode {
		r.enter(mode)
	}
	if dt <= 0 {
		return
	}

	switch mode {
	case ModeFormed:
		r.Yaw = wrapAngle(r.Yaw + r.cfg.AutoRotateSpeed*dt)
		r.Pitch += (0 - r.Pitch) * clamp(r.cfg.LevelRate*dt, 0, 1)
		r.yawVel, r.pitchVel = 0, 0

	case ModeFocus:
		if r.recenter == nil {
			return
		}
		r.recenter.Update(float32(dt))
		if r.recenter.Done {
			r.Yaw, r.Pitch = 0, 0
			r.recenter = nil
		}

	case ModeScattered:
		spring := harmonica.NewSpring(dt, r.cfg.SpringFrequency, r.cfg.SpringDamping)
		r.Yaw, r.yawVel = spring.Update(r.Yaw, r.yawVel, control.X)
		r.Pitch, r.pitchVel = spring.Update(r.Pitch, r.pitchVel, control.Y)
	}
}

// enter handles a mode switch. Yaw is wrapped so that neither the spring nor
// the recenter tween unwinds turns accumulated by auto-rotation.
func (r *Rig) enter(mode Mode) {
	r.started = true
	r.mode = mode
	r.Yaw = wrapAngle(r.Yaw)
	r.recenter = nil
	if mode != ModeFocus {
		return
	}
	d := float32(r.cfg.RecenterDuration)
	if d <= 0 {
		r.Yaw, r.Pitch = 0, 0
		return
	}
	r.yawVel, r.pitchVel = 0, 0
	r.recenter = TweenRig(r, 0, 0, d, ease.OutCubic)
}
