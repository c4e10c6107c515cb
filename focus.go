package evergreen

// FocusConfig controls the camera-locked view of a focused photo.
type FocusConfig struct {
	// MinZoom and MaxZoom bound the distance from the camera in scene units.
	MinZoom float64 `toml:"min_zoom"`
	MaxZoom float64 `toml:"max_zoom"`
	// DefaultZoom is the distance restored every time focus is entered.
	DefaultZoom float64 `toml:"default_zoom"`
	// Scale is the enlarged scale of the focused entity.
	Scale float64 `toml:"scale"`
	// BlendRate is the fraction of the remaining distance covered per 60 Hz
	// frame when smoothed entities approach their targets.
	BlendRate float64 `toml:"blend_rate"`
}

// DefaultFocusConfig returns the focus settings used by DefaultConfig.
func DefaultFocusConfig() FocusConfig {
	return FocusConfig{MinZoom: 5, MaxZoom: 40, DefaultZoom: 12, Scale: 2.5, BlendRate: 0.1}
}

// FocusController owns the zoom distance of focus mode and computes where the
// focused entity should be.
type FocusController struct {
	cfg  FocusConfig
	zoom float64
}

// NewFocusController returns a controller at the default zoom.
func NewFocusController(cfg FocusConfig) *FocusController {
	f := &FocusController{cfg: cfg}
	f.Reset()
	return f
}

// Zoom returns the current distance from the camera.
func (f *FocusController) Zoom() float64 {
	return f.zoom
}

// AdjustZoom adds delta to the zoom distance, clamped to [MinZoom, MaxZoom].
func (f *FocusController) AdjustZoom(delta float64) {
	f.zoom = clamp(f.zoom+delta, f.cfg.MinZoom, f.cfg.MaxZoom)
}

// Reset restores the default zoom distance.
func (f *FocusController) Reset() {
	f.zoom = clamp(f.cfg.DefaultZoom, f.cfg.MinZoom, f.cfg.MaxZoom)
}

// BlendRate returns the per-frame approach rate.
func (f *FocusController) BlendRate() float64 {
	return f.cfg.BlendRate
}

// Target returns the focused entity's transform in parent's coordinates: zoom
// units in front of the camera, with the camera's orientation so the entity
// appears camera-locked whatever the parent's rotation.
func (f *FocusController) Target(cam *Camera, parent Frame) InstanceTransform {
	world := cam.Position.Add(cam.Forward().Mul(f.zoom))
	return InstanceTransform{
		Position: parent.ToLocal(world),
		Rotation: parent.LocalRotation(cam.Orientation),
		Scale:    f.cfg.Scale / parent.scale(),
	}
}

// WorldTarget is Target expressed in world space.
func (f *FocusController) WorldTarget(cam *Camera) InstanceTransform {
	return InstanceTransform{
		Position: cam.Position.Add(cam.Forward().Mul(f.zoom)),
		Rotation: cam.Orientation,
		Scale:    f.cfg.Scale,
	}
}
