package evergreen

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/tanema/gween/ease"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("evergreen: invalid config")

// Population holds the entity count per category. Ornaments is per material.
type Population struct {
	Foliage   int `toml:"foliage"`
	Ornaments int `toml:"ornaments"`
	Gifts     int `toml:"gifts"`
	Lights    int `toml:"lights"`
}

// MorphConfig holds the per-category morph smoothing rates, per second.
type MorphConfig struct {
	// SmoothingRate applies to every group without its own rate.
	SmoothingRate float64 `toml:"smoothing_rate"`
	// FoliageRate is slower so the needle cloud trails the ornaments.
	FoliageRate float64 `toml:"foliage_rate"`
	PhotoRate   float64 `toml:"photo_rate"`
}

// IdleConfig controls idle motion for every group.
type IdleConfig struct {
	// Amplitude is the scattered float amplitude in scene units.
	Amplitude float64 `toml:"amplitude"`
	// FormedFactor is the fraction of Amplitude that remains once formed.
	FormedFactor float64 `toml:"formed_factor"`
	// SpinRate is the scattered spin speed in radians per second.
	SpinRate float64 `toml:"spin_rate"`
}

// Config holds all tunables for a Scene. NewScene replaces zero-valued fields
// with the value from DefaultConfig, so a partially set section keeps the
// defaults for everything it leaves out.
type Config struct {
	Population Population    `toml:"population"`
	Tree       TreeShape     `toml:"tree"`
	Morph      MorphConfig   `toml:"morph"`
	Idle       IdleConfig    `toml:"idle"`
	Gesture    GestureConfig `toml:"gesture"`
	Focus      FocusConfig   `toml:"focus"`
	Rig        RigConfig     `toml:"rig"`

	// MaxFrameDelta caps dt in Tick, in seconds.
	MaxFrameDelta float64 `toml:"max_frame_delta"`
	// Parallel evaluates groups concurrently.
	Parallel bool `toml:"parallel"`
	// Photos are the initial photo cards.
	Photos []Photo `toml:"photos"`

	// Rand seeds every generator and the focus picker. Nil uses DefaultRand.
	Rand RandSource `toml:"-"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Population: Population{Foliage: 6000, Ornaments: 200, Gifts: 60, Lights: 300},
		Tree:       DefaultTreeShape(),
		Morph:      MorphConfig{SmoothingRate: 2.0, FoliageRate: 1.5, PhotoRate: 2.0},
		Idle:       IdleConfig{Amplitude: 0.35, FormedFactor: 0.02, SpinRate: 0.8},
		Gesture:    DefaultGestureConfig(),
		Focus:      DefaultFocusConfig(),
		Rig:        DefaultRigConfig(),

		MaxFrameDelta: 0.1,
	}
}

// LoadConfig parses TOML over DefaultConfig and validates the result.
// Unknown keys are rejected.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var missing *toml.StrictMissingError
		if errors.As(err, &missing) {
			return Config{}, fmt.Errorf("parse config: %s", missing.String())
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// withDefaults fills zero-valued fields from DefaultConfig. Population counts
// are left alone; zero is a valid count. Fields where zero is meaningful
// (Tree.YOffset, Idle, Rig.AutoRotateSpeed) only take their defaults when the
// whole section is unset.
func (c Config) withDefaults() Config {
	d := DefaultConfig()

	if c.Tree == (TreeShape{}) {
		c.Tree = d.Tree
	}
	if c.Tree.Height <= 0 {
		c.Tree.Height = d.Tree.Height
	}
	if c.Tree.BaseRadius <= 0 {
		c.Tree.BaseRadius = d.Tree.BaseRadius
	}
	if c.Tree.ScatterRadius <= 0 {
		c.Tree.ScatterRadius = d.Tree.ScatterRadius
	}

	if c.Morph.SmoothingRate <= 0 {
		c.Morph.SmoothingRate = d.Morph.SmoothingRate
	}
	if c.Morph.FoliageRate <= 0 {
		c.Morph.FoliageRate = c.Morph.SmoothingRate
	}
	if c.Morph.PhotoRate <= 0 {
		c.Morph.PhotoRate = c.Morph.SmoothingRate
	}

	if c.Idle == (IdleConfig{}) {
		c.Idle = d.Idle
	}

	g := &c.Gesture
	if g.FistThreshold <= 0 {
		g.FistThreshold = d.Gesture.FistThreshold
	}
	if g.OpenThreshold <= 0 {
		g.OpenThreshold = max(d.Gesture.OpenThreshold, 2*g.FistThreshold)
	}
	if g.PinchThreshold <= 0 {
		g.PinchThreshold = d.Gesture.PinchThreshold
	}
	if g.RotationRange <= 0 {
		g.RotationRange = d.Gesture.RotationRange
	}
	if g.StableFrames < 1 {
		g.StableFrames = d.Gesture.StableFrames
	}

	f := &c.Focus
	if f.MinZoom <= 0 {
		f.MinZoom = d.Focus.MinZoom
	}
	if f.MaxZoom <= 0 {
		f.MaxZoom = max(d.Focus.MaxZoom, 2*f.MinZoom)
	}
	if f.DefaultZoom <= 0 {
		f.DefaultZoom = d.Focus.DefaultZoom
	}
	if f.Scale <= 0 {
		f.Scale = d.Focus.Scale
	}
	if f.BlendRate <= 0 {
		f.BlendRate = d.Focus.BlendRate
	}

	if c.Rig == (RigConfig{}) {
		c.Rig = d.Rig
	}
	r := &c.Rig
	if r.LevelRate <= 0 {
		r.LevelRate = d.Rig.LevelRate
	}
	if r.RecenterDuration <= 0 {
		r.RecenterDuration = d.Rig.RecenterDuration
	}
	if r.SpringFrequency <= 0 {
		r.SpringFrequency = d.Rig.SpringFrequency
	}
	if r.SpringDamping <= 0 {
		r.SpringDamping = d.Rig.SpringDamping
	}

	if c.MaxFrameDelta <= 0 {
		c.MaxFrameDelta = d.MaxFrameDelta
	}
	if c.Rand == nil {
		c.Rand = DefaultRand
	}
	return c
}

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	p := c.Population
	switch {
	case p.Foliage < 0 || p.Ornaments < 0 || p.Gifts < 0 || p.Lights < 0:
		return fmt.Errorf("%w: population counts must be >= 0", ErrInvalidConfig)
	case c.Tree.Height <= 0 || c.Tree.BaseRadius <= 0 || c.Tree.ScatterRadius <= 0:
		return fmt.Errorf("%w: tree dimensions must be > 0", ErrInvalidConfig)
	case c.Focus.MinZoom <= 0 || c.Focus.MinZoom >= c.Focus.MaxZoom:
		return fmt.Errorf("%w: zoom bounds [%g, %g]", ErrInvalidConfig, c.Focus.MinZoom, c.Focus.MaxZoom)
	case c.Focus.BlendRate <= 0 || c.Focus.BlendRate > 1:
		return fmt.Errorf("%w: focus blend rate %g not in (0, 1]", ErrInvalidConfig, c.Focus.BlendRate)
	case c.Gesture.FistThreshold <= 0 || c.Gesture.FistThreshold >= c.Gesture.OpenThreshold:
		return fmt.Errorf("%w: fist threshold %g must be below open threshold %g",
			ErrInvalidConfig, c.Gesture.FistThreshold, c.Gesture.OpenThreshold)
	case c.Gesture.PinchThreshold <= 0:
		return fmt.Errorf("%w: pinch threshold must be > 0", ErrInvalidConfig)
	case c.Morph.SmoothingRate < 0 || c.Morph.FoliageRate < 0 || c.Morph.PhotoRate < 0:
		return fmt.Errorf("%w: smoothing rates must be >= 0", ErrInvalidConfig)
	case c.Idle.Amplitude < 0 || c.Idle.FormedFactor < 0 || c.Idle.FormedFactor > 1:
		return fmt.Errorf("%w: idle amplitude %g, formed factor %g", ErrInvalidConfig, c.Idle.Amplitude, c.Idle.FormedFactor)
	case c.MaxFrameDelta < 0:
		return fmt.Errorf("%w: max frame delta must be >= 0", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Photos))
	for _, ph := range c.Photos {
		if ph.ID == "" {
			return fmt.Errorf("%w: photo with empty id", ErrInvalidConfig)
		}
		if seen[ph.ID] {
			return fmt.Errorf("%w: duplicate photo id %q", ErrInvalidConfig, ph.ID)
		}
		seen[ph.ID] = true
	}
	return nil
}

// groupSpec is one group the scene builds, with its generator.
type groupSpec struct {
	cfg      GroupConfig
	generate func(rng RandSource) []Entity
}

// groupSpecs lists every group in creation order.
func (c Config) groupSpecs() []groupSpec {
	idle := func(g GroupConfig) GroupConfig {
		g.IdleAmplitude = c.Idle.Amplitude
		g.FormedIdle = c.Idle.FormedFactor
		g.SpinRate = c.Idle.SpinRate
		if g.SmoothingRate == 0 {
			g.SmoothingRate = c.Morph.SmoothingRate
		}
		return g
	}
	tree := c.Tree

	specs := []groupSpec{{
		cfg: GroupConfig{
			Name: GroupFoliage, Category: CategoryFoliage,
			SmoothingRate: c.Morph.FoliageRate, Easing: ease.InOutCubic,
			IdleAmplitude: c.Idle.Amplitude * 0.5, FormedIdle: c.Idle.FormedFactor,
		},
		generate: func(rng RandSource) []Entity { return GenerateFoliage(rng, c.Population.Foliage, tree) },
	}}
	for _, m := range Materials {
		specs = append(specs, groupSpec{
			cfg: idle(GroupConfig{Name: OrnamentGroup(m), Category: CategoryOrnament}),
			generate: func(rng RandSource) []Entity {
				return GenerateOrnaments(rng, c.Population.Ornaments, tree, m)
			},
		})
	}
	specs = append(specs,
		groupSpec{
			cfg:      idle(GroupConfig{Name: GroupGifts, Category: CategoryGift, ScatterScale: 0.6}),
			generate: func(rng RandSource) []Entity { return GenerateGifts(rng, c.Population.Gifts, tree) },
		},
		groupSpec{
			cfg:      idle(GroupConfig{Name: GroupLights, Category: CategoryLight, ScatterScale: 0.5}),
			generate: func(rng RandSource) []Entity { return GenerateLights(rng, c.Population.Lights, tree) },
		},
		groupSpec{
			cfg:      idle(GroupConfig{Name: GroupTopper, Category: CategoryTopper}),
			generate: func(rng RandSource) []Entity { return GenerateTopper(rng, tree) },
		},
		groupSpec{
			cfg: idle(GroupConfig{
				Name: GroupPhotos, Category: CategoryPhoto,
				SmoothingRate: c.Morph.PhotoRate, Focusable: true,
			}),
			generate: func(rng RandSource) []Entity { return GeneratePhotos(rng, c.Photos, tree) },
		},
	)
	return specs
}
