package evergreen

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween/ease"
)

// GroupConfig controls how one group of entities animates.
type GroupConfig struct {
	// Name identifies the group within its Scene.
	Name     string
	Category Category
	// SmoothingRate is the MorphClock convergence rate per second.
	SmoothingRate float64
	// Easing is applied to the raw clock progress before blending. Nil blends
	// on raw progress.
	Easing ease.TweenFunc
	// ScatterScale and FormedScale are the group-wide scale factors at each end
	// of the morph. They multiply the entity's own per-state and intrinsic scale.
	ScatterScale float64
	FormedScale  float64
	// IdleAmplitude is the idle float amplitude in scene units when scattered.
	IdleAmplitude float64
	// FormedIdle is the fraction of IdleAmplitude kept once fully formed.
	FormedIdle float64
	// SpinRate is the scattered spin speed in radians per second.
	SpinRate float64
	// Focusable groups provide focus targets (photos).
	Focusable bool
	// Smoothed groups approach their computed targets at the focus blend rate
	// instead of snapping to them. Required for any group that can be focused
	// so that entering and leaving focus is continuous.
	Smoothed bool
}

// Group owns one entity population, its morph clock and its index-addressed
// output buffer. out[i] is always the transform of entities[i].
type Group struct {
	cfg      GroupConfig
	entities []Entity
	scatterQ []mgl64.Quat
	formedQ  []mgl64.Quat
	out      []InstanceTransform

	clock      MorphClock
	spin       float64
	time       float64
	generation int
	seeded     bool
}

// newGroup creates an empty group. Populate it with Regenerate.
func newGroup(cfg GroupConfig) *Group {
	if cfg.ScatterScale == 0 {
		cfg.ScatterScale = 1
	}
	if cfg.FormedScale == 0 {
		cfg.FormedScale = 1
	}
	if cfg.Focusable {
		cfg.Smoothed = true
	}
	return &Group{
		cfg:   cfg,
		clock: NewMorphClock(cfg.SmoothingRate),
	}
}

// Name returns the group's name.
func (g *Group) Name() string { return g.cfg.Name }

// Category returns the category of every entity in the group.
func (g *Group) Category() Category { return g.cfg.Category }

// Config returns a copy of the group's configuration.
func (g *Group) Config() GroupConfig { return g.cfg }

// Len returns the number of entities.
func (g *Group) Len() int { return len(g.entities) }

// Entity returns a copy of entity i.
func (g *Group) Entity(i int) Entity { return g.entities[i] }

// Entities returns the entity slice. The returned slice MUST NOT be mutated.
func (g *Group) Entities() []Entity { return g.entities }

// Instances returns the transforms computed by the latest tick. The returned
// slice is reused across ticks and MUST NOT be retained or mutated.
func (g *Group) Instances() []InstanceTransform { return g.out }

// Clock returns the group's morph clock.
func (g *Group) Clock() *MorphClock { return &g.clock }

// Generation counts how many times the entity set has been replaced.
func (g *Group) Generation() int { return g.generation }

// Uniforms returns the group-level values for shader-driven rendering.
func (g *Group) Uniforms(time float64) Uniforms {
	return Uniforms{
		Time:     time,
		Progress: g.clock.Progress(),
		Eased:    g.clock.EasedWith(g.cfg.Easing),
	}
}

// indexOf returns the index of the entity with the given image ID, or -1.
func (g *Group) indexOf(imageID string) int {
	for i := range g.entities {
		if g.entities[i].ImageID == imageID {
			return i
		}
	}
	return -1
}

// Regenerate replaces the entity set wholesale. The morph clock is kept, so
// new entities join at the group's current progress; the output buffer is
// seeded with their current unsmoothed transforms so nothing snaps from the
// origin. Entities whose ImageID survives keep their previous transform, so a
// smoothed group carries an in-flight approach (such as a focused photo
// moving to the camera) across the regeneration.
func (g *Group) Regenerate(entities []Entity) {
	var kept map[string]InstanceTransform
	if g.seeded {
		for i := range g.entities {
			if id := g.entities[i].ImageID; id != "" {
				if kept == nil {
					kept = make(map[string]InstanceTransform)
				}
				kept[id] = g.out[i]
			}
		}
	}

	g.entities = entities
	g.scatterQ = resize(g.scatterQ, len(entities))
	g.formedQ = resize(g.formedQ, len(entities))
	g.out = resize(g.out, len(entities))
	for i := range entities {
		g.scatterQ[i] = entities[i].Scatter.Quat()
		g.formedQ[i] = entities[i].Formed.Quat()
	}
	p := g.pose(g.time)
	for i := range entities {
		if prev, ok := kept[entities[i].ImageID]; ok {
			g.out[i] = prev
			continue
		}
		g.out[i] = g.compute(i, p)
	}
	g.generation++
}

func resize[T any](s []T, n int) []T {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]T, n)
}

// pose returns the shared per-frame animation parameters.
func (g *Group) pose(time float64) Pose {
	return Pose{
		Blend: g.clock.EasedWith(g.cfg.Easing),
		Time:  time,
		Spin:  g.spin,
	}
}

// update advances the clock by dt and recomputes every output transform.
// It reads only the group's own state and fc, so groups may update
// concurrently.
func (g *Group) update(dt float64, fc *frameContext) {
	g.clock.Advance(dt, fc.mode == ModeFormed)
	blend := g.clock.EasedWith(g.cfg.Easing)
	g.spin += dt * g.cfg.SpinRate * (1 - blend)
	g.time = fc.time

	p := g.pose(fc.time)
	alpha := approachAlpha(fc.blendRate, dt)
	focusIdx := -1
	if g.cfg.Focusable && fc.mode == ModeFocus {
		focusIdx = g.indexOf(fc.focusID)
	}

	for i := range g.entities {
		target := g.compute(i, p)
		if i == focusIdx {
			target = fc.focusTarget
		}
		if g.cfg.Smoothed && g.seeded {
			g.out[i] = Approach(g.out[i], target, alpha)
		} else {
			g.out[i] = target
		}
	}
	g.seeded = true
}

// compute is ComputeTransform with the cached quaternions of entity i.
func (g *Group) compute(i int, p Pose) InstanceTransform {
	return computeTransform(&g.entities[i], &g.cfg, p, g.scatterQ[i], g.formedQ[i])
}
