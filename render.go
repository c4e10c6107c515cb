package evergreen

import (
	"github.com/chewxy/math32"
)

// RenderSink is the render collaborator. GroupCreated is called once per
// group, and again after each regeneration, so the sink can read the static
// per-entity Color and Shape. SubmitFrame is called once per group per tick.
// instances is index-aligned with g.Entities(), expressed in the parent frame
// (see Scene.ParentFrame), and reused by the next tick.
type RenderSink interface {
	GroupCreated(g *Group)
	SubmitFrame(g *Group, instances []InstanceTransform, u Uniforms)
}

// Uniforms are the group-level values a shader-driven group needs.
type Uniforms struct {
	// Time is the scene's elapsed time in seconds.
	Time float64
	// Progress is the raw morph progress; Eased is after the group's easing.
	Progress float64
	Eased    float64
}

// uniformTimeWrap bounds the packed time so float32 keeps millisecond
// precision in long sessions. It is a multiple of 2π.
const uniformTimeWrap = 2 * math32.Pi * 1000

// PackedUniforms is Uniforms laid out for a float32 uniform buffer.
type PackedUniforms [4]float32

// Pack converts u to float32 with time wrapped to uniformTimeWrap. The fourth
// slot holds 1-Eased, the idle-motion weight.
func (u Uniforms) Pack() PackedUniforms {
	t := math32.Mod(float32(u.Time), uniformTimeWrap)
	if t < 0 {
		t += uniformTimeWrap
	}
	eased := math32.Min(math32.Max(float32(u.Eased), 0), 1)
	return PackedUniforms{t, float32(u.Progress), eased, 1 - eased}
}

// PackInstances appends a column-major float32 model matrix per instance to
// dst and returns the extended slice.
func PackInstances(dst []float32, instances []InstanceTransform) []float32 {
	for i := range instances {
		m := instances[i].Matrix()
		for _, v := range m {
			dst = append(dst, float32(v))
		}
	}
	return dst
}

// sinkNop is the RenderSink used when none is set.
type sinkNop struct{}

func (sinkNop) GroupCreated(*Group) {}

func (sinkNop) SubmitFrame(*Group, []InstanceTransform, Uniforms) {}
