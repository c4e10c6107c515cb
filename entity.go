package evergreen

// Entity is a dual-position element: two fixed target transforms plus the
// intrinsic randomization chosen at generation time. Entities are created in
// batches and replaced wholesale; nothing mutates one after creation.
type Entity struct {
	// ID is unique within a Scene for the lifetime of the entity.
	ID uint32
	// Category and Shape describe what the render collaborator should draw.
	Category Category
	Shape    Shape

	// Formed is the target in ModeFormed; Scatter is the target otherwise.
	// Their Scale fields are the per-state scale factors.
	Formed  Transform
	Scatter Transform

	// PhaseSpeed multiplies the idle float and spin animation. Always > 0.
	PhaseSpeed float64
	// Seed desynchronizes idle motion between entities.
	Seed float64
	// Scale is the intrinsic scale applied on top of the per-state factor.
	Scale float64

	Color Color

	// ImageID and ImageURL are set for photo entities only. ImageID is the
	// focus identifier and survives regeneration.
	ImageID  string
	ImageURL string
}

// Material selects an ornament palette. Each material is its own group.
type Material uint8

const (
	MaterialGold Material = iota
	MaterialRed
	MaterialSilver
)

// Materials lists every ornament material in group order.
var Materials = []Material{MaterialGold, MaterialRed, MaterialSilver}

// String returns the lower-case name of the material.
func (m Material) String() string {
	switch m {
	case MaterialGold:
		return "gold"
	case MaterialRed:
		return "red"
	case MaterialSilver:
		return "silver"
	default:
		return "unknown"
	}
}

// palette returns the base colors an ornament of this material picks from.
func (m Material) palette() []Color {
	switch m {
	case MaterialGold:
		return []Color{{1.0, 0.84, 0.0, 1}, {0.93, 0.72, 0.2, 1}, {1.0, 0.9, 0.5, 1}}
	case MaterialRed:
		return []Color{{0.8, 0.05, 0.1, 1}, {0.65, 0.0, 0.05, 1}, {0.95, 0.2, 0.25, 1}}
	default:
		return []Color{{0.85, 0.87, 0.9, 1}, {0.75, 0.78, 0.82, 1}, {0.95, 0.95, 1.0, 1}}
	}
}
