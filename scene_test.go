package evergreen

import (
	"context"
	"errors"
	"math"
	"testing"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Population = Population{Foliage: 50, Ornaments: 10, Gifts: 5, Lights: 10}
	cfg.Photos = []Photo{{ID: "a", URL: "a.jpg"}, {ID: "b", URL: "b.jpg"}, {ID: "c", URL: "c.jpg"}}
	cfg.Rand = newTestRand(1)
	return cfg
}

func newTestScene(t testing.TB) *Scene {
	t.Helper()
	return NewScene(testConfig())
}

func tickN(s *Scene, n int) {
	for range n {
		s.Tick(1.0 / 60)
	}
}

// recordingEvents collects every emitted ModeEvent.
type recordingEvents struct {
	events []ModeEvent
}

func (r *recordingEvents) EmitEvent(ev ModeEvent) { r.events = append(r.events, ev) }

func (r *recordingEvents) last() ModeEvent {
	if len(r.events) == 0 {
		return ModeEvent{}
	}
	return r.events[len(r.events)-1]
}

func photoIndex(t *testing.T, g *Group, id string) int {
	t.Helper()
	for i, e := range g.Entities() {
		if e.ImageID == id {
			return i
		}
	}
	t.Fatalf("no photo %q in group %q", id, g.Name())
	return -1
}

// ---- Construction ----------------------------------------------------------

func TestNewSceneGroups(t *testing.T) {
	s := newTestScene(t)
	if len(s.Groups()) != 8 {
		t.Fatalf("len(Groups) = %d, want 8", len(s.Groups()))
	}
	if s.Mode() != ModeScattered {
		t.Errorf("initial mode = %v, want scattered", s.Mode())
	}
	counts := map[string]int{
		GroupFoliage:                50,
		OrnamentGroup(MaterialGold): 10,
		OrnamentGroup(MaterialRed):  10,
		GroupGifts:                  5,
		GroupLights:                 10,
		GroupTopper:                 1,
		GroupPhotos:                 3,
	}
	for name, want := range counts {
		g := s.Group(name)
		if g == nil {
			t.Errorf("missing group %q", name)
			continue
		}
		if g.Len() != want || len(g.Instances()) != want {
			t.Errorf("group %q: Len = %d, instances = %d, want %d", name, g.Len(), len(g.Instances()), want)
		}
	}
	if len(s.Focusables()) != 3 {
		t.Errorf("Focusables = %v", s.Focusables())
	}
}

func TestNewSceneUniqueIDs(t *testing.T) {
	s := newTestScene(t)
	seen := make(map[uint32]bool)
	for _, g := range s.Groups() {
		for _, e := range g.Entities() {
			if e.ID == 0 || seen[e.ID] {
				t.Fatalf("entity id %d reused or zero in %q", e.ID, g.Name())
			}
			seen[e.ID] = true
		}
	}
}

// ---- Morph -----------------------------------------------------------------

func TestScene_FormedConverges(t *testing.T) {
	cfg := testConfig()
	cfg.Population = Population{Ornaments: 200}
	cfg.Photos = nil
	s := NewScene(cfg)

	s.SetMode(ModeFormed)
	tickN(s, 300) // five seconds

	for _, m := range Materials {
		g := s.Group(OrnamentGroup(m))
		if p := g.Clock().Progress(); p <= 0.95 {
			t.Errorf("%s progress = %f, want > 0.95", g.Name(), p)
		}
		inst := g.Instances()
		for i, e := range g.Entities() {
			if d := inst[i].Position.Sub(e.Formed.Position).Len(); d > 0.05 {
				t.Fatalf("%s[%d] is %f from its formed position", g.Name(), i, d)
			}
		}
	}
}

func TestScene_ScatterReturns(t *testing.T) {
	s := newTestScene(t)
	s.SetMode(ModeFormed)
	tickN(s, 300)
	s.SetMode(ModeScattered)
	tickN(s, 300)
	for _, g := range s.Groups() {
		if p := g.Clock().Progress(); p > 0.05 {
			t.Errorf("%s progress = %f after scattering, want ~0", g.Name(), p)
		}
	}
}

func TestScene_FrameDeltaClamped(t *testing.T) {
	s := newTestScene(t)
	s.Tick(10)
	assertNear(t, "elapsed", s.Elapsed(), DefaultConfig().MaxFrameDelta)
	s.Tick(-1)
	assertNear(t, "elapsed", s.Elapsed(), DefaultConfig().MaxFrameDelta)
	if s.Ticks() != 2 {
		t.Errorf("Ticks = %d, want 2", s.Ticks())
	}

	s.SetMode(ModeFormed)
	s.Tick(1000)
	for _, g := range s.Groups() {
		if p := g.Clock().Progress(); p < 0 || p > 1 {
			t.Errorf("%s progress %f out of range", g.Name(), p)
		}
	}
}

func TestScene_ParallelMatchesSequential(t *testing.T) {
	seq := NewScene(testConfig())
	cfg := testConfig()
	cfg.Parallel = true
	par := NewScene(cfg)

	for _, s := range []*Scene{seq, par} {
		s.SetMode(ModeFormed)
		tickN(s, 30)
		s.Toggle()
		tickN(s, 30)
	}
	for i, g := range seq.Groups() {
		a, b := g.Instances(), par.Groups()[i].Instances()
		for j := range a {
			if a[j] != b[j] {
				t.Fatalf("%s[%d] differs: %v vs %v", g.Name(), j, a[j], b[j])
			}
		}
	}
}

// ---- Commands --------------------------------------------------------------

func TestScene_Toggle(t *testing.T) {
	s := newTestScene(t)
	s.Toggle()
	s.Tick(1.0 / 60)
	if s.Mode() != ModeFormed {
		t.Fatalf("mode = %v, want formed", s.Mode())
	}
	s.Toggle()
	s.Tick(1.0 / 60)
	if s.Mode() != ModeScattered {
		t.Fatalf("mode = %v, want scattered", s.Mode())
	}

	if err := s.SelectFocus("a"); err != nil {
		t.Fatal(err)
	}
	s.Tick(1.0 / 60)
	s.Toggle()
	s.Tick(1.0 / 60)
	if s.Mode() != ModeFormed || s.FocusID() != "" {
		t.Errorf("toggle from focus = %v %q, want formed", s.Mode(), s.FocusID())
	}
}

func TestScene_CommandsApplyOnTick(t *testing.T) {
	s := newTestScene(t)
	s.SetMode(ModeFormed)
	if s.Mode() != ModeScattered {
		t.Error("SetMode should wait for the next tick")
	}
	s.Tick(1.0 / 60)
	if s.Mode() != ModeFormed {
		t.Errorf("mode = %v, want formed", s.Mode())
	}
}

func TestScene_SetModeFocusPicksPhoto(t *testing.T) {
	s := newTestScene(t)
	s.SetMode(ModeFocus)
	s.Tick(1.0 / 60)
	if s.Mode() != ModeFocus {
		t.Fatalf("mode = %v, want focus", s.Mode())
	}
	id := s.FocusID()
	if !s.hasFocusable(id) {
		t.Errorf("FocusID = %q, want one of %v", id, s.Focusables())
	}

	// Already focused: a second SetMode(ModeFocus) keeps the photo.
	s.SetMode(ModeFocus)
	s.Tick(1.0 / 60)
	if s.FocusID() != id {
		t.Errorf("FocusID = %q, want %q kept", s.FocusID(), id)
	}
}

func TestScene_SetModeFocusWithoutPhotos(t *testing.T) {
	cfg := testConfig()
	cfg.Photos = nil
	s := NewScene(cfg)
	s.SetMode(ModeFocus)
	s.Tick(1.0 / 60)
	if s.Mode() != ModeScattered {
		t.Errorf("mode = %v, want focus ignored without photos", s.Mode())
	}
}

func TestScene_SelectFocusUnknown(t *testing.T) {
	s := newTestScene(t)
	err := s.SelectFocus("nope")
	if !errors.Is(err, ErrUnknownFocus) {
		t.Fatalf("err = %v, want ErrUnknownFocus", err)
	}
	if err := s.SelectFocus(""); !errors.Is(err, ErrUnknownFocus) {
		t.Errorf("empty id err = %v, want ErrUnknownFocus", err)
	}
	s.Tick(1.0 / 60)
	if s.Mode() != ModeScattered {
		t.Errorf("mode = %v, want unchanged", s.Mode())
	}
}

func TestScene_ZoomOnlyInFocus(t *testing.T) {
	s := newTestScene(t)
	def := DefaultFocusConfig().DefaultZoom
	s.Zoom(5)
	assertNear(t, "zoom outside focus", s.Focus().Zoom(), def)

	_ = s.SelectFocus("a")
	s.Tick(1.0 / 60)
	s.Zoom(5)
	assertNear(t, "zoom", s.Focus().Zoom(), def+5)
	s.Zoom(1000)
	assertNear(t, "zoom clamped", s.Focus().Zoom(), DefaultFocusConfig().MaxZoom)
}

func TestScene_ZoomResetsOnFocusEntry(t *testing.T) {
	s := newTestScene(t)
	_ = s.SelectFocus("a")
	s.Tick(1.0 / 60)
	s.Zoom(8)

	s.SetMode(ModeFormed)
	s.Tick(1.0 / 60)
	_ = s.SelectFocus("b")
	s.Tick(1.0 / 60)
	assertNear(t, "zoom", s.Focus().Zoom(), DefaultFocusConfig().DefaultZoom)

	// Switching photos while focused is also an entry.
	s.Zoom(-3)
	_ = s.SelectFocus("c")
	s.Tick(1.0 / 60)
	assertNear(t, "zoom", s.Focus().Zoom(), DefaultFocusConfig().DefaultZoom)
}

func TestScene_ZoomTo(t *testing.T) {
	s := newTestScene(t)
	_ = s.SelectFocus("a")
	s.Tick(1.0 / 60)
	s.ZoomTo(20, 0.5)
	tickN(s, 60)
	assertNear(t, "zoom", s.Focus().Zoom(), 20)

	s.ZoomTo(30, 1)
	s.Tick(1.0 / 60)
	s.Zoom(-1) // cancels the tween
	z := s.Focus().Zoom()
	tickN(s, 60)
	assertNear(t, "zoom after cancel", s.Focus().Zoom(), z)
}

// ---- Focus -----------------------------------------------------------------

func TestScene_FocusedPhotoIsCameraLocked(t *testing.T) {
	s := newTestScene(t)
	s.SetMode(ModeFormed)
	tickN(s, 120) // let the rig auto-rotate away from identity
	if s.Rig().Yaw == 0 {
		t.Fatal("rig should have rotated while formed")
	}

	_ = s.SelectFocus("b")
	tickN(s, 300)

	g := s.Group(GroupPhotos)
	i := photoIndex(t, g, "b")
	got := s.ParentFrame().InstanceToWorld(g.Instances()[i])
	want := s.Focus().WorldTarget(s.Camera())
	assertVecNear(t, "position", got.Position, want.Position, 1e-3)
	assertQuatNear(t, "rotation", got.Rotation, want.Rotation, 1e-6)
	assertNear(t, "scale", got.Scale, want.Scale)

	// Other photos keep following the morph.
	j := photoIndex(t, g, "a")
	if g.Instances()[j].Position.Sub(want.Position).Len() < 1 {
		t.Error("unfocused photo should not be at the focus target")
	}
}

func TestScene_FocusedPhotoFollowsZoom(t *testing.T) {
	s := newTestScene(t)
	_ = s.SelectFocus("a")
	tickN(s, 300)
	s.Zoom(10)
	tickN(s, 300)

	g := s.Group(GroupPhotos)
	got := s.ParentFrame().InstanceToWorld(g.Instances()[photoIndex(t, g, "a")])
	d := got.Position.Sub(s.Camera().Position).Len()
	if d < s.Focus().Zoom()-1e-2 || d > s.Focus().Zoom()+1e-2 {
		t.Errorf("distance from camera = %f, want %f", d, s.Focus().Zoom())
	}
}

func TestScene_PartialFocusConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Focus = FocusConfig{MinZoom: 5, MaxZoom: 40}
	s := NewScene(cfg)
	if got := s.Config().Focus; got != DefaultFocusConfig() {
		t.Fatalf("Focus = %+v, want unset fields from defaults", got)
	}

	_ = s.SelectFocus("b")
	tickN(s, 300)
	g := s.Group(GroupPhotos)
	got := s.ParentFrame().InstanceToWorld(g.Instances()[photoIndex(t, g, "b")])
	want := s.Focus().WorldTarget(s.Camera())
	assertVecNear(t, "position", got.Position, want.Position, 1e-3)
	if math.Abs(got.Scale-2.5) > 1e-3 {
		t.Errorf("scale = %f, want 2.5", got.Scale)
	}
}

func TestScene_AddPhotosKeepsFocusApproach(t *testing.T) {
	s := newTestScene(t)
	_ = s.SelectFocus("a")
	tickN(s, 10)

	g := s.Group(GroupPhotos)
	before := g.Instances()[photoIndex(t, g, "a")]
	if err := s.AddPhotos(Photo{ID: "d", URL: "d.jpg"}); err != nil {
		t.Fatal(err)
	}
	if s.Mode() != ModeFocus || s.FocusID() != "a" {
		t.Fatalf("state = %v %q, want focus on a", s.Mode(), s.FocusID())
	}
	after := g.Instances()[photoIndex(t, g, "a")]
	if after != before {
		t.Errorf("focused photo moved on regeneration: %+v, want %+v", after, before)
	}

	world := func() float64 {
		cur := s.ParentFrame().InstanceToWorld(g.Instances()[photoIndex(t, g, "a")])
		return cur.Position.Sub(s.Focus().WorldTarget(s.Camera()).Position).Len()
	}
	d0 := world()
	if d0 < 0.5 {
		t.Fatalf("photo already %f from the target; approach should still be in flight", d0)
	}
	s.Tick(1.0 / 60)
	if d1 := world(); d1 < 0.5*d0 {
		t.Errorf("distance %f -> %f in one tick, want a continued approach", d0, d1)
	}
}

func TestScene_RemoveFocusedPhoto(t *testing.T) {
	s := newTestScene(t)
	ev := &recordingEvents{}
	s.SetEventSink(ev)
	_ = s.SelectFocus("a")
	s.Tick(1.0 / 60)

	if !s.RemovePhoto("a") {
		t.Fatal("RemovePhoto(a) = false")
	}
	if s.Mode() != ModeScattered || s.FocusID() != "" {
		t.Errorf("state = %v %q, want scattered", s.Mode(), s.FocusID())
	}
	if last := ev.last(); last.Source != SourceScene || last.To != ModeScattered {
		t.Errorf("last event = %+v", last)
	}
	if s.RemovePhoto("a") {
		t.Error("second RemovePhoto(a) = true")
	}
	if g := s.Group(GroupPhotos); g.Len() != 2 {
		t.Errorf("photos Len = %d, want 2", g.Len())
	}
}

func TestScene_RemoveOtherPhotoKeepsFocus(t *testing.T) {
	s := newTestScene(t)
	_ = s.SelectFocus("a")
	s.Tick(1.0 / 60)
	s.RemovePhoto("c")
	if s.Mode() != ModeFocus || s.FocusID() != "a" {
		t.Errorf("state = %v %q, want focus on a", s.Mode(), s.FocusID())
	}
}

func TestScene_QueuedFocusOnRemovedPhoto(t *testing.T) {
	s := newTestScene(t)
	if err := s.SelectFocus("b"); err != nil {
		t.Fatal(err)
	}
	s.RemovePhoto("b")
	s.Tick(1.0 / 60)
	if s.Mode() != ModeScattered {
		t.Errorf("mode = %v, want the stale focus command dropped", s.Mode())
	}
}

// ---- Photos and resize -----------------------------------------------------

func TestScene_AddPhotos(t *testing.T) {
	s := newTestScene(t)
	if err := s.AddPhotos(Photo{ID: "b", URL: "new.jpg"}, Photo{ID: "d", URL: "d.jpg"}); err != nil {
		t.Fatal(err)
	}
	g := s.Group(GroupPhotos)
	if g.Len() != 4 {
		t.Fatalf("photos Len = %d, want 4", g.Len())
	}
	if e := g.Entity(photoIndex(t, g, "b")); e.ImageURL != "new.jpg" {
		t.Errorf("b url = %q, want replaced", e.ImageURL)
	}
	if !s.hasFocusable("d") {
		t.Error("d should be focusable")
	}
	if err := s.SetPhotos([]Photo{{ID: "x"}, {ID: "x"}}); err == nil {
		t.Error("SetPhotos with duplicates should fail")
	}
}

func TestScene_ResizeKeepsProgress(t *testing.T) {
	s := newTestScene(t)
	s.SetMode(ModeFormed)
	tickN(s, 30)

	gold := s.Group(OrnamentGroup(MaterialGold))
	foliage := s.Group(GroupFoliage)
	goldProgress := gold.Clock().Progress()
	foliageProgress := foliage.Clock().Progress()
	goldGen := gold.Generation()

	if err := s.Resize(CategoryFoliage, 20); err != nil {
		t.Fatal(err)
	}
	if foliage.Len() != 20 || len(foliage.Instances()) != 20 {
		t.Errorf("foliage Len = %d, want 20", foliage.Len())
	}
	assertNear(t, "foliage progress", foliage.Clock().Progress(), foliageProgress)
	assertNear(t, "gold progress", gold.Clock().Progress(), goldProgress)
	if gold.Generation() != goldGen {
		t.Error("gold ornaments should not regenerate")
	}
	if s.Config().Population.Foliage != 20 {
		t.Errorf("Config().Population.Foliage = %d", s.Config().Population.Foliage)
	}

	if err := s.Resize(CategoryOrnament, 4); err != nil {
		t.Fatal(err)
	}
	for _, m := range Materials {
		if n := s.Group(OrnamentGroup(m)).Len(); n != 4 {
			t.Errorf("%s Len = %d, want 4", m, n)
		}
	}
}

func TestScene_ResizeErrors(t *testing.T) {
	s := newTestScene(t)
	if err := s.Resize(CategoryFoliage, -1); err == nil {
		t.Error("negative count should fail")
	}
	if err := s.Resize(CategoryTopper, 2); err == nil {
		t.Error("topper count is fixed")
	}
	if err := s.Resize(CategoryPhoto, 2); err == nil {
		t.Error("photo count follows the photo list")
	}
}

// ---- Gestures --------------------------------------------------------------

func TestScene_InjectedGestures(t *testing.T) {
	s := newTestScene(t)
	_ = s.InjectPose(PoseFist, 1)
	s.Tick(1.0 / 60)
	if s.Mode() != ModeFormed || s.State().Source() != SourceGesture {
		t.Fatalf("state = %v from %v, want formed from gesture", s.Mode(), s.State().Source())
	}

	_ = s.InjectPose(PoseOpen, 1)
	s.Tick(1.0 / 60)
	if s.Mode() != ModeScattered {
		t.Fatalf("mode = %v, want scattered", s.Mode())
	}

	_ = s.InjectPose(PosePinch, 1)
	s.Tick(1.0 / 60)
	if s.Mode() != ModeFocus || !s.hasFocusable(s.FocusID()) {
		t.Errorf("state = %v %q, want focus on a photo", s.Mode(), s.FocusID())
	}
}

func TestScene_PartialGestureConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Gesture = GestureConfig{PinchThreshold: 0.08}
	s := NewScene(cfg)

	_ = s.InjectPose(PoseFist, 1)
	s.Tick(1.0 / 60)
	if s.Mode() != ModeFormed {
		t.Fatalf("fist: mode = %v, want formed", s.Mode())
	}
	_ = s.InjectPose(PosePinch, 1)
	s.Tick(1.0 / 60)
	if s.Mode() != ModeFocus {
		t.Fatalf("pinch: mode = %v, want focus", s.Mode())
	}
	_ = s.InjectPose(PoseOpen, 1)
	s.Tick(1.0 / 60)
	if s.Mode() != ModeScattered {
		t.Errorf("open: mode = %v, want scattered", s.Mode())
	}
}

func TestScene_UICommandWinsOverGesture(t *testing.T) {
	s := newTestScene(t)
	ev := &recordingEvents{}
	s.SetEventSink(ev)

	_ = s.InjectPose(PoseFist, 1)
	s.SetMode(ModeScattered)
	s.Tick(1.0 / 60)

	if s.Mode() != ModeScattered {
		t.Errorf("mode = %v, want the UI command to win", s.Mode())
	}
	if last := ev.last(); last.Source != SourceUI {
		t.Errorf("last event = %+v, want from the UI", last)
	}
}

func TestScene_GestureRotationControl(t *testing.T) {
	s := newTestScene(t)
	s.InjectHandSample(SyntheticHand(0.25, 0.15, 0.9, 0.5))
	s.Tick(1.0 / 60)
	if r := s.State().Rotation(); r.X <= 0 {
		t.Errorf("rotation = %+v, want positive yaw for a hand on the right", r)
	}
	tickN(s, 120)
	if s.Rig().Yaw <= 0 {
		t.Errorf("rig yaw = %f, want it to follow the control", s.Rig().Yaw)
	}
}

func TestScene_TrackerGestures(t *testing.T) {
	tr := newFakeTracker()
	s := newTestScene(t)
	defer s.Close()

	s.EnableGestures(context.Background(), tr)
	s.GestureInput().Wait()
	if s.GestureStatus() != GestureActive {
		t.Fatalf("GestureStatus = %v", s.GestureStatus())
	}

	fist, _ := PoseSample(PoseFist)
	tr.mu.Lock()
	tr.hands = []HandSample{fist}
	tr.mu.Unlock()
	tr.source.push(1)
	s.Tick(1.0 / 60)
	if s.Mode() != ModeFormed {
		t.Errorf("mode = %v, want formed", s.Mode())
	}

	s.DisableGestures()
	if s.GestureStatus() != GestureOff {
		t.Errorf("GestureStatus = %v after disable, want off", s.GestureStatus())
	}
	if s.Mode() != ModeFormed {
		t.Error("disabling gestures must keep the mode")
	}
}

func TestScene_UnavailableTrackerKeepsUI(t *testing.T) {
	tr := newFakeTracker()
	tr.startErr = errors.New("no camera")
	s := newTestScene(t)
	s.EnableGestures(context.Background(), tr)
	s.GestureInput().Wait()
	if s.GestureStatus() != GestureUnavailable {
		t.Fatalf("GestureStatus = %v, want unavailable", s.GestureStatus())
	}
	s.Toggle()
	s.Tick(1.0 / 60)
	if s.Mode() != ModeFormed {
		t.Errorf("mode = %v, want UI still working", s.Mode())
	}
}

// ---- Sinks -----------------------------------------------------------------

func TestScene_EventSink(t *testing.T) {
	s := newTestScene(t)
	ev := &recordingEvents{}
	s.SetEventSink(ev)
	s.Tick(1.0 / 60)
	s.Toggle()
	s.Tick(1.0 / 60)
	s.Tick(1.0 / 60)

	if len(ev.events) != 1 {
		t.Fatalf("got %d events, want 1", len(ev.events))
	}
	e := ev.events[0]
	if e.From != ModeScattered || e.To != ModeFormed || e.Source != SourceUI {
		t.Errorf("event = %+v", e)
	}
	assertNear(t, "event time", e.Time, 2.0/60)
}

func TestScene_RenderSink(t *testing.T) {
	s := newTestScene(t)
	rec := newRecordingSink()
	s.SetRenderSink(rec)
	if rec.created != len(s.Groups()) {
		t.Errorf("GroupCreated called %d times, want %d", rec.created, len(s.Groups()))
	}
	s.Tick(1.0 / 60)
	for _, g := range s.Groups() {
		if rec.submits[g.Name()] != 1 {
			t.Errorf("%s submitted %d times", g.Name(), rec.submits[g.Name()])
		}
		if rec.lengths[g.Name()] != g.Len() {
			t.Errorf("%s submitted %d instances, want %d", g.Name(), rec.lengths[g.Name()], g.Len())
		}
	}

	s.RemovePhoto("a")
	if rec.created != len(s.Groups())+1 {
		t.Errorf("regeneration should announce the group again")
	}
	s.SetRenderSink(nil)
	s.Tick(1.0 / 60) // the no-op sink must not panic
}
