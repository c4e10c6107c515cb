package evergreen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// Group names used by NewScene.
const (
	GroupFoliage = "foliage"
	GroupGifts   = "gifts"
	GroupLights  = "lights"
	GroupTopper  = "topper"
	GroupPhotos  = "photos"
)

// OrnamentGroup returns the group name for ornaments of material m.
func OrnamentGroup(m Material) string {
	return "ornaments/" + m.String()
}

// ErrUnknownFocus is returned when a focus target does not name a photo.
var ErrUnknownFocus = errors.New("evergreen: unknown focus target")

var discardLogger = slog.New(slog.DiscardHandler)

// Scene is the top-level object that owns the entity groups, the application
// state, the camera and rig, and the gesture pipeline. It is driven by an
// external loop calling Tick once per displayed frame; every method must be
// called from that loop's goroutine.
type Scene struct {
	cfg    Config
	rng    RandSource
	groups []*Group
	byName map[string]*Group
	specs  map[string]groupSpec
	nextID uint32

	photos     []Photo
	focusables []string

	state      AppState
	classifier *Classifier
	gesture    *GestureInput
	commands   []command

	injectQueue []HandSample

	camera    *Camera
	rig       *Rig
	focus     *FocusController
	zoomTween *TweenGroup
	fc        frameContext

	sink   RenderSink
	events EventSink
	log    *slog.Logger
	runner *ScriptRunner
	debug  bool

	time  float64
	ticks uint64
}

// NewScene builds every group from cfg. Zero-valued config fields take their
// defaults. The scene starts scattered.
func NewScene(cfg Config) *Scene {
	cfg = cfg.withDefaults()
	s := &Scene{
		cfg:        cfg,
		rng:        cfg.Rand,
		byName:     make(map[string]*Group),
		specs:      make(map[string]groupSpec),
		photos:     append([]Photo(nil), cfg.Photos...),
		classifier: NewClassifier(cfg.Gesture, cfg.Rand),
		camera:     NewCamera(Rect{Width: 1280, Height: 720}),
		rig:        NewRig(cfg.Rig),
		focus:      NewFocusController(cfg.Focus),
		sink:       sinkNop{},
		log:        discardLogger,
	}
	s.cfg.Photos = nil
	for _, spec := range cfg.groupSpecs() {
		g := newGroup(spec.cfg)
		s.groups = append(s.groups, g)
		s.byName[g.Name()] = g
		s.specs[g.Name()] = spec
		s.regenerate(g, spec.generate(s.rng))
	}
	return s
}

// Tick advances the scene by dt seconds. dt is clamped to
// [0, Config.MaxFrameDelta] so a stalled frame cannot overshoot a morph.
//
// Order within a tick: script step, gesture classification, UI commands
// (which therefore win), camera, rig, groups, render submission.
func (s *Scene) Tick(dt float64) {
	dt = clamp(dt, 0, s.cfg.MaxFrameDelta)

	var stats debugStats
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	s.time += dt
	s.ticks++

	if s.runner != nil {
		s.runner.step(s)
	}
	s.processGesture()
	s.processCommands()

	if s.debug {
		stats.inputTime = time.Since(t0)
		t0 = time.Now()
	}

	if s.zoomTween != nil {
		s.zoomTween.Update(float32(dt))
		if s.zoomTween.Done || s.state.Mode() != ModeFocus {
			s.zoomTween = nil
		}
	}
	s.camera.update(dt)
	s.rig.update(dt, s.state.Mode(), s.state.Rotation())
	s.updateGroups(dt)

	if s.debug {
		stats.updateTime = time.Since(t0)
		t0 = time.Now()
	}

	for _, g := range s.groups {
		s.sink.SubmitFrame(g, g.Instances(), g.Uniforms(s.time))
	}

	if s.debug {
		stats.submitTime = time.Since(t0)
		stats.groupCount = len(s.groups)
		for _, g := range s.groups {
			stats.instanceCount += g.Len()
		}
		s.debugLog(stats)
	}
}

// updateGroups advances every group against one shared frame context.
func (s *Scene) updateGroups(dt float64) {
	s.fc = frameContext{
		mode:        s.state.Mode(),
		focusID:     s.state.FocusID(),
		time:        s.time,
		blendRate:   s.focus.BlendRate(),
		focusTarget: s.focus.Target(s.camera, s.rig.Frame()),
	}
	if !s.cfg.Parallel {
		for _, g := range s.groups {
			g.update(dt, &s.fc)
		}
		return
	}
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for _, g := range s.groups {
		eg.Go(func() error {
			g.update(dt, &s.fc)
			return nil
		})
	}
	_ = eg.Wait()
}

// processGesture classifies at most one hand sample: an injected one if
// queued, else a fresh one from the tracker.
func (s *Scene) processGesture() {
	sample, ok := s.nextSample()
	if !ok {
		return
	}
	d := s.classifier.Classify(sample, s.state.Mode(), s.focusables)
	if d.Changed {
		s.apply(d.Mode, d.FocusID, SourceGesture)
	}
	if d.Signal {
		s.state.setRotation(d.Rotation)
	}
}

func (s *Scene) nextSample() (HandSample, bool) {
	if len(s.injectQueue) > 0 {
		h := s.injectQueue[0]
		copy(s.injectQueue, s.injectQueue[1:])
		s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]
		return h, true
	}
	if s.gesture == nil {
		return nil, false
	}
	return s.gesture.Poll()
}

// apply writes a mode change to the state, resets zoom on focus entry and
// notifies the event sink.
func (s *Scene) apply(mode Mode, focusID string, src Source) {
	ev, changed := s.state.set(mode, focusID, src)
	if !changed {
		return
	}
	ev.Time = s.time
	s.zoomTween = nil
	if ev.To == ModeFocus {
		s.focus.Reset()
	}
	s.log.Debug("mode change", "from", ev.From, "to", ev.To, "focus", ev.FocusID, "source", ev.Source)
	if s.events != nil {
		s.events.EmitEvent(ev)
	}
}

// regenerate stamps IDs on entities and hands them to g.
func (s *Scene) regenerate(g *Group, entities []Entity) {
	for i := range entities {
		s.nextID++
		entities[i].ID = s.nextID
	}
	g.Regenerate(entities)
	s.sink.GroupCreated(g)
	if !g.Config().Focusable {
		return
	}
	s.refreshFocusables()
	if id := s.state.FocusID(); id != "" && !s.hasFocusable(id) {
		s.apply(ModeScattered, "", SourceScene)
	}
}

func (s *Scene) refreshFocusables() {
	s.focusables = s.focusables[:0]
	for _, g := range s.groups {
		if !g.Config().Focusable {
			continue
		}
		for i := range g.entities {
			if id := g.entities[i].ImageID; id != "" {
				s.focusables = append(s.focusables, id)
			}
		}
	}
}

func (s *Scene) hasFocusable(id string) bool {
	if id == "" {
		return false
	}
	for _, f := range s.focusables {
		if f == id {
			return true
		}
	}
	return false
}

func (s *Scene) randomFocusable() string {
	n := len(s.focusables)
	if n == 0 {
		return ""
	}
	i := int(s.rng.Float64() * float64(n))
	return s.focusables[min(max(i, 0), n-1)]
}

// SetPhotos replaces the photo cards. If the focused photo is gone the scene
// drops back to ModeScattered.
func (s *Scene) SetPhotos(photos []Photo) error {
	seen := make(map[string]bool, len(photos))
	for _, p := range photos {
		if p.ID == "" {
			return fmt.Errorf("set photos: empty id")
		}
		if seen[p.ID] {
			return fmt.Errorf("set photos: duplicate id %q", p.ID)
		}
		seen[p.ID] = true
	}
	s.photos = append(s.photos[:0:0], photos...)
	g := s.byName[GroupPhotos]
	s.regenerate(g, GeneratePhotos(s.rng, s.photos, s.cfg.Tree))
	return nil
}

// AddPhotos appends photos, replacing any with a matching ID.
func (s *Scene) AddPhotos(photos ...Photo) error {
	return s.SetPhotos(mergePhotos(s.photos, photos))
}

// RemovePhoto removes the photo with the given ID and reports whether it
// existed.
func (s *Scene) RemovePhoto(id string) bool {
	for i, p := range s.photos {
		if p.ID != id {
			continue
		}
		rest := append(append([]Photo(nil), s.photos[:i]...), s.photos[i+1:]...)
		_ = s.SetPhotos(rest)
		return true
	}
	return false
}

// Photos returns the current photo list. The returned slice MUST NOT be mutated.
func (s *Scene) Photos() []Photo {
	return s.photos
}

// Resize regenerates the groups of category cat with n entities each. Other
// groups keep their morph state untouched.
func (s *Scene) Resize(cat Category, n int) error {
	if n < 0 {
		return fmt.Errorf("resize %s: negative count %d", cat, n)
	}
	p := &s.cfg.Population
	switch cat {
	case CategoryFoliage:
		p.Foliage = n
	case CategoryOrnament:
		p.Ornaments = n
	case CategoryGift:
		p.Gifts = n
	case CategoryLight:
		p.Lights = n
	default:
		return fmt.Errorf("resize %s: count is fixed", cat)
	}
	// Specs capture the population, so rebuild them.
	for _, spec := range s.cfg.groupSpecs() {
		if spec.cfg.Category == cat {
			s.specs[spec.cfg.Name] = spec
		}
	}
	for _, g := range s.groups {
		if g.Category() == cat {
			s.regenerate(g, s.specs[g.Name()].generate(s.rng))
		}
	}
	return nil
}

// EnableGestures starts the hand tracker asynchronously. The scene stays fully
// usable through UI commands while it starts or if it fails; watch
// GestureStatus. Enabling with a different tracker releases the old one first.
func (s *Scene) EnableGestures(ctx context.Context, tracker HandTracker) {
	if s.gesture != nil && s.gesture.tracker != tracker {
		s.gesture.Disable()
		s.gesture = nil
	}
	if s.gesture == nil {
		s.gesture = NewGestureInput(tracker, s.log)
	}
	s.gesture.Enable(ctx)
}

// DisableGestures stops the tracker and releases the capture stream before
// returning. The current mode is kept.
func (s *Scene) DisableGestures() {
	if s.gesture != nil {
		s.gesture.Disable()
	}
}

// GestureStatus returns the gesture pipeline state.
func (s *Scene) GestureStatus() GestureStatus {
	if s.gesture == nil {
		return GestureOff
	}
	return s.gesture.Status()
}

// GestureInput returns the active gesture input, or nil if gestures were
// never enabled.
func (s *Scene) GestureInput() *GestureInput {
	return s.gesture
}

// Close releases the gesture pipeline.
func (s *Scene) Close() {
	s.DisableGestures()
}

// Mode returns the active mode.
func (s *Scene) Mode() Mode {
	return s.state.Mode()
}

// FocusID returns the focused photo's ID, or "".
func (s *Scene) FocusID() string {
	return s.state.FocusID()
}

// State returns a copy of the application state.
func (s *Scene) State() AppState {
	return s.state
}

// Focusables returns the IDs a focus command may target. The returned slice
// MUST NOT be mutated.
func (s *Scene) Focusables() []string {
	return s.focusables
}

// Groups returns the scene's groups in creation order. The returned slice
// MUST NOT be mutated.
func (s *Scene) Groups() []*Group {
	return s.groups
}

// Group returns the group with the given name, or nil.
func (s *Scene) Group(name string) *Group {
	return s.byName[name]
}

// Camera returns the scene's camera.
func (s *Scene) Camera() *Camera {
	return s.camera
}

// Rig returns the parent rig every group is posed under.
func (s *Scene) Rig() *Rig {
	return s.rig
}

// ParentFrame returns the frame group instances are expressed in.
func (s *Scene) ParentFrame() Frame {
	return s.rig.Frame()
}

// Focus returns the focus controller.
func (s *Scene) Focus() *FocusController {
	return s.focus
}

// Elapsed returns the scene time in seconds.
func (s *Scene) Elapsed() float64 {
	return s.time
}

// Ticks returns the number of Tick calls so far.
func (s *Scene) Ticks() uint64 {
	return s.ticks
}

// Config returns the scene's effective configuration.
func (s *Scene) Config() Config {
	c := s.cfg
	c.Photos = s.photos
	return c
}

// SetRenderSink sets the render collaborator and announces every existing
// group to it. Nil restores the no-op sink.
func (s *Scene) SetRenderSink(sink RenderSink) {
	if sink == nil {
		sink = sinkNop{}
	}
	s.sink = sink
	for _, g := range s.groups {
		sink.GroupCreated(g)
	}
}

// SetEventSink sets the optional observer of mode changes.
func (s *Scene) SetEventSink(sink EventSink) {
	s.events = sink
}

// SetLogger sets the logger for diagnostics such as swallowed detection
// errors. Nil discards.
func (s *Scene) SetLogger(log *slog.Logger) {
	if log == nil {
		log = discardLogger
	}
	s.log = log
	if s.gesture != nil {
		s.gesture.setLogger(log)
	}
}

// SetDebugMode enables or disables per-tick timing stats on stderr.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
}
