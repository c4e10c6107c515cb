// Package evergreen is a headless 3D morph engine for a decorated tree made
// of thousands of particles, ornaments, lights and photo cards.
//
// Every entity holds two fixed target transforms, one inside a cone (the
// formed tree) and one inside a sphere (the scattered cloud). Each tick the
// scene advances a per-group morph clock toward the active mode and derives an
// interpolated transform per entity, with idle float and spin layered on top.
// A third mode, focus, pulls a single photo in front of the camera and keeps
// it there whatever the tree's own rotation.
//
// # Quick start
//
// The root package has no window, GPU or camera dependency. Drive it from any
// loop and hand the instances to a renderer:
//
//	scene := evergreen.NewScene(evergreen.DefaultConfig())
//	scene.SetRenderSink(myRenderer)
//	for range ticker.C {
//		scene.Tick(1.0 / 60)
//	}
//
// [RenderSink.SubmitFrame] receives one index-aligned []InstanceTransform per
// [Group], expressed in the rig's parent frame ([Scene.ParentFrame]), plus
// [Uniforms] for shader-driven groups such as foliage.
//
// # Modes and input
//
// The UI drives the scene with [Scene.Toggle], [Scene.SetMode],
// [Scene.SelectFocus] and [Scene.Zoom]. Hand gestures arrive through a
// [HandTracker] enabled with [Scene.EnableGestures]: a fist forms the tree,
// an open hand scatters it, a pinch focuses a random photo, and the hand's
// position steers the scattered cloud. When both fire in one tick the UI wins.
//
// Setup of the tracker is asynchronous and may fail; the scene then stays in
// its current mode and remains fully usable through UI commands
// ([Scene.GestureStatus] reports [GestureUnavailable]).
//
// # Determinism
//
// Set [Config.Rand] to a seeded source (a *rand.Rand from math/rand/v2) to make
// generation and focus selection reproducible. [SyntheticHand],
// [Scene.InjectHandSample] and [LoadScript] replay input without a camera.
//
// # Integrations
//
// Mode changes can be forwarded to a [Donburi] world through the adapter in
// evergreen/ecs. Runnable front ends live in examples/tree ([Ebitengine]) and
// demos/terminal (tcell).
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package evergreen
