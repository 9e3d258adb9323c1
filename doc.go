// Package pinscroll drives 2D node animations from the scroll position of a
// tall page, rendered with [Ebitengine].
//
// A page is a vertical stack of [Section]s. A [Trigger] watches one section's
// position as the [Viewport] scrolls and maps it to a progress value in
// [0, 1]; a pinned trigger holds its section fixed on screen while progress
// runs. A [Sequence] maps progress to property values on one or more nodes.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	scene := pinscroll.NewScene(1280, 800)
//	scene.Page().Add(section)
//	pinscroll.Run(scene, pinscroll.RunConfig{
//		Title: "My Page", Width: 1280, Height: 800,
//	})
//
// For full control, implement [ebiten.Game] yourself and call
// [Scene.Update], [Scene.Draw] and [Scene.Resize] directly.
//
// # Sections
//
// A section owns a node subtree. [Page] calls Layout with the page width and
// viewport height, stacks sections top to bottom and reserves pin spacing
// after pinned sections. Mount registers triggers and builds timelines:
//
//	func (s *hero) Mount(sc *pinscroll.Scene) error {
//		trig, err := sc.Observer().Register(pinscroll.TriggerRegion{
//			Anchor: s.root,
//			End:    pinscroll.MustParseOffset("+=100%"),
//			Pinned: true, PinSpacing: true, Scrub: 1,
//		}, nil)
//		if err != nil {
//			return err
//		}
//		s.seq, err = pinscroll.NewTimeline(pinscroll.TimelineDefaults{}).
//			To(pinscroll.Targets{s.title}, pinscroll.Props{pinscroll.PropOpacity: pinscroll.Lit(1)}).
//			Build(trig, sc.BuildOptions()...)
//		return err
//	}
//
// # Timelines
//
// [Build] takes normalized [Step]s directly. [Timeline] composes them in
// relative time with durations and positions, and [Scenario] loads the same
// from YAML. Endpoints are literals, the target's current value, or a
// [DeferredValue] computed from layout when the sequence is built and again
// after every resize.
//
// Progress is the only input: advancing to p always produces the same state
// regardless of the order in which progress values arrived.
//
// # Debugging
//
// [Scene.SetDebugMode] draws trigger markers and logs trigger and frame
// events to stderr. [Scene.InjectScroll], [Scene.InjectResize] and
// [LoadTestScript] drive a scene without real input; [Scene.Screenshot]
// writes PNGs.
//
// [Ebitengine]: https://ebitengine.org
package pinscroll
