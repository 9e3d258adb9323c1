package pinscroll

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Scene is the top-level object that owns the page tree, the viewport, the
// scroll observer and the easing registry used by every timeline built on it.
type Scene struct {
	root     *Node // page space, scrolls with the viewport
	overlay  *Node // screen space, fixed
	viewport *Viewport
	observer *Observer
	resolver *Resolver
	easings  EasingProvider
	page     *Page
	debug    bool

	// ClearColor fills the screen before drawing. Zero alpha leaves the
	// screen as is.
	ClearColor Color
	// ScrollConfig controls how wheel and keyboard input scroll the page.
	ScrollConfig ScrollConfig
	// ScreenshotDir is where Screenshot writes PNGs. Defaults to "screenshots".
	ScreenshotDir string

	updateFunc func() error
	pollInput  func() scrollInput

	lastView [6]float64
	viewInit bool

	injectQueue     []syntheticEvent
	testRunner      *TestRunner
	screenshotQueue []string
}

// NewScene creates a scene with a w×h viewport and an empty page.
func NewScene(w, h float64) *Scene {
	v := NewViewport(w, h)
	s := &Scene{
		root:          NewContainer("root"),
		overlay:       NewContainer("overlay"),
		viewport:      v,
		observer:      NewObserver(v),
		resolver:      NewResolver(v),
		easings:       NewEasings(),
		ScrollConfig:  DefaultScrollConfig(),
		ScreenshotDir: "screenshots",
		pollInput:     pollScrollInput,
	}
	s.page = newPage(s)
	return s
}

// Root returns the page-space root container.
func (s *Scene) Root() *Node { return s.root }

// Overlay returns a screen-space container drawn above the page.
func (s *Scene) Overlay() *Node { return s.overlay }

// Viewport returns the scene's viewport.
func (s *Scene) Viewport() *Viewport { return s.viewport }

// Observer returns the scroll observer fed by the viewport.
func (s *Scene) Observer() *Observer { return s.observer }

// Resolver returns the resolver for deferred values in this scene.
func (s *Scene) Resolver() *Resolver { return s.resolver }

// Easings returns the scene's easing provider.
func (s *Scene) Easings() EasingProvider { return s.easings }

// SetEasings replaces the provider used by timelines built after the call.
func (s *Scene) SetEasings(p EasingProvider) {
	if p == nil {
		p = NewEasings()
	}
	s.easings = p
}

// Page returns the page that stacks the scene's sections.
func (s *Scene) Page() *Page { return s.page }

// BuildOptions returns the options that bind a timeline to this scene's
// resolver and easings.
func (s *Scene) BuildOptions() []Option {
	return []Option{WithResolver(s.resolver), WithEasings(s.easings)}
}

// SetUpdateFunc sets a callback run at the end of every Update. A non-nil
// error stops Run.
func (s *Scene) SetUpdateFunc(fn func() error) {
	s.updateFunc = fn
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, trigger markers are drawn, and per-frame stats and observer
// events are logged to stderr.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// Update processes input and advances scroll, triggers and node callbacks by
// one tick.
func (s *Scene) Update() error {
	return s.step(1.0 / float64(ebiten.TPS()))
}

// step runs one frame of dt seconds.
func (s *Scene) step(dt float64) error {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	if !s.processInjected() && s.pollInput != nil {
		s.applyInput(s.pollInput())
	}
	s.viewport.update(float32(dt))
	s.page.update()
	s.observer.Update()
	s.observer.Tick(dt)
	updateNodes(s.root, dt)
	updateNodes(s.overlay, dt)
	s.refreshTransforms()

	if s.debug {
		logf("update: %v scroll=%.1f", time.Since(t0), s.viewport.ScrollY)
	}
	if s.updateFunc != nil {
		return s.updateFunc()
	}
	return nil
}

// Resize changes the viewport size, relayouts the page and re-measures every
// trigger. Returns true if the size changed.
func (s *Scene) Resize(w, h float64) bool {
	if !s.viewport.Resize(w, h) {
		return false
	}
	s.page.relayout()
	s.refreshTransforms()
	return true
}

// refreshTransforms brings every world transform up to date. Page nodes are
// composed with the viewport's view matrix, so world space is screen space.
func (s *Scene) refreshTransforms() {
	view := s.viewport.viewMatrix()
	changed := !s.viewInit || view != s.lastView
	s.lastView, s.viewInit = view, true
	updateWorldTransform(s.root, view, 1, changed)
	updateWorldTransform(s.overlay, identityTransform, 1, false)
}

// Draw renders the page, the overlay and any trigger markers.
func (s *Scene) Draw(screen *ebiten.Image) {
	if s.ClearColor.A > 0 {
		screen.Fill(s.ClearColor.RGBA())
	}
	s.refreshTransforms()

	var stats debugStats
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}
	cull := s.viewport.ScreenBounds()
	s.traverse(screen, s.root, cull, &stats)
	s.traverse(screen, s.overlay, cull, &stats)
	drawMarkers(screen, s.observer, s.viewport, s.debug)

	if s.debug {
		stats.drawTime = time.Since(t0)
		s.debugLog(stats)
	}
	s.flushScreenshots(screen)
}
