package sections

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/pinscroll"
)

// GrowCircleConfig configures a GrowCircle section.
type GrowCircleConfig struct {
	// Title is the headline. Mark is the glyph inside it the circle grows
	// from; it must occur in Title.
	Title string
	Mark  string
	Font  pinscroll.Font
	// Background covers the section. Nil draws a dusk gradient.
	Background *ebiten.Image
	// DotColor fills the growing circle.
	DotColor pinscroll.Color
	// Scrub is the progress lag in seconds. Zero means 1.5; negative
	// disables smoothing.
	Scrub   float64
	Markers bool
}

// Glyph anchor inside the mark's box, as fractions of its width and height.
// Lands the circle's centre on the dot of a question mark.
const (
	markAnchorX = 0.54
	markAnchorY = 0.73
)

// dotSizeVMax is the circle diameter as a multiple of the larger viewport
// side. Large enough that the circle covers the corners when centred.
const dotSizeVMax = 1.42

// GrowCircle is a pinned full-screen section: the title fades in, then a
// circle that starts as a speck on the title's mark glyph grows to cover the
// whole section.
type GrowCircle struct {
	cfg GrowCircleConfig

	root       *pinscroll.Node
	background *pinscroll.Node
	title      *pinscroll.Node
	mark       *pinscroll.Node
	dot        *pinscroll.Node

	trigger  *pinscroll.Trigger
	sequence *pinscroll.Sequence
}

// NewGrowCircle builds the section's nodes. Title defaults to "TITLE ?" and
// Mark to "?".
func NewGrowCircle(cfg GrowCircleConfig) (*GrowCircle, error) {
	if cfg.Title == "" {
		cfg.Title = "TITLE ?"
	}
	if cfg.Mark == "" {
		cfg.Mark = "?"
	}
	if !strings.Contains(cfg.Title, cfg.Mark) {
		return nil, fmt.Errorf("sections: mark %q not in title %q: %w", cfg.Mark, cfg.Title, pinscroll.ErrMissingTarget)
	}
	if cfg.Font == nil {
		return nil, fmt.Errorf("sections: grow circle needs a font: %w", pinscroll.ErrMissingTarget)
	}
	if cfg.DotColor == (pinscroll.Color{}) {
		cfg.DotColor = White
	}
	if cfg.Scrub == 0 {
		cfg.Scrub = 1.5
	}
	if cfg.Background == nil {
		cfg.Background = gradientImage(NightBlue, SunsetPink)
	}

	g := &GrowCircle{cfg: cfg}
	g.root = pinscroll.NewContainer("grow-circle")
	g.root.ClipChildren = true

	g.background = pinscroll.NewImage("background", cfg.Background, 0, 0)
	g.root.AddChild(g.background)

	g.title = pinscroll.NewText("title", cfg.Title, cfg.Font)
	g.title.TextBlock.Align = pinscroll.TextAlignCenter
	g.title.TextBlock.Color = White
	g.title.AnchorX, g.title.AnchorY = 0.5, 0.5
	g.title.ZIndex = 10
	g.root.AddChild(g.title)

	g.mark = pinscroll.NewContainer("mark")
	g.title.AddChild(g.mark)

	g.dot = pinscroll.NewBox("dot", 0, 0, cfg.DotColor)
	g.dot.AnchorX, g.dot.AnchorY = 0.5, 0.5
	g.dot.ZIndex = 20
	g.root.AddChild(g.dot)

	g.resetStyles()
	return g, nil
}

// resetStyles restores the pre-animation look the timeline starts from.
func (g *GrowCircle) resetStyles() {
	g.title.SetAlpha(0)
	g.dot.SetOffset(0, 0)
	g.dot.SetScale(1, 1)
}

// Node implements pinscroll.Section.
func (g *GrowCircle) Node() *pinscroll.Node { return g.root }

// Title returns the headline node.
func (g *GrowCircle) Title() *pinscroll.Node { return g.title }

// Mark returns the node covering the mark glyph inside the title.
func (g *GrowCircle) Mark() *pinscroll.Node { return g.mark }

// Dot returns the growing circle.
func (g *GrowCircle) Dot() *pinscroll.Node { return g.dot }

// Trigger returns the section's trigger, or nil when unmounted.
func (g *GrowCircle) Trigger() *pinscroll.Trigger { return g.trigger }

// Sequence returns the section's timeline, or nil when unmounted.
func (g *GrowCircle) Sequence() *pinscroll.Sequence { return g.sequence }

// Layout implements pinscroll.Section. The section is one viewport tall.
func (g *GrowCircle) Layout(width, viewportHeight float64) float64 {
	g.root.SetSize(width, viewportHeight)
	g.background.SetSize(width, viewportHeight)

	fitText(g.title, width)
	g.title.SetPosition(width/2, viewportHeight/2)

	i := strings.LastIndex(g.cfg.Title, g.cfg.Mark)
	r := g.title.TextBlock.RunBounds(i, i+len(g.cfg.Mark))
	g.mark.SetPosition(r.X, r.Y)
	g.mark.SetSize(r.Width, r.Height)

	d := dotSizeVMax * max(width, viewportHeight)
	g.dot.SetPosition(width/2, viewportHeight/2)
	g.dot.SetSize(d, d)
	g.dot.CornerRadius = d / 2
	return viewportHeight
}

// Timeline returns the section's animation: the title fades in over 0.3,
// then the circle moves from the mark to the centre while scaling from 0.01
// to 1 over 1.0, accelerating.
func (g *GrowCircle) Timeline() *pinscroll.Timeline {
	markX := pinscroll.DeferredValue{
		Name:      "mark-x",
		Reference: g.mark,
		Container: g.root,
		Fn: func(geo pinscroll.Geometry) float64 {
			return geo.Reference.X + geo.Reference.Width*markAnchorX - geo.Container.Width/2
		},
	}
	markY := pinscroll.DeferredValue{
		Name:      "mark-y",
		Reference: g.mark,
		Container: g.root,
		Fn: func(geo pinscroll.Geometry) float64 {
			return geo.Reference.Y + geo.Reference.Height*markAnchorY - geo.Container.Height/2
		},
	}

	tl := pinscroll.NewTimeline(pinscroll.TimelineDefaults{Ease: "none"})
	tl.Set(pinscroll.Targets{g.dot}, map[pinscroll.Property]float64{pinscroll.PropScale: 0.01})
	tl.To(pinscroll.Targets{g.title},
		pinscroll.Props{pinscroll.PropOpacity: pinscroll.Lit(1)},
		pinscroll.Dur(0.3), pinscroll.Named("title"))
	tl.FromTo(pinscroll.Targets{g.dot},
		pinscroll.Props{
			pinscroll.PropX:     pinscroll.Deferred(markX),
			pinscroll.PropY:     pinscroll.Deferred(markY),
			pinscroll.PropScale: pinscroll.Lit(0.01),
		},
		pinscroll.Props{
			pinscroll.PropX:     pinscroll.Lit(0),
			pinscroll.PropY:     pinscroll.Lit(0),
			pinscroll.PropScale: pinscroll.Lit(1),
		},
		pinscroll.Dur(1), pinscroll.Eased("power3.in"), pinscroll.Named("dot"))
	return tl
}

// Region returns the section's trigger region: pinned from "top top" for one
// viewport height.
func (g *GrowCircle) Region() pinscroll.TriggerRegion {
	scrub := g.cfg.Scrub
	if scrub < 0 {
		scrub = 0
	}
	return pinscroll.TriggerRegion{
		Anchor:     g.root,
		Start:      pinscroll.MustParseOffset("top top"),
		End:        pinscroll.MustParseOffset("+=100%"),
		Pinned:     true,
		PinSpacing: true,
		Scrub:      scrub,
		Markers:    g.cfg.Markers,
		Name:       "grow-circle",
	}
}

// Mount implements pinscroll.Section.
func (g *GrowCircle) Mount(s *pinscroll.Scene) error {
	if g.sequence != nil {
		return nil
	}
	for _, n := range []*pinscroll.Node{g.root, g.title, g.mark, g.dot} {
		if n == nil || n.IsDisposed() {
			return fmt.Errorf("sections: grow circle: %w", pinscroll.ErrMissingTarget)
		}
	}
	g.resetStyles()

	trig, err := s.Observer().Register(g.Region(), nil)
	if err != nil {
		return fmt.Errorf("sections: grow circle: %w", err)
	}
	seq, err := g.Timeline().Build(trig, s.BuildOptions()...)
	if err != nil {
		trig.Release()
		return fmt.Errorf("sections: grow circle: %w", err)
	}
	g.trigger, g.sequence = trig, seq
	return nil
}

// Unmount implements pinscroll.Section.
func (g *GrowCircle) Unmount() {
	if g.sequence != nil {
		g.sequence.Dispose()
		g.sequence = nil
	}
	if g.trigger != nil {
		g.trigger.Release()
		g.trigger = nil
	}
}
