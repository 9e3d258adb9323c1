package sections

import (
	_ "embed"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/pinscroll"
)

//go:embed growimage.yaml
var growImageScenario []byte

// GrowImageConfig configures a GrowImage section.
type GrowImageConfig struct {
	// Heading sets headlines; Body sets paragraphs and buttons. Body
	// defaults to Heading.
	Heading pinscroll.Font
	Body    pinscroll.Font
	// Portrait fills the round image. Nil draws a placeholder.
	Portrait *ebiten.Image
	// Scenario replaces the built-in timeline YAML. It must bind the same
	// names: section, circle, initial, image and final.
	Scenario []byte
	// Scrub overrides the scenario's scrub when non-zero; negative disables
	// smoothing.
	Scrub   float64
	Markers bool
}

// Layout constants, in pixels.
const (
	circleSize      = 220
	portraitSize    = 200
	initialMaxWidth = 768
	initialGap      = 24
	initialMargin   = 48
	finalLeft       = 128
	finalMaxWidth   = 576
	finalGap        = 24
)

// GrowImage is a pinned full-screen section: a purple circle swells to fill
// the screen while the intro copy fades up and out, the round portrait grows
// and slides right into a rounded square, and the closing copy pops in on
// the left.
type GrowImage struct {
	cfg      GrowImageConfig
	scenario *pinscroll.Scenario

	root    *pinscroll.Node
	circle  *pinscroll.Node
	initial *pinscroll.Node
	image   *pinscroll.Node
	final   *pinscroll.Node

	initialText []*pinscroll.Node
	initialBtn  *button
	finalText   []*pinscroll.Node
	finalBtn    *button

	trigger  *pinscroll.Trigger
	sequence *pinscroll.Sequence
}

// NewGrowImage builds the section's nodes and parses its scenario.
func NewGrowImage(cfg GrowImageConfig) (*GrowImage, error) {
	if cfg.Heading == nil {
		return nil, fmt.Errorf("sections: grow image needs a heading font: %w", pinscroll.ErrMissingTarget)
	}
	if cfg.Body == nil {
		cfg.Body = cfg.Heading
	}
	if cfg.Portrait == nil {
		cfg.Portrait = portraitImage(SunsetPink, Purple600)
	}
	data := cfg.Scenario
	if data == nil {
		data = growImageScenario
	}
	sc, err := pinscroll.LoadScenario(data)
	if err != nil {
		return nil, fmt.Errorf("sections: grow image: %w", err)
	}

	g := &GrowImage{cfg: cfg, scenario: sc}
	g.root = pinscroll.NewBox("grow-image", 0, 0, White)
	g.root.ClipChildren = true

	g.circle = pinscroll.NewBox("circle", circleSize, circleSize, Purple600)
	g.circle.AnchorX, g.circle.AnchorY = 0.5, 0.5
	g.circle.CornerRadius = circleSize / 2
	g.root.AddChild(g.circle)

	g.initial = pinscroll.NewContainer("initial")
	g.initial.AnchorX = 0.5
	g.initial.ZIndex = 5
	g.initialText = []*pinscroll.Node{
		centredText("initial-heading", "BRINGING THE FUTURE TO YOUR HANDS", cfg.Heading, Slate800),
		centredText("initial-body", "Experience seamless innovation with technology built around you. "+
			"Scroll on to see what comes next.", cfg.Body, Slate500),
	}
	g.initialBtn = newButton("read-more", "Read More", cfg.Body, Purple500, White)
	for _, n := range g.initialText {
		g.initial.AddChild(n)
	}
	g.initial.AddChild(g.initialBtn.box)
	g.root.AddChild(g.initial)

	g.image = pinscroll.NewImage("image", cfg.Portrait, portraitSize, portraitSize)
	g.image.AnchorX = 0.5
	g.image.ZIndex = 10
	g.root.AddChild(g.image)

	g.final = pinscroll.NewContainer("final")
	g.final.AnchorY = 0.5
	g.final.ZIndex = 15
	heading := pinscroll.NewText("final-heading", "Welcome to the Future", cfg.Heading)
	heading.TextBlock.Color = White
	body := pinscroll.NewText("final-body", "Every detail is designed to move with you. "+
		"This is what technology feels like when it gets out of the way.", cfg.Body)
	body.TextBlock.Color = White
	g.finalText = []*pinscroll.Node{heading, body}
	g.finalBtn = newButton("explore-more", "Explore More", cfg.Body, White, Purple600)
	for _, n := range g.finalText {
		g.final.AddChild(n)
	}
	g.final.AddChild(g.finalBtn.box)
	g.root.AddChild(g.final)

	g.resetStyles()
	return g, nil
}

func centredText(name, content string, font pinscroll.Font, c pinscroll.Color) *pinscroll.Node {
	n := pinscroll.NewText(name, content, font)
	n.TextBlock.Align = pinscroll.TextAlignCenter
	n.TextBlock.Color = c
	n.AnchorX = 0.5
	return n
}

// resetStyles restores the animated fields the scenario starts from.
func (g *GrowImage) resetStyles() {
	g.circle.SetScale(1, 1)
	g.initial.SetAlpha(1)
	g.initial.SetOffset(0, 0)
	g.image.SetScale(1, 1)
	g.image.SetOffset(0, 0)
	g.image.CornerRadius = portraitSize / 2
	g.final.SetAlpha(1)
	g.final.SetScale(1, 1)
	g.final.SetOffset(0, 0)
}

// Node implements pinscroll.Section.
func (g *GrowImage) Node() *pinscroll.Node { return g.root }

// Circle returns the swelling background circle.
func (g *GrowImage) Circle() *pinscroll.Node { return g.circle }

// Initial returns the intro copy group.
func (g *GrowImage) Initial() *pinscroll.Node { return g.initial }

// Image returns the portrait.
func (g *GrowImage) Image() *pinscroll.Node { return g.image }

// Final returns the closing copy group.
func (g *GrowImage) Final() *pinscroll.Node { return g.final }

// Trigger returns the section's trigger, or nil when unmounted.
func (g *GrowImage) Trigger() *pinscroll.Trigger { return g.trigger }

// Sequence returns the section's timeline, or nil when unmounted.
func (g *GrowImage) Sequence() *pinscroll.Sequence { return g.sequence }

// Layout implements pinscroll.Section. The section is one viewport tall.
func (g *GrowImage) Layout(width, viewportHeight float64) float64 {
	g.root.SetSize(width, viewportHeight)
	g.circle.SetPosition(width/2, viewportHeight/2)

	colW := min(initialMaxWidth, width-64)
	y := 0.0
	for _, n := range g.initialText {
		fitText(n, colW)
		n.SetPosition(colW/2, y)
		y += n.Height + initialGap
	}
	g.initialBtn.layout()
	g.initialBtn.box.AnchorX = 0.5
	g.initialBtn.box.SetPosition(colW/2, y)
	y += g.initialBtn.box.Height
	g.initial.SetSize(colW, y)

	top := max((viewportHeight-(y+initialMargin+portraitSize))/2, 0)
	g.initial.SetPosition(width/2, top)
	g.image.SetPosition(width/2, top+y+initialMargin)

	finW := min(finalMaxWidth, width-finalLeft-32)
	y = 0
	for _, n := range g.finalText {
		fitText(n, finW)
		n.SetPosition(0, y)
		y += n.Height + finalGap
	}
	g.finalBtn.layout()
	g.finalBtn.box.SetPosition(0, y)
	y += g.finalBtn.box.Height
	g.final.SetSize(finW, y)
	g.final.SetPosition(finalLeft, viewportHeight/2)
	return viewportHeight
}

// Bindings returns the node names the scenario refers to.
func (g *GrowImage) Bindings() pinscroll.Bindings {
	return pinscroll.Bindings{Nodes: map[string]*pinscroll.Node{
		"section": g.root,
		"circle":  g.circle,
		"initial": g.initial,
		"image":   g.image,
		"final":   g.final,
	}}
}

// Mount implements pinscroll.Section.
func (g *GrowImage) Mount(s *pinscroll.Scene) error {
	if g.sequence != nil {
		return nil
	}
	tl, region, err := g.scenario.Compile(g.Bindings())
	if err != nil {
		return fmt.Errorf("sections: grow image: %w", err)
	}
	switch {
	case g.cfg.Scrub > 0:
		region.Scrub = g.cfg.Scrub
	case g.cfg.Scrub < 0:
		region.Scrub = 0
	}
	region.Markers = region.Markers || g.cfg.Markers
	g.resetStyles()

	trig, err := s.Observer().Register(region, nil)
	if err != nil {
		return fmt.Errorf("sections: grow image: %w", err)
	}
	seq, err := tl.Build(trig, s.BuildOptions()...)
	if err != nil {
		trig.Release()
		return fmt.Errorf("sections: grow image: %w", err)
	}
	g.trigger, g.sequence = trig, seq
	return nil
}

// Unmount implements pinscroll.Section.
func (g *GrowImage) Unmount() {
	if g.sequence != nil {
		g.sequence.Dispose()
		g.sequence = nil
	}
	if g.trigger != nil {
		g.trigger.Release()
		g.trigger = nil
	}
}
