package sections

import "github.com/phanxgames/pinscroll"

// Band is a plain, unanimated section used to give the page scroll room
// before and after pinned sections.
type Band struct {
	root  *pinscroll.Node
	label *pinscroll.Node
	// Screens is the band height in viewport heights. Zero means 1.
	Screens float64
}

// NewBand returns a band filled with c. font may be nil for a band without
// a label.
func NewBand(name string, c pinscroll.Color, label string, font pinscroll.Font) *Band {
	b := &Band{root: pinscroll.NewBox(name, 0, 0, c)}
	if font != nil && label != "" {
		b.label = pinscroll.NewText(name+"-label", label, font)
		b.label.TextBlock.Align = pinscroll.TextAlignCenter
		b.label.AnchorX, b.label.AnchorY = 0.5, 0.5
		b.root.AddChild(b.label)
	}
	return b
}

// Node implements pinscroll.Section.
func (b *Band) Node() *pinscroll.Node { return b.root }

// Label returns the label node, or nil.
func (b *Band) Label() *pinscroll.Node { return b.label }

// Layout implements pinscroll.Section.
func (b *Band) Layout(width, viewportHeight float64) float64 {
	screens := b.Screens
	if screens <= 0 {
		screens = 1
	}
	h := screens * viewportHeight
	b.root.SetSize(width, h)
	if b.label != nil {
		fitText(b.label, width*0.8)
		b.label.SetPosition(width/2, viewportHeight/2)
	}
	return h
}

// Mount implements pinscroll.Section.
func (b *Band) Mount(*pinscroll.Scene) error { return nil }

// Unmount implements pinscroll.Section.
func (b *Band) Unmount() {}
