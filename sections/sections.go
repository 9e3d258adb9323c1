// Package sections provides ready-made scroll-driven page sections built on
// pinscroll: a circle that grows out of a title glyph, a portrait that bursts
// into a full-bleed panel, and a plain filler band.
package sections

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/pinscroll"
)

// Palette colors used by the default section styling.
var (
	White      = pinscroll.Color{R: 1, G: 1, B: 1, A: 1}
	Slate800   = pinscroll.Color{R: 0.118, G: 0.161, B: 0.231, A: 1}
	Slate500   = pinscroll.Color{R: 0.392, G: 0.455, B: 0.545, A: 1}
	Purple500  = pinscroll.Color{R: 0.659, G: 0.333, B: 0.969, A: 1}
	Purple600  = pinscroll.Color{R: 0.576, G: 0.2, B: 0.918, A: 1}
	NightBlue  = pinscroll.Color{R: 0.07, G: 0.09, B: 0.2, A: 1}
	SunsetPink = pinscroll.Color{R: 0.85, G: 0.35, B: 0.45, A: 1}
)

// button is a pill-shaped box with a centred label.
type button struct {
	box   *pinscroll.Node
	label *pinscroll.Node
	padX  float64
	padY  float64
}

func newButton(name, text string, font pinscroll.Font, bg, fg pinscroll.Color) *button {
	b := &button{
		box:   pinscroll.NewBox(name, 0, 0, bg),
		label: pinscroll.NewText(name+"-label", text, font),
		padX:  32,
		padY:  16,
	}
	b.label.TextBlock.Color = fg
	b.label.AnchorX, b.label.AnchorY = 0.5, 0.5
	b.box.AddChild(b.label)
	b.layout()
	return b
}

// layout sizes the pill around its label.
func (b *button) layout() {
	b.label.FitText()
	w := b.label.Width + 2*b.padX
	h := b.label.Height + 2*b.padY
	b.box.SetSize(w, h)
	b.box.CornerRadius = h / 2
	b.label.SetPosition(w/2, h/2)
}

// fitText sets a text node's wrap width and resizes it to the result.
func fitText(n *pinscroll.Node, wrap float64) {
	n.TextBlock.WrapWidth = wrap
	n.TextBlock.Invalidate()
	n.FitText()
}

// gradientImage returns a tall image fading from top to bottom, for use as a
// stand-in backdrop when no image is supplied.
func gradientImage(top, bottom pinscroll.Color) *ebiten.Image {
	const h = 256
	rgba := image.NewRGBA(image.Rect(0, 0, 4, h))
	for y := 0; y < h; y++ {
		t := float64(y) / (h - 1)
		c := pinscroll.Color{
			R: lerp(top.R, bottom.R, t),
			G: lerp(top.G, bottom.G, t),
			B: lerp(top.B, bottom.B, t),
			A: 1,
		}.RGBA()
		for x := 0; x < 4; x++ {
			rgba.SetRGBA(x, y, c)
		}
	}
	return ebiten.NewImageFromImage(rgba)
}

// portraitImage draws a simple radial placeholder portrait.
func portraitImage(inner, outer pinscroll.Color) *ebiten.Image {
	const size = 128
	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	c := float64(size-1) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Min(math.Hypot(float64(x)-c, float64(y)-c)/c, 1)
			rgba.SetRGBA(x, y, pinscroll.Color{
				R: lerp(inner.R, outer.R, d),
				G: lerp(inner.G, outer.G, d),
				B: lerp(inner.B, outer.B, d),
				A: 1,
			}.RGBA())
		}
	}
	return ebiten.NewImageFromImage(rgba)
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
