package pinscroll

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// NewFPSWidget creates a node that displays FPS, TPS and the current scroll
// offset. It redraws about twice a second. Add it to Scene.Overlay() so it
// stays fixed on screen.
func NewFPSWidget(v *Viewport) *Node {
	// 120x48 fits three lines of DebugPrint text.
	img := ebiten.NewImage(120, 48)

	node := NewImage("fps_widget", img, 120, 48)
	node.ZIndex = 1 << 20

	var lastUpdate float64

	node.OnUpdate = func(dt float64) {
		lastUpdate += dt
		if lastUpdate < 0.5 {
			return
		}
		lastUpdate = 0

		img.Clear()
		// Semi-transparent background for readability
		img.Fill(color.RGBA{0, 0, 0, 128})

		scroll := 0.0
		if v != nil {
			scroll = v.ScrollY
		}
		ebitenutil.DebugPrint(img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nY: %.0f",
			ebiten.ActualFPS(), ebiten.ActualTPS(), scroll))
	}

	return node
}
