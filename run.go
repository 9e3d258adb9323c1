package pinscroll

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window and game loop started by Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// ShowFPS adds an FPS widget to the scene overlay.
	ShowFPS bool
	// Resizable lets the user resize the window; the scene relayouts to match.
	Resizable bool
	// Debug turns on scene debug mode.
	Debug bool
}

// game adapts a Scene to ebiten.Game.
type game struct {
	scene *Scene
}

func (g *game) Update() error {
	return g.scene.Update()
}

func (g *game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.scene.Resize(float64(outsideWidth), float64(outsideHeight))
	return outsideWidth, outsideHeight
}

// Run opens a window and runs the scene until the window closes or the
// scene's update func returns an error.
func Run(scene *Scene, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("pinscroll: invalid window size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	if cfg.Debug {
		scene.SetDebugMode(true)
	}
	if cfg.ShowFPS {
		scene.Overlay().AddChild(NewFPSWidget(scene.Viewport()))
	}
	scene.Resize(float64(cfg.Width), float64(cfg.Height))
	return ebiten.RunGame(&game{scene: scene})
}
