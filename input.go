package pinscroll

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tanema/gween/ease"
)

// ScrollConfig controls how platform input scrolls the viewport.
type ScrollConfig struct {
	// WheelStep is the scroll distance in pixels per wheel notch.
	WheelStep float64
	// KeyStep is the scroll distance per arrow key press or repeat.
	KeyStep float64
	// PageFraction is the share of the viewport height PageUp/PageDown/Space
	// scroll by.
	PageFraction float64
	// JumpDuration animates page and Home/End jumps over this many seconds.
	// Zero jumps immediately.
	JumpDuration float32
	// Disabled ignores wheel and keyboard input. Injected events still apply.
	Disabled bool
}

// DefaultScrollConfig returns the configuration NewScene uses.
func DefaultScrollConfig() ScrollConfig {
	return ScrollConfig{
		WheelStep:    60,
		KeyStep:      40,
		PageFraction: 0.9,
		JumpDuration: 0.35,
	}
}

// Key repeat timing, in ticks.
const (
	keyRepeatDelay    = 24
	keyRepeatInterval = 3
)

// scrollInput is one frame of scroll-related input.
type scrollInput struct {
	wheel float64 // notches, positive scrolls up
	lines float64 // arrow keys, positive scrolls down
	pages float64 // page keys, positive scrolls down
	home  bool
	end   bool
}

// pollScrollInput reads the wheel and keyboard.
func pollScrollInput() scrollInput {
	_, wy := ebiten.Wheel()
	in := scrollInput{wheel: wy}
	if keyRepeated(ebiten.KeyArrowDown) {
		in.lines++
	}
	if keyRepeated(ebiten.KeyArrowUp) {
		in.lines--
	}
	if keyRepeated(ebiten.KeyPageDown) {
		in.pages++
	}
	if keyRepeated(ebiten.KeyPageUp) {
		in.pages--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if ebiten.IsKeyPressed(ebiten.KeyShift) {
			in.pages--
		} else {
			in.pages++
		}
	}
	in.home = inpututil.IsKeyJustPressed(ebiten.KeyHome)
	in.end = inpututil.IsKeyJustPressed(ebiten.KeyEnd)
	return in
}

// keyRepeated reports a press on the first tick and then at the repeat rate.
func keyRepeated(k ebiten.Key) bool {
	d := inpututil.KeyPressDuration(k)
	if d == 1 {
		return true
	}
	return d >= keyRepeatDelay && (d-keyRepeatDelay)%keyRepeatInterval == 0
}

// applyInput scrolls the viewport for one frame of input.
func (s *Scene) applyInput(in scrollInput) {
	cfg := s.ScrollConfig
	if cfg.Disabled {
		return
	}
	v := s.viewport
	switch {
	case in.home:
		v.ScrollTo(0, cfg.JumpDuration, ease.OutCubic)
	case in.end:
		v.ScrollTo(v.MaxScroll(), cfg.JumpDuration, ease.OutCubic)
	case in.pages != 0:
		v.ScrollTo(v.ScrollY+in.pages*cfg.PageFraction*v.Height, cfg.JumpDuration, ease.OutCubic)
	}
	if dy := in.lines*cfg.KeyStep - in.wheel*cfg.WheelStep; dy != 0 {
		v.ScrollBy(dy)
	}
}
