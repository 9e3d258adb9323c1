package pinscroll

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Viewport is the visible window onto the page: its size in pixels and the
// vertical scroll offset of the page beneath it.
type Viewport struct {
	// Width and Height are the visible window size in pixels.
	Width, Height float64
	// ScrollY is the page-space Y coordinate shown at the top of the window.
	ScrollY float64

	contentHeight float64
	scrollTween   *gween.Tween

	// CullEnabled skips nodes whose screen AABB lies outside the window.
	CullEnabled bool
}

// NewViewport creates a viewport of the given size. A Scene creates its own;
// standalone viewports drive an Observer without one.
func NewViewport(w, h float64) *Viewport {
	return &Viewport{Width: w, Height: h, CullEnabled: true}
}

// ContentHeight returns the page height the viewport scrolls over.
func (v *Viewport) ContentHeight() float64 {
	return v.contentHeight
}

// SetContentHeight sets the page height and re-clamps the scroll offset.
func (v *Viewport) SetContentHeight(h float64) {
	v.contentHeight = math.Max(h, 0)
	v.ScrollY = v.clamp(v.ScrollY)
}

// MaxScroll returns the largest valid ScrollY.
func (v *Viewport) MaxScroll() float64 {
	return math.Max(v.contentHeight-v.Height, 0)
}

// SetScroll jumps to y, clamped to [0, MaxScroll]. Cancels any ScrollTo.
func (v *Viewport) SetScroll(y float64) {
	v.scrollTween = nil
	v.ScrollY = v.clamp(y)
}

// ScrollBy moves the scroll offset by dy pixels.
func (v *Viewport) ScrollBy(dy float64) {
	v.SetScroll(v.ScrollY + dy)
}

// ScrollTo animates the scroll offset to y over duration seconds.
// A non-positive duration jumps immediately. easeFn defaults to ease.OutCubic.
func (v *Viewport) ScrollTo(y float64, duration float32, easeFn ease.TweenFunc) {
	y = v.clamp(y)
	if duration <= 0 {
		v.SetScroll(y)
		return
	}
	if easeFn == nil {
		easeFn = ease.OutCubic
	}
	v.scrollTween = gween.New(float32(v.ScrollY), float32(y), duration, easeFn)
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (v *Viewport) Scrolling() bool {
	return v.scrollTween != nil
}

// Resize changes the window size. Returns true if the size changed.
func (v *Viewport) Resize(w, h float64) bool {
	if w == v.Width && h == v.Height {
		return false
	}
	v.Width, v.Height = w, h
	v.ScrollY = v.clamp(v.ScrollY)
	return true
}

// update advances ScrollTo. Called from Scene.Update.
func (v *Viewport) update(dt float32) {
	if v.scrollTween == nil {
		return
	}
	val, done := v.scrollTween.Update(dt)
	v.ScrollY = v.clamp(float64(val))
	if done {
		v.scrollTween = nil
	}
}

func (v *Viewport) clamp(y float64) float64 {
	if math.IsNaN(y) {
		return v.ScrollY
	}
	return math.Max(0, math.Min(y, v.MaxScroll()))
}

// viewMatrix maps page space to screen space.
func (v *Viewport) viewMatrix() [6]float64 {
	return [6]float64{1, 0, 0, 1, 0, -v.ScrollY}
}

// PageToScreen converts page coordinates to screen coordinates.
func (v *Viewport) PageToScreen(px, py float64) (sx, sy float64) {
	return px, py - v.ScrollY
}

// ScreenToPage converts screen coordinates to page coordinates.
func (v *Viewport) ScreenToPage(sx, sy float64) (px, py float64) {
	return sx, sy + v.ScrollY
}

// VisibleBounds returns the page-space rectangle currently on screen.
func (v *Viewport) VisibleBounds() Rect {
	return Rect{X: 0, Y: v.ScrollY, Width: v.Width, Height: v.Height}
}

// ScreenBounds returns the window rectangle in screen space.
func (v *Viewport) ScreenBounds() Rect {
	return Rect{Width: v.Width, Height: v.Height}
}
