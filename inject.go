package pinscroll

import "github.com/tanema/gween/ease"

type syntheticKind uint8

const (
	syntheticScrollBy syntheticKind = iota
	syntheticScrollTo
	syntheticResize
)

// syntheticEvent is one injected platform event. Each consumes one frame, in
// place of real wheel and keyboard input.
type syntheticEvent struct {
	kind     syntheticKind
	dy, y    float64
	w, h     float64
	duration float32
}

// InjectScroll queues a scroll by dy pixels (positive scrolls down). The
// event is applied on the next Update.
func (s *Scene) InjectScroll(dy float64) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{kind: syntheticScrollBy, dy: dy})
}

// InjectScrollTo queues a scroll to page offset y, animated over duration
// seconds when duration > 0.
func (s *Scene) InjectScrollTo(y float64, duration float32) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{kind: syntheticScrollTo, y: y, duration: duration})
}

// InjectResize queues a viewport resize.
func (s *Scene) InjectResize(w, h float64) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{kind: syntheticResize, w: w, h: h})
}

// InjectWheel queues a wheel scroll spread over frames frames, as a
// trackpad gesture would arrive. Positive totalDY scrolls down.
func (s *Scene) InjectWheel(totalDY float64, frames int) {
	if frames < 1 {
		frames = 1
	}
	per := totalDY / float64(frames)
	for i := 0; i < frames; i++ {
		s.InjectScroll(per)
	}
}

// processInjected pops one event from the inject queue and applies it.
// Returns true if an event was consumed (real input is skipped that frame).
func (s *Scene) processInjected() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	switch evt.kind {
	case syntheticScrollBy:
		s.viewport.ScrollBy(evt.dy)
	case syntheticScrollTo:
		s.viewport.ScrollTo(evt.y, evt.duration, ease.OutCubic)
	case syntheticResize:
		s.Resize(evt.w, evt.h)
	}
	return true
}
