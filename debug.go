package pinscroll

import (
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// globalDebug mirrors the debug flag of the most recently configured Scene so
// that node-level checks can run without a scene reference.
var globalDebug bool

// logf writes a [pinscroll] line to stderr when debug mode is on.
func logf(format string, args ...any) {
	if !globalDebug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[pinscroll] "+format+"\n", args...)
}

// debugStats holds per-frame timing and draw metrics.
// Only populated when Scene.debug is true.
type debugStats struct {
	drawTime      time.Duration
	nodeCount     int
	culledCount   int
	drawCallCount int
}

// debugLog prints timing and draw stats to stderr.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[pinscroll] draw: %v | nodes: %d | culled: %d | draw calls: %d\n",
		stats.drawTime, stats.nodeCount, stats.culledCount, stats.drawCallCount)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("pinscroll debug: %s on disposed node %q", op, n.Name))
	}
}

// debugCheckTreeDepth warns on stderr if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[pinscroll] warning: tree depth %d exceeds %d (node %q)\n",
			depth, debugMaxTreeDepth, n.Name)
	}
}

// --- Markers ---

var (
	markerStart    = color.RGBA{0x00, 0xa0, 0x00, 0xff}
	markerEnd      = color.RGBA{0xd0, 0x20, 0x20, 0xff}
	markerScroller = color.RGBA{0x20, 0x60, 0xe0, 0xff}
)

// drawMarkers draws start and end lines for every trigger with Markers set
// (or every trigger in debug mode), plus the scroller line they are compared
// against.
func drawMarkers(dst *ebiten.Image, o *Observer, v *Viewport, all bool) {
	w := float32(v.Width)
	for _, t := range o.triggers {
		if !all && !t.region.Markers {
			continue
		}
		// Scroll positions are where the viewport's reference line meets the
		// anchor, so the markers sit on the anchor at start/end in page space.
		box := t.region.Anchor.layoutBounds(false)
		startLine := box.Y + t.region.Start.Element*box.Height + t.region.Start.Pixels
		_, sy := v.PageToScreen(0, startLine)
		_, ey := v.PageToScreen(0, startLine+t.Length())

		vector.StrokeLine(dst, w-140, float32(sy), w, float32(sy), 1, markerStart, false)
		vector.StrokeLine(dst, w-140, float32(ey), w, float32(ey), 1, markerEnd, false)
		ebitenutil.DebugPrintAt(dst, "start "+t.region.Name, int(w)-136, int(sy)+2)
		ebitenutil.DebugPrintAt(dst, "end "+t.region.Name, int(w)-136, int(ey)+2)

		scroller := float32(t.region.Start.Viewport * v.Height)
		vector.StrokeLine(dst, w-60, scroller, w, scroller, 1, markerScroller, false)
		ebitenutil.DebugPrintAt(dst, fmt.Sprintf("%.2f", t.progress), int(w)-56, int(scroller)+2)
	}
}
