package pinscroll

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// Font measures and (optionally) draws single lines of text.
// TTFFont is the renderable implementation; other implementations are
// measured but not drawn.
type Font interface {
	// MeasureString returns the width and height of a single line.
	MeasureString(s string) (width, height float64)
	// LineHeight returns the vertical distance between baselines.
	LineHeight() float64
}

// TextBlock holds the content and layout state of a text node.
type TextBlock struct {
	Content string
	Font    Font
	Color   Color
	Align   TextAlign
	// WrapWidth wraps lines at word boundaries when > 0.
	WrapWidth float64

	lines       []textLine
	measuredW   float64
	measuredH   float64
	layoutDirty bool
}

// textLine is one laid-out line: its byte range in Content and its offset
// within the block.
type textLine struct {
	text       string
	start, end int
	x, y, w    float64
}

// SetContent replaces the text and schedules a relayout.
func (tb *TextBlock) SetContent(s string) {
	if tb.Content == s {
		return
	}
	tb.Content = s
	tb.layoutDirty = true
}

// Invalidate forces the next Measure to relayout, e.g. after changing
// WrapWidth or Font.
func (tb *TextBlock) Invalidate() {
	tb.layoutDirty = true
}

// Measure returns the laid-out block size.
func (tb *TextBlock) Measure() (w, h float64) {
	tb.layout()
	return tb.measuredW, tb.measuredH
}

// RunBounds returns the local-space box covering Content[start:end]. The run
// must not span a line break. Returns an empty Rect if the range is invalid.
func (tb *TextBlock) RunBounds(start, end int) Rect {
	tb.layout()
	if start < 0 || end > len(tb.Content) || start >= end {
		return Rect{}
	}
	for _, ln := range tb.lines {
		if start < ln.start || end > ln.end {
			continue
		}
		prefixW, _ := tb.Font.MeasureString(tb.Content[ln.start:start])
		runW, _ := tb.Font.MeasureString(tb.Content[start:end])
		return Rect{X: ln.x + prefixW, Y: ln.y, Width: runW, Height: tb.Font.LineHeight()}
	}
	return Rect{}
}

// layout splits Content into lines, applying wrapping and alignment.
func (tb *TextBlock) layout() {
	if !tb.layoutDirty {
		return
	}
	tb.layoutDirty = false
	tb.lines = tb.lines[:0]
	tb.measuredW, tb.measuredH = 0, 0
	if tb.Font == nil || tb.Content == "" {
		return
	}

	lh := tb.Font.LineHeight()
	offset := 0
	for _, para := range strings.Split(tb.Content, "\n") {
		for _, ln := range tb.wrap(para, offset) {
			ln.y = float64(len(tb.lines)) * lh
			ln.w, _ = tb.Font.MeasureString(ln.text)
			tb.measuredW = max(tb.measuredW, ln.w)
			tb.lines = append(tb.lines, ln)
		}
		offset += len(para) + 1
	}
	if tb.WrapWidth > 0 {
		tb.measuredW = max(tb.measuredW, tb.WrapWidth)
	}
	tb.measuredH = float64(len(tb.lines)) * lh

	for i := range tb.lines {
		switch tb.Align {
		case TextAlignCenter:
			tb.lines[i].x = (tb.measuredW - tb.lines[i].w) / 2
		case TextAlignRight:
			tb.lines[i].x = tb.measuredW - tb.lines[i].w
		}
	}
}

// wrap breaks one paragraph (starting at byte offset base in Content) into
// lines no wider than WrapWidth. Words longer than WrapWidth get a line of
// their own.
func (tb *TextBlock) wrap(para string, base int) []textLine {
	if tb.WrapWidth <= 0 || para == "" {
		return []textLine{{text: para, start: base, end: base + len(para)}}
	}
	var out []textLine
	lineStart := 0
	lastBreak := -1
	for i := 0; i <= len(para); i++ {
		if i < len(para) && para[i] != ' ' {
			continue
		}
		w, _ := tb.Font.MeasureString(para[lineStart:i])
		if w > tb.WrapWidth && lastBreak > lineStart {
			out = append(out, textLine{text: para[lineStart:lastBreak], start: base + lineStart, end: base + lastBreak})
			lineStart = lastBreak + 1
		}
		lastBreak = i
	}
	if lineStart <= len(para) {
		out = append(out, textLine{text: para[lineStart:], start: base + lineStart, end: base + len(para)})
	}
	return out
}

// --- TTFFont ---

// TTFFont wraps Ebitengine's text/v2 for TrueType font rendering.
type TTFFont struct {
	face *text.GoTextFace
	size float64
	lh   float64 // cached line height
}

// LoadTTFFont loads a TrueType font from raw TTF/OTF data at the given size.
func LoadTTFFont(ttfData []byte, size float64) (*TTFFont, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(ttfData))
	if err != nil {
		return nil, fmt.Errorf("pinscroll: failed to parse TTF data: %w", err)
	}
	face := &text.GoTextFace{
		Source: source,
		Size:   size,
	}
	m := face.Metrics()
	return &TTFFont{
		face: face,
		size: size,
		lh:   m.HAscent + m.HDescent + m.HLineGap,
	}, nil
}

// MeasureString returns the width and height of the rendered text.
func (f *TTFFont) MeasureString(s string) (width, height float64) {
	return text.Measure(s, f.face, f.lh)
}

// LineHeight returns the vertical distance between baselines.
func (f *TTFFont) LineHeight() float64 {
	return f.lh
}

// Size returns the font size in pixels.
func (f *TTFFont) Size() float64 {
	return f.size
}

// Face returns the underlying GoTextFace for direct Ebitengine text/v2 rendering.
func (f *TTFFont) Face() *text.GoTextFace {
	return f.face
}

// drawText renders a text node's lines with its world transform.
func drawText(dst *ebiten.Image, n *Node) {
	tb := n.TextBlock
	f, ok := tb.Font.(*TTFFont)
	if !ok {
		return
	}
	tb.layout()
	m := n.worldTransform
	alpha := tb.Color.A * n.worldAlpha
	for _, ln := range tb.lines {
		if ln.text == "" {
			continue
		}
		op := &text.DrawOptions{}
		op.GeoM.Translate(ln.x, ln.y)
		op.GeoM.Concat(geoM(m))
		op.ColorScale.Scale(
			float32(tb.Color.R*alpha),
			float32(tb.Color.G*alpha),
			float32(tb.Color.B*alpha),
			float32(alpha),
		)
		op.LineSpacing = f.lh
		text.Draw(dst, ln.text, f.face, op)
	}
}
