package pinscroll

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// whiteTexel is a 1x1 region in the middle of a 3x3 white image. Sampling the
// centre of a padded image keeps triangle edges from bleeding.
var whiteTexel *ebiten.Image

func init() {
	img := ebiten.NewImage(3, 3)
	img.Fill(ColorWhite.RGBA())
	whiteTexel = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}

// maxArcSegments caps the vertices per rounded corner.
const maxArcSegments = 24

// geoM converts an affine matrix to an ebiten.GeoM.
func geoM(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

// drawOrder returns children sorted by ZIndex, stable in insertion order.
func (n *Node) drawOrder() []*Node {
	if n.childrenSorted && len(n.sortedChildren) == len(n.children) {
		return n.sortedChildren
	}
	buf := append(n.sortedChildren[:0], n.children...)
	for i := 1; i < len(buf); i++ {
		c := buf[i]
		j := i - 1
		for j >= 0 && buf[j].ZIndex > c.ZIndex {
			buf[j+1] = buf[j]
			j--
		}
		buf[j+1] = c
	}
	n.sortedChildren = buf
	n.childrenSorted = true
	return buf
}

// traverse draws n and its subtree. World transforms must be current.
func (s *Scene) traverse(dst *ebiten.Image, n *Node, cull Rect, stats *debugStats) {
	if !n.Visible || n.worldAlpha <= 0 {
		return
	}
	stats.nodeCount++

	aabb := n.Bounds()
	culled := s.viewport.CullEnabled && n.Type != NodeTypeContainer && !aabb.Intersects(cull)
	if culled {
		stats.culledCount++
	} else {
		switch n.Type {
		case NodeTypeSprite:
			drawSprite(dst, n)
			stats.drawCallCount++
		case NodeTypeText:
			if n.TextBlock != nil {
				drawText(dst, n)
				stats.drawCallCount++
			}
		}
	}

	if len(n.children) == 0 {
		return
	}
	if n.ClipChildren {
		clip := intersectRect(aabb, cull)
		if clip.Empty() {
			return
		}
		r := image.Rect(
			int(math.Floor(clip.X)), int(math.Floor(clip.Y)),
			int(math.Ceil(clip.Right())), int(math.Ceil(clip.Bottom())),
		)
		dst = dst.SubImage(r.Intersect(dst.Bounds())).(*ebiten.Image)
		cull = clip
	}
	for _, c := range n.drawOrder() {
		s.traverse(dst, c, cull, stats)
	}
}

func intersectRect(a, b Rect) Rect {
	x0 := math.Max(a.X, b.X)
	y0 := math.Max(a.Y, b.Y)
	x1 := math.Min(a.Right(), b.Right())
	y1 := math.Min(a.Bottom(), b.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// drawSprite draws a solid or image box, rounded when CornerRadius > 0.
func drawSprite(dst *ebiten.Image, n *Node) {
	w, h := n.drawSize()
	if w <= 0 || h <= 0 {
		return
	}
	a := n.Color.A * n.worldAlpha
	src := whiteTexel
	crop := image.Rectangle{}
	if n.Image != nil {
		src = n.Image
		crop = coverCrop(n.Image.Bounds(), w, h)
	}

	if n.CornerRadius <= 0 {
		op := &ebiten.DrawImageOptions{}
		sw, sh := 1.0, 1.0
		if n.Image != nil {
			src = n.Image.SubImage(crop).(*ebiten.Image)
			sw, sh = float64(crop.Dx()), float64(crop.Dy())
		}
		op.GeoM.Scale(w/sw, h/sh)
		op.GeoM.Concat(geoM(n.worldTransform))
		op.ColorScale.Scale(float32(n.Color.R*a), float32(n.Color.G*a), float32(n.Color.B*a), float32(a))
		op.Filter = ebiten.FilterLinear
		dst.DrawImage(src, op)
		return
	}

	verts, idx := roundedRectFan(w, h, n.CornerRadius)
	sb := src.Bounds()
	for i := range verts {
		lx, ly := float64(verts[i].DstX), float64(verts[i].DstY)
		x, y := transformPoint(n.worldTransform, lx, ly)
		verts[i].DstX, verts[i].DstY = float32(x), float32(y)
		if n.Image != nil {
			verts[i].SrcX = float32(float64(crop.Min.X) + lx/w*float64(crop.Dx()))
			verts[i].SrcY = float32(float64(crop.Min.Y) + ly/h*float64(crop.Dy()))
		} else {
			verts[i].SrcX = float32(sb.Min.X) + 0.5
			verts[i].SrcY = float32(sb.Min.Y) + 0.5
		}
		verts[i].ColorR = float32(n.Color.R * a)
		verts[i].ColorG = float32(n.Color.G * a)
		verts[i].ColorB = float32(n.Color.B * a)
		verts[i].ColorA = float32(a)
	}
	op := &ebiten.DrawTrianglesOptions{
		ColorScaleMode: ebiten.ColorScaleModePremultipliedAlpha,
		Filter:         ebiten.FilterLinear,
		AntiAlias:      true,
	}
	dst.DrawTriangles(verts, idx, src, op)
}

// coverCrop returns the centred region of b whose aspect ratio matches w×h.
func coverCrop(b image.Rectangle, w, h float64) image.Rectangle {
	iw, ih := float64(b.Dx()), float64(b.Dy())
	if iw <= 0 || ih <= 0 {
		return b
	}
	target := w / h
	if iw/ih > target {
		cw := ih * target
		x0 := b.Min.X + int((iw-cw)/2)
		return image.Rect(x0, b.Min.Y, x0+int(math.Round(cw)), b.Max.Y)
	}
	ch := iw / target
	y0 := b.Min.Y + int((ih-ch)/2)
	return image.Rect(b.Min.X, y0, b.Max.X, y0+int(math.Round(ch)))
}

// roundedRectFan returns a triangle fan covering a w×h box with corners of
// radius r, clamped to half the shorter side. Vertex DstX/DstY are local.
func roundedRectFan(w, h, r float64) ([]ebiten.Vertex, []uint16) {
	r = math.Min(r, math.Min(w, h)/2)
	seg := int(math.Ceil(r / 2))
	seg = max(4, min(seg, maxArcSegments))

	corners := [4]struct{ cx, cy, start float64 }{
		{w - r, r, -math.Pi / 2}, // top-right
		{w - r, h - r, 0},        // bottom-right
		{r, h - r, math.Pi / 2},  // bottom-left
		{r, r, math.Pi},          // top-left
	}

	verts := make([]ebiten.Vertex, 0, 1+4*(seg+1))
	verts = append(verts, ebiten.Vertex{DstX: float32(w / 2), DstY: float32(h / 2)})
	for _, c := range corners {
		for i := 0; i <= seg; i++ {
			ang := c.start + float64(i)/float64(seg)*math.Pi/2
			verts = append(verts, ebiten.Vertex{
				DstX: float32(c.cx + r*math.Cos(ang)),
				DstY: float32(c.cy + r*math.Sin(ang)),
			})
		}
	}

	rim := len(verts) - 1
	idx := make([]uint16, 0, rim*3)
	for i := 1; i <= rim; i++ {
		next := i + 1
		if next > rim {
			next = 1
		}
		idx = append(idx, 0, uint16(i), uint16(next))
	}
	return verts, idx
}
