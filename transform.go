package pinscroll

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// boxOrigin returns the top-left corner of the node's layout box in parent
// space, including pin offsets.
func (n *Node) boxOrigin() (float64, float64) {
	return n.X - n.AnchorX*n.Width + n.pinX, n.Y - n.AnchorY*n.Height + n.pinY
}

// drawSize returns the box size as drawn: layout size plus animated growth.
func (n *Node) drawSize() (w, h float64) {
	return n.Width + n.GrowWidth, n.Height + n.GrowHeight
}

// computeLocalTransform computes the local affine matrix from the node's
// layout box and animated properties. Returns [a, b, c, d, tx, ty].
//
// Composition order:
//
//	Translate(-pivot) -> Scale -> Rotate -> Translate(pivot) -> Translate(box origin + offset)
//
// where pivot is (PivotX, PivotY) times the drawn size.
func computeLocalTransform(n *Node) [6]float64 {
	sx := n.ScaleX
	sy := n.ScaleY

	sin, cos := math.Sincos(n.Rotation)

	w, h := n.drawSize()
	px := n.PivotX * w
	py := n.PivotY * h

	// After Scale * Translate(-pivot):
	//   a=sx, b=0, c=0, d=sy, tx=-px*sx, ty=-py*sy
	preTx := -px * sx
	preTy := -py * sy

	// After Rotate:
	ra := cos * sx
	rb := sin * sx
	rc := -sin * sy
	rd := cos * sy
	rtx := cos*preTx - sin*preTy
	rty := sin*preTx + cos*preTy

	ox, oy := n.boxOrigin()
	return [6]float64{ra, rb, rc, rd, rtx + px + ox + n.OffsetX, rty + py + oy + n.OffsetY}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular (determinant ≈ 0).
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// updateWorldTransform recomputes a node's worldTransform and worldAlpha.
// parentRecomputed indicates whether the parent was recomputed this frame,
// which forces recomputation of this node even if it's not dirty.
func updateWorldTransform(n *Node, parentTransform [6]float64, parentAlpha float64, parentRecomputed bool) {
	recompute := n.transformDirty || parentRecomputed
	if recompute {
		local := computeLocalTransform(n)
		n.worldTransform = multiplyAffine(parentTransform, local)
		n.worldAlpha = parentAlpha * n.Alpha
		n.transformDirty = false
	}

	for _, child := range n.children {
		updateWorldTransform(child, n.worldTransform, n.worldAlpha, recompute)
	}
}

// --- Property setters ---

// SetPosition sets the node's layout X and Y and marks it dirty.
func (n *Node) SetPosition(x, y float64) {
	n.X = x
	n.Y = y
	n.transformDirty = true
}

// SetSize sets the node's layout box size and marks it dirty.
func (n *Node) SetSize(w, h float64) {
	n.Width = w
	n.Height = h
	n.transformDirty = true
}

// SetOffset sets the animated translation and marks the node dirty.
func (n *Node) SetOffset(x, y float64) {
	n.OffsetX = x
	n.OffsetY = y
	n.transformDirty = true
}

// SetScale sets the node's ScaleX and ScaleY and marks it dirty.
func (n *Node) SetScale(sx, sy float64) {
	n.ScaleX = sx
	n.ScaleY = sy
	n.transformDirty = true
}

// SetRotation sets the node's rotation (in radians) and marks it dirty.
func (n *Node) SetRotation(r float64) {
	n.Rotation = r
	n.transformDirty = true
}

// SetAlpha sets the node's alpha and marks it dirty.
func (n *Node) SetAlpha(a float64) {
	n.Alpha = a
	n.transformDirty = true
}

// MarkDirty marks the node's transform as dirty, forcing recomputation
// on the next frame. Useful after bulk-setting fields directly.
func (n *Node) MarkDirty() {
	n.transformDirty = true
}

// PinOffset returns the offset the scroll observer currently applies to hold
// the node in place.
func (n *Node) PinOffset() (x, y float64) {
	return n.pinX, n.pinY
}

// setPin writes the observer's pin offset. Returns true if it changed.
func (n *Node) setPin(x, y float64) bool {
	if n.pinX == x && n.pinY == y {
		return false
	}
	n.pinX, n.pinY = x, y
	markSubtreeDirty(n)
	return true
}

// --- Geometry ---

// LayoutBounds returns the node's layout box in page space. Animated
// properties (offset, scale, rotation) are ignored; pin offsets of the node
// and its ancestors are included.
func (n *Node) LayoutBounds() Rect {
	return n.layoutBounds(true)
}

// layoutBounds walks the ancestor chain summing box origins. withPins
// controls whether pin offsets contribute.
func (n *Node) layoutBounds(withPins bool) Rect {
	var x, y float64
	for p := n; p != nil; p = p.Parent {
		ox, oy := p.boxOrigin()
		if !withPins {
			ox -= p.pinX
			oy -= p.pinY
		}
		x += ox
		y += oy
	}
	return Rect{X: x, Y: y, Width: n.Width, Height: n.Height}
}

// WorldTransform returns the most recently computed world matrix.
func (n *Node) WorldTransform() [6]float64 {
	return n.worldTransform
}

// WorldAlpha returns the most recently computed accumulated alpha.
func (n *Node) WorldAlpha() float64 {
	return n.worldAlpha
}

// Bounds returns the axis-aligned bounds of the node's box after all
// transforms, in the coordinate space of the last traversal.
func (n *Node) Bounds() Rect {
	w, h := n.drawSize()
	return worldAABB(n.worldTransform, w, h)
}

// WorldToLocal converts a world-space point to this node's local coordinate space.
func (n *Node) WorldToLocal(wx, wy float64) (lx, ly float64) {
	inv := invertAffine(n.worldTransform)
	return transformPoint(inv, wx, wy)
}

// LocalToWorld converts a local-space point to world-space.
func (n *Node) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return transformPoint(n.worldTransform, lx, ly)
}

// worldAABB computes the axis-aligned bounding box for a rectangle of size (w, h)
// transformed by the given affine matrix.
func worldAABB(m [6]float64, w, h float64) Rect {
	x0, y0 := transformPoint(m, 0, 0)
	x1, y1 := transformPoint(m, w, 0)
	x2, y2 := transformPoint(m, w, h)
	x3, y3 := transformPoint(m, 0, h)

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
