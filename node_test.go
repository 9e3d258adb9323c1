package pinscroll

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// fixedFont advances every byte by the same width. Used wherever layout
// needs a font without loading a face.
type fixedFont struct {
	advance, lineHeight float64
}

func (f fixedFont) MeasureString(s string) (float64, float64) {
	return float64(len(s)) * f.advance, f.lineHeight
}

func (f fixedFont) LineHeight() float64 { return f.lineHeight }

// --- Constructor defaults ---

func TestNewContainerDefaults(t *testing.T) {
	n := NewContainer("test")
	assertNodeDefaults(t, n, "test", NodeTypeContainer)
}

func TestNewBoxDefaults(t *testing.T) {
	c := Color{R: 1, A: 1}
	n := NewBox("box", 30, 20, c)
	assertNodeDefaults(t, n, "box", NodeTypeSprite)
	if n.Width != 30 || n.Height != 20 || n.Color != c {
		t.Errorf("box = %gx%g %v, want 30x20 %v", n.Width, n.Height, n.Color, c)
	}
}

func TestNewImageDefaults(t *testing.T) {
	img := ebiten.NewImage(4, 4)
	n := NewImage("img", img, 64, 32)
	assertNodeDefaults(t, n, "img", NodeTypeSprite)
	if n.Image != img || n.Color != ColorWhite {
		t.Error("image node should hold the image with a white tint")
	}
}

func TestNewTextDefaults(t *testing.T) {
	n := NewText("text", "hello", fixedFont{advance: 10, lineHeight: 20})
	assertNodeDefaults(t, n, "text", NodeTypeText)
	if n.Width != 50 || n.Height != 20 {
		t.Errorf("text box = %gx%g, want 50x20", n.Width, n.Height)
	}
}

func assertNodeDefaults(t *testing.T, n *Node, name string, typ NodeType) {
	t.Helper()
	if n.ID == 0 {
		t.Error("ID should be non-zero")
	}
	if n.Name != name {
		t.Errorf("Name = %q, want %q", n.Name, name)
	}
	if n.Type != typ {
		t.Errorf("Type = %d, want %d", n.Type, typ)
	}
	if n.ScaleX != 1 || n.ScaleY != 1 {
		t.Errorf("Scale = (%v, %v), want (1, 1)", n.ScaleX, n.ScaleY)
	}
	if n.PivotX != 0.5 || n.PivotY != 0.5 {
		t.Errorf("Pivot = (%v, %v), want (0.5, 0.5)", n.PivotX, n.PivotY)
	}
	if n.Alpha != 1 {
		t.Errorf("Alpha = %v, want 1", n.Alpha)
	}
	if !n.Visible {
		t.Error("Visible should be true")
	}
	if !n.transformDirty {
		t.Error("new node should be dirty")
	}
}

func TestUniqueIDs(t *testing.T) {
	seen := make(map[uint32]bool)
	for i := 0; i < 100; i++ {
		n := NewContainer("n")
		if seen[n.ID] {
			t.Fatalf("duplicate ID %d", n.ID)
		}
		seen[n.ID] = true
	}
}

// --- AddChild ---

func TestAddChildBasic(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)

	if child.Parent != parent {
		t.Error("child.Parent should be parent")
	}
	if parent.NumChildren() != 1 || parent.Children()[0] != child {
		t.Error("parent should have exactly child")
	}
}

func TestAddChildReparent(t *testing.T) {
	p1 := NewContainer("p1")
	p2 := NewContainer("p2")
	child := NewContainer("child")
	p1.AddChild(child)
	p2.AddChild(child)

	if p1.NumChildren() != 0 {
		t.Error("p1 should have 0 children")
	}
	if p2.NumChildren() != 1 || child.Parent != p2 {
		t.Error("child should belong to p2")
	}
}

func TestAddChildCyclePanic(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	grandchild := NewContainer("grandchild")
	parent.AddChild(child)
	child.AddChild(grandchild)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for cycle, got none")
		}
	}()
	grandchild.AddChild(parent)
}

func TestAddChildSelfPanic(t *testing.T) {
	n := NewContainer("self")
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for self-add, got none")
		}
	}()
	n.AddChild(n)
}

func TestAddChildNilPanic(t *testing.T) {
	n := NewContainer("n")
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for nil child, got none")
		}
	}()
	n.AddChild(nil)
}

func TestAddChildAt(t *testing.T) {
	parent := NewContainer("parent")
	a := NewContainer("a")
	b := NewContainer("b")
	c := NewContainer("c")
	parent.AddChild(a)
	parent.AddChild(c)
	parent.AddChildAt(b, 1)

	got := parent.Children()
	if len(got) != 3 || got[0] != a || got[1] != b || got[2] != c {
		t.Errorf("order = %v, want a b c", names(got))
	}
}

func TestAddChildAtOutOfRangePanic(t *testing.T) {
	parent := NewContainer("parent")
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for out-of-range index, got none")
		}
	}()
	parent.AddChildAt(NewContainer("x"), 3)
}

func names(ns []*Node) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.Name
	}
	return out
}

// --- Remove ---

func TestRemoveChild(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)
	parent.RemoveChild(child)

	if child.Parent != nil || parent.NumChildren() != 0 {
		t.Error("child should be detached")
	}
}

func TestRemoveChildWrongParentPanic(t *testing.T) {
	p1 := NewContainer("p1")
	p2 := NewContainer("p2")
	child := NewContainer("child")
	p1.AddChild(child)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic removing from wrong parent, got none")
		}
	}()
	p2.RemoveChild(child)
}

func TestRemoveFromParentNoOp(t *testing.T) {
	n := NewContainer("orphan")
	n.RemoveFromParent()
	if n.Parent != nil {
		t.Error("orphan should stay parentless")
	}
}

func TestRemoveChildren(t *testing.T) {
	parent := NewContainer("parent")
	kids := []*Node{NewContainer("a"), NewContainer("b"), NewContainer("c")}
	for _, k := range kids {
		parent.AddChild(k)
	}
	parent.RemoveChildren()

	if parent.NumChildren() != 0 {
		t.Errorf("NumChildren = %d, want 0", parent.NumChildren())
	}
	for _, k := range kids {
		if k.Parent != nil || k.IsDisposed() {
			t.Errorf("%s should be detached but alive", k.Name)
		}
	}
}

func TestFindChild(t *testing.T) {
	root := NewContainer("root")
	section := NewContainer("section")
	mark := NewContainer("mark")
	root.AddChild(section)
	section.AddChild(mark)

	if got := root.FindChild("mark"); got != mark {
		t.Errorf("FindChild(mark) = %v, want mark", got)
	}
	if root.FindChild("missing") != nil {
		t.Error("FindChild(missing) should be nil")
	}
}

// --- ZIndex ---

func TestDrawOrderByZIndex(t *testing.T) {
	parent := NewContainer("parent")
	a := NewContainer("a")
	b := NewContainer("b")
	c := NewContainer("c")
	parent.AddChild(a)
	parent.AddChild(b)
	parent.AddChild(c)
	a.SetZIndex(10)
	c.SetZIndex(-1)

	got := names(parent.drawOrder())
	want := []string{"c", "b", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("drawOrder = %v, want %v", got, want)
		}
	}
	// Insertion order is kept for equal ZIndex.
	c.SetZIndex(0)
	got = names(parent.drawOrder())
	if got[0] != "b" || got[1] != "c" || got[2] != "a" {
		t.Errorf("drawOrder = %v, want [b c a]", got)
	}
}

// --- Dispose ---

func TestDispose(t *testing.T) {
	root := NewContainer("root")
	parent := NewContainer("parent")
	child := NewContainer("child")
	root.AddChild(parent)
	parent.AddChild(child)

	parent.Dispose()

	if !parent.IsDisposed() || !child.IsDisposed() {
		t.Error("parent and child should be disposed")
	}
	if parent.ID != 0 || child.ID != 0 {
		t.Error("disposed nodes should have ID = 0")
	}
	if root.NumChildren() != 0 {
		t.Error("root should have 0 children after dispose")
	}
	if alive(parent) || alive(nil) || !alive(root) {
		t.Error("alive mismatch")
	}
}

func TestDisposeIdempotent(t *testing.T) {
	n := NewContainer("n")
	n.Dispose()
	n.Dispose()
	if !n.IsDisposed() {
		t.Error("should still be disposed")
	}
}

// --- Dirty propagation ---

func TestDirtyPropagationOnAddChild(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	grandchild := NewContainer("grandchild")
	child.AddChild(grandchild)
	child.transformDirty = false
	grandchild.transformDirty = false

	parent.AddChild(child)

	if !child.transformDirty || !grandchild.transformDirty {
		t.Error("subtree should be dirty after AddChild")
	}
}

func TestFitText(t *testing.T) {
	n := NewText("t", "ab", fixedFont{advance: 8, lineHeight: 10})
	n.TextBlock.SetContent("abcd\nef")
	n.FitText()
	if n.Width != 32 || n.Height != 20 {
		t.Errorf("box = %gx%g, want 32x20", n.Width, n.Height)
	}
	box := NewBox("b", 5, 5, ColorWhite)
	box.FitText()
	if box.Width != 5 {
		t.Error("FitText should not touch non-text nodes")
	}
}

func TestUpdateNodesCallsOnUpdate(t *testing.T) {
	root := NewContainer("root")
	child := NewContainer("child")
	root.AddChild(child)
	var total float64
	child.OnUpdate = func(dt float64) { total += dt }

	updateNodes(root, 0.25)
	updateNodes(root, 0.25)
	assertNear(t, "total dt", total, 0.5)
}
