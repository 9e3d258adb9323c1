package pinscroll

import (
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// stubSection is a Section with a fixed height in viewport heights and an
// optional pinned trigger.
type stubSection struct {
	node     *Node
	screens  float64
	pin      Offset // zero means no trigger
	mountErr error

	trigger  *Trigger
	mounts   int
	unmounts int
}

func newStubSection(name string, screens float64) *stubSection {
	return &stubSection{node: NewBox(name, 0, 0, ColorWhite), screens: screens}
}

func (s *stubSection) Node() *Node { return s.node }

func (s *stubSection) Layout(width, vh float64) float64 {
	s.node.SetSize(width, s.screens*vh)
	return s.screens * vh
}

func (s *stubSection) Mount(sc *Scene) error {
	s.mounts++
	if s.mountErr != nil {
		return s.mountErr
	}
	if s.pin == (Offset{}) {
		return nil
	}
	t, err := sc.Observer().Register(TriggerRegion{
		Anchor: s.node, End: s.pin, Pinned: true, PinSpacing: true, Name: s.node.Name,
	}, nil)
	if err != nil {
		return err
	}
	s.trigger = t
	return nil
}

func (s *stubSection) Unmount() {
	s.unmounts++
	if s.trigger != nil {
		s.trigger.Release()
		s.trigger = nil
	}
}

func TestPageStacksSections(t *testing.T) {
	s := newTestScene(1000, 800)
	a := newStubSection("a", 1)
	b := newStubSection("b", 1)
	b.pin = MustParseOffset("+=150%")
	c := newStubSection("c", 0.5)
	for _, sec := range []*stubSection{a, b, c} {
		if err := s.Page().Add(sec); err != nil {
			t.Fatal(err)
		}
	}

	if a.node.Y != 0 || b.node.Y != 800 || c.node.Y != 800+800+1200 {
		t.Errorf("positions = %g, %g, %g", a.node.Y, b.node.Y, c.node.Y)
	}
	if got := s.Page().SpacerAfter(b); got != 1200 {
		t.Errorf("spacer = %g, want 1200", got)
	}
	want := 800 + 800 + 1200 + 400.0
	if s.Page().Height() != want || s.viewport.ContentHeight() != want {
		t.Errorf("height = %g content = %g, want %g", s.Page().Height(), s.viewport.ContentHeight(), want)
	}
	if b.trigger.Start() != 800 || b.trigger.End() != 2000 {
		t.Errorf("trigger = [%g, %g], want [800, 2000]", b.trigger.Start(), b.trigger.End())
	}
	if len(s.Page().Sections()) != 3 {
		t.Error("Sections count mismatch")
	}
}

func TestPageRelayoutOnResize(t *testing.T) {
	s := newTestScene(1000, 800)
	a := newStubSection("a", 1)
	b := newStubSection("b", 1)
	b.pin = MustParseOffset("+=100%")
	_ = s.Page().Add(a)
	_ = s.Page().Add(b)

	if !s.Resize(500, 400) {
		t.Fatal("Resize reported no change")
	}
	if b.node.Y != 400 || b.trigger.Length() != 400 {
		t.Errorf("after resize y = %g length = %g", b.node.Y, b.trigger.Length())
	}
	if s.Page().Height() != 1200 {
		t.Errorf("height = %g, want 1200", s.Page().Height())
	}
	if s.Resize(500, 400) {
		t.Error("Resize to same size reported change")
	}
}

func TestPageDeferredMount(t *testing.T) {
	s := newTestScene(1000, 800)
	sec := newStubSection("late", 1)
	sec.mountErr = ErrMissingTarget
	if err := s.Page().Add(sec); err != nil {
		t.Fatalf("Add = %v, want nil for a deferred mount", err)
	}
	if ok, err := s.Page().Mounted(sec); ok || !errors.Is(err, ErrMissingTarget) {
		t.Fatalf("Mounted = %v, %v", ok, err)
	}

	_ = s.step(1.0 / 60)
	if sec.mounts != 2 {
		t.Errorf("mounts = %d, want a retry", sec.mounts)
	}
	sec.mountErr = nil
	_ = s.step(1.0 / 60)
	if ok, err := s.Page().Mounted(sec); !ok || err != nil {
		t.Errorf("Mounted = %v, %v after retry", ok, err)
	}
	_ = s.step(1.0 / 60)
	if sec.mounts != 3 {
		t.Errorf("mounts = %d, want no further retries", sec.mounts)
	}
}

func TestPageMountErrorReturned(t *testing.T) {
	s := newTestScene(1000, 800)
	sec := newStubSection("bad", 1)
	sec.mountErr = ErrInvalidStep
	if err := s.Page().Add(sec); !errors.Is(err, ErrInvalidStep) {
		t.Errorf("Add = %v, want ErrInvalidStep", err)
	}
	_ = s.step(1.0 / 60)
	if sec.mounts != 1 {
		t.Error("non-deferred mount error was retried")
	}
	if err := s.Page().Add(nil); !errors.Is(err, ErrMissingTarget) {
		t.Errorf("Add(nil) = %v, want ErrMissingTarget", err)
	}
}

func TestPageTimelineErrorIsFinal(t *testing.T) {
	s := newTestScene(1000, 800)
	sec := newStubSection("dead-target", 1)
	sec.mountErr = &StepError{Index: 0, Reason: "target 0 is nil or disposed", Err: ErrMissingTarget}
	err := s.Page().Add(sec)
	if !errors.Is(err, ErrInvalidStep) {
		t.Fatalf("Add = %v, want ErrInvalidStep", err)
	}
	for i := 0; i < 3; i++ {
		_ = s.step(1.0 / 60)
	}
	if sec.mounts != 1 {
		t.Errorf("mounts = %d, want no retries", sec.mounts)
	}
	if ok, lastErr := s.Page().Mounted(sec); ok || !errors.Is(lastErr, ErrMissingTarget) {
		t.Errorf("Mounted = %v, %v", ok, lastErr)
	}
}

func TestPageRemoveAndClose(t *testing.T) {
	s := newTestScene(1000, 800)
	a := newStubSection("a", 1)
	b := newStubSection("b", 1)
	b.pin = MustParseOffset("+=100%")
	_ = s.Page().Add(a)
	_ = s.Page().Add(b)

	s.Page().Remove(b)
	if b.unmounts != 1 || b.node.Parent != nil {
		t.Error("Remove did not unmount and detach")
	}
	if s.Page().Height() != 800 {
		t.Errorf("height = %g, want 800", s.Page().Height())
	}
	s.Page().Close()
	if a.unmounts != 1 {
		t.Error("Close did not unmount")
	}
}

func TestSceneStepOrder(t *testing.T) {
	s := newTestScene(1000, 800)
	sec := newStubSection("hero", 1)
	sec.pin = MustParseOffset("+=100%")
	_ = s.Page().Add(sec)
	_ = s.Page().Add(newStubSection("tail", 1))
	box := NewBox("box", 10, 10, ColorWhite)
	sec.node.AddChild(box)
	seq := mustBuild(t, []Step{{
		Targets: []*Node{box}, Start: 0, End: 1,
		Tweens: []Tween{{Prop: PropX, From: Lit(0), To: Lit(100)}},
	}}, sec.trigger, s.BuildOptions()...)
	defer seq.Dispose()

	var seen float64
	s.SetUpdateFunc(func() error {
		seen = box.OffsetX
		return nil
	})
	s.InjectScroll(400)
	if err := s.step(1.0 / 60); err != nil {
		t.Fatal(err)
	}
	// The update func sees this frame's animated state.
	assertNear(t, "offset seen by update func", seen, 50)
	// World transforms are screen space: the pinned section stays at 0.
	assertNear(t, "hero screen y", sec.node.WorldTransform()[5], 0)
	assertNear(t, "box screen x", box.WorldTransform()[4], 50)
}

func TestSceneUpdateFuncError(t *testing.T) {
	s := newTestScene(100, 100)
	want := errors.New("stop")
	s.SetUpdateFunc(func() error { return want })
	if err := s.step(1.0 / 60); !errors.Is(err, want) {
		t.Errorf("step = %v, want %v", err, want)
	}
}

func TestSceneSetEasings(t *testing.T) {
	s := newTestScene(100, 100)
	var e Easings
	e.Register("none", Linear)
	s.SetEasings(&e)
	if s.Easings() != EasingProvider(&e) {
		t.Error("SetEasings did not replace the provider")
	}
	s.SetEasings(nil)
	if _, ok := s.Easings().Ease("power2.inOut"); !ok {
		t.Error("SetEasings(nil) should restore the standard set")
	}
	if len(s.BuildOptions()) != 2 {
		t.Error("BuildOptions should bind resolver and easings")
	}
}

func TestSceneFPSWidgetOnOverlay(t *testing.T) {
	s := newTestScene(800, 600)
	w := NewFPSWidget(s.Viewport())
	s.Overlay().AddChild(w)
	_ = s.step(1.0 / 60)
	if w.Parent != s.Overlay() || w.Image == nil {
		t.Error("FPS widget not on overlay")
	}
	// The overlay ignores scroll.
	s.viewport.SetContentHeight(5000)
	s.viewport.SetScroll(1000)
	s.refreshTransforms()
	assertNear(t, "overlay y", w.WorldTransform()[5], 0)
}

func TestSceneDraw(t *testing.T) {
	s := newTestScene(320, 240)
	s.ClearColor = Color{R: 0.1, G: 0.1, B: 0.1, A: 1}
	sec := newStubSection("hero", 1)
	sec.pin = MustParseOffset("+=100%")
	_ = s.Page().Add(sec)

	rounded := NewBox("rounded", 100, 100, Color{R: 1, A: 1})
	rounded.CornerRadius = 50
	sec.node.AddChild(rounded)
	img := NewImage("img", ebiten.NewImage(16, 8), 40, 40)
	sec.node.AddChild(img)
	sec.node.ClipChildren = true
	offscreen := NewBox("offscreen", 10, 10, ColorWhite)
	offscreen.SetPosition(0, 5000)
	s.Root().AddChild(offscreen)

	screen := ebiten.NewImage(320, 240)
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)
	_ = captureStderr(t, func() { s.Draw(screen) })
}
