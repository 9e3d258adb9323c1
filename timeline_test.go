package pinscroll

import (
	"errors"
	"math"
	"testing"
)

// manualDriver is a Driver whose progress is set by the test.
type manualDriver struct {
	p        float64
	progress listeners[func(float64)]
	inval    listeners[func()]
}

func (d *manualDriver) Progress() float64 { return d.p }

func (d *manualDriver) OnProgress(fn func(float64)) Subscription { return d.progress.add(fn) }

func (d *manualDriver) OnInvalidate(fn func()) Subscription { return d.inval.add(fn) }

func (d *manualDriver) set(p float64) {
	d.p = p
	for _, l := range d.progress.entries {
		l.fn(p)
	}
}

func (d *manualDriver) invalidate() {
	for _, l := range d.inval.entries {
		l.fn()
	}
	d.set(d.p)
}

func mustBuild(t *testing.T, steps []Step, d Driver, opts ...Option) *Sequence {
	t.Helper()
	s, err := Build(steps, d, opts...)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return s
}

func TestBuildAppliesInitialProgress(t *testing.T) {
	n := NewContainer("n")
	d := &manualDriver{p: 0.5}
	mustBuild(t, []Step{{
		Targets: []*Node{n}, Start: 0, End: 1,
		Tweens: []Tween{{Prop: PropX, From: Lit(0), To: Lit(100)}},
	}}, d)
	assertNear(t, "x", n.OffsetX, 50)
}

func TestAdvanceLinearInterpolation(t *testing.T) {
	n := NewContainer("n")
	s := mustBuild(t, []Step{{
		Targets: []*Node{n}, Start: 0.2, End: 0.6,
		Tweens: []Tween{{Prop: PropOpacity, From: Lit(0), To: Lit(1)}},
	}}, nil)

	cases := []struct{ p, want float64 }{
		{0, 0}, {0.2, 0}, {0.3, 0.25}, {0.4, 0.5}, {0.6, 1}, {0.9, 1}, {1, 1},
	}
	for _, c := range cases {
		if !s.Advance(c.p) {
			t.Fatalf("Advance(%g) = false", c.p)
		}
		assertNear(t, "alpha", n.Alpha, c.want)
	}
}

func TestAdvanceIsOrderIndependent(t *testing.T) {
	build := func() (*Node, *Sequence) {
		n := NewContainer("n")
		s := mustBuild(t, []Step{
			{Targets: []*Node{n}, Start: 0, End: 0.5, Ease: "power2.inOut",
				Tweens: []Tween{{Prop: PropScale, From: Lit(1), To: Lit(3)}}},
			{Targets: []*Node{n}, Start: 0.5, End: 1,
				Tweens: []Tween{{Prop: PropScale, From: Current(), To: Lit(2)}}},
		}, nil)
		return n, s
	}
	a, sa := build()
	b, sb := build()
	for _, p := range []float64{0.9, 0.1, 0.6, 0.3, 1, 0} {
		sa.Advance(p)
	}
	sa.Advance(0.7)
	sb.Advance(0.7)
	if a.ScaleX != b.ScaleX || a.ScaleY != b.ScaleY {
		t.Errorf("scale after history = %g, fresh = %g", a.ScaleX, b.ScaleX)
	}
	// Second segment starts where the first ends.
	sb.Advance(0.5)
	assertNear(t, "scale at 0.5", b.ScaleX, 3)
	sb.Advance(1)
	assertNear(t, "scale at 1", b.ScaleX, 2)
}

func TestAdvanceBeforeFirstWindowUsesFromValue(t *testing.T) {
	n := NewContainer("n")
	s := mustBuild(t, []Step{{
		Targets: []*Node{n}, Start: 0.5, End: 1,
		Tweens: []Tween{{Prop: PropY, From: Lit(50), To: Lit(0)}},
	}}, nil)
	s.Advance(0.1)
	assertNear(t, "y", n.OffsetY, 50)
}

func TestAdvanceCurrentBaseline(t *testing.T) {
	n := NewContainer("n")
	n.SetAlpha(0.4)
	s := mustBuild(t, []Step{{
		Targets: []*Node{n}, Start: 0, End: 1,
		Tweens: []Tween{{Prop: PropOpacity, From: Current(), To: Lit(0)}},
	}}, nil)
	s.Advance(0.5)
	assertNear(t, "alpha", n.Alpha, 0.2)
	// The baseline is captured once; the applied value does not feed back.
	s.Advance(0)
	assertNear(t, "alpha", n.Alpha, 0.4)
}

func TestAdvanceClampsAndIgnoresNaN(t *testing.T) {
	n := NewContainer("n")
	s := mustBuild(t, []Step{{
		Targets: []*Node{n}, Start: 0, End: 1,
		Tweens: []Tween{{Prop: PropX, From: Lit(0), To: Lit(10)}},
	}}, nil)
	s.Advance(2)
	assertNear(t, "x", n.OffsetX, 10)
	s.Advance(-1)
	assertNear(t, "x", n.OffsetX, 0)
	if s.Advance(math.NaN()) {
		t.Error("Advance(NaN) = true")
	}
	if p, ok := s.LastProgress(); !ok || p != 0 {
		t.Errorf("LastProgress = %g, %v", p, ok)
	}
}

func TestAdvanceMultipleTargets(t *testing.T) {
	a := NewContainer("a")
	b := NewContainer("b")
	s := mustBuild(t, []Step{{
		Targets: []*Node{a, b}, Start: 0, End: 1,
		Tweens: []Tween{{Prop: PropRotation, From: Lit(0), To: Lit(1)}},
	}}, nil)
	s.Advance(1)
	if a.Rotation != 1 || b.Rotation != 1 {
		t.Errorf("rotation = %g, %g, want 1, 1", a.Rotation, b.Rotation)
	}
}

func TestAdvanceEasing(t *testing.T) {
	n := NewContainer("n")
	s := mustBuild(t, []Step{{
		Targets: []*Node{n}, Start: 0, End: 1, Ease: "power3.in",
		Tweens: []Tween{{Prop: PropX, From: Lit(0), To: Lit(1)}},
	}}, nil)
	s.Advance(0.5)
	assertNear(t, "x", n.OffsetX, math.Pow(0.5, 4))
}

func TestBuildValidation(t *testing.T) {
	live := NewContainer("live")
	dead := NewContainer("dead")
	dead.Dispose()
	tw := []Tween{{Prop: PropX, From: Lit(0), To: Lit(1)}}

	cases := []struct {
		name  string
		steps []Step
		cause error
	}{
		{"no steps", nil, nil},
		{"reversed window", []Step{{Targets: []*Node{live}, Start: 0.5, End: 0.2, Tweens: tw}}, nil},
		{"empty window", []Step{{Targets: []*Node{live}, Start: 0.5, End: 0.5, Tweens: tw}}, nil},
		{"out of range", []Step{{Targets: []*Node{live}, Start: 0, End: 1.5, Tweens: tw}}, nil},
		{"nan", []Step{{Targets: []*Node{live}, Start: math.NaN(), End: 1, Tweens: tw}}, nil},
		{"no targets", []Step{{Start: 0, End: 1, Tweens: tw}}, ErrMissingTarget},
		{"disposed target", []Step{{Targets: []*Node{dead}, Start: 0, End: 1, Tweens: tw}}, ErrMissingTarget},
		{"nil target", []Step{{Targets: []*Node{nil}, Start: 0, End: 1, Tweens: tw}}, ErrMissingTarget},
		{"no tweens", []Step{{Targets: []*Node{live}, Start: 0, End: 1}}, nil},
		{"unknown ease", []Step{{Targets: []*Node{live}, Start: 0, End: 1, Tweens: tw, Ease: "wobbly"}}, nil},
		{"unknown property", []Step{{Targets: []*Node{live}, Start: 0, End: 1,
			Tweens: []Tween{{Prop: Property(200), To: Lit(1)}}}}, nil},
		{"scale and scaleX", []Step{{Targets: []*Node{live}, Start: 0, End: 1,
			Tweens: []Tween{{Prop: PropScale, To: Lit(2)}, {Prop: PropScaleX, To: Lit(1)}}}}, nil},
		{"deferred without resolver", []Step{{Targets: []*Node{live}, Start: 0, End: 1,
			Tweens: []Tween{{Prop: PropX, From: Deferred(ViewportWidth(0.3)), To: Lit(0)}}}}, nil},
		{"overlap", []Step{
			{Targets: []*Node{live}, Start: 0, End: 0.6, Tweens: tw},
			{Targets: []*Node{live}, Start: 0.5, End: 1, Tweens: tw},
		}, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, err := Build(c.steps, nil)
			if err == nil || s != nil {
				t.Fatalf("Build = %v, %v; want error", s, err)
			}
			if !errors.Is(err, ErrInvalidStep) {
				t.Errorf("err = %v, want ErrInvalidStep", err)
			}
			if c.cause != nil && !errors.Is(err, c.cause) {
				t.Errorf("err = %v, want cause %v", err, c.cause)
			}
		})
	}
}

func TestBuildStepErrorIdentifiesStep(t *testing.T) {
	n := NewContainer("n")
	_, err := Build([]Step{
		{Targets: []*Node{n}, Start: 0, End: 0.5, Tweens: []Tween{{Prop: PropX, To: Lit(1)}}},
		{Name: "broken", Targets: []*Node{n}, Start: 0.5, End: 1, Ease: "nope",
			Tweens: []Tween{{Prop: PropY, To: Lit(1)}}},
	}, nil)
	var se *StepError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StepError", err)
	}
	if se.Index != 1 || se.Name != "broken" {
		t.Errorf("StepError = %d %q, want 1 broken", se.Index, se.Name)
	}
}

func TestOverlapOnDifferentFieldsAllowed(t *testing.T) {
	n := NewContainer("n")
	mustBuild(t, []Step{
		{Targets: []*Node{n}, Start: 0, End: 0.6, Tweens: []Tween{{Prop: PropScaleX, To: Lit(2)}}},
		{Targets: []*Node{n}, Start: 0.5, End: 1, Tweens: []Tween{{Prop: PropScaleY, To: Lit(2)}}},
	}, nil)
}

func TestAdjacentWindowsAllowed(t *testing.T) {
	n := NewContainer("n")
	mustBuild(t, []Step{
		{Targets: []*Node{n}, Start: 0, End: 0.5, Tweens: []Tween{{Prop: PropX, To: Lit(2)}}},
		{Targets: []*Node{n}, Start: 0.5, End: 1, Tweens: []Tween{{Prop: PropX, To: Lit(4)}}},
	}, nil)
}

func TestDriverSubscription(t *testing.T) {
	n := NewContainer("n")
	d := &manualDriver{}
	s := mustBuild(t, []Step{{
		Targets: []*Node{n}, Start: 0, End: 1,
		Tweens: []Tween{{Prop: PropX, From: Lit(0), To: Lit(10)}},
	}}, d)
	d.set(0.3)
	assertNear(t, "x", n.OffsetX, 3)

	s.Dispose()
	s.Dispose()
	if s.State() != StateDisposed {
		t.Errorf("state = %v, want disposed", s.State())
	}
	if len(d.progress.entries) != 0 || len(d.inval.entries) != 0 {
		t.Error("Dispose left driver subscriptions")
	}
	d.set(0.9)
	assertNear(t, "x after dispose", n.OffsetX, 3)
	if s.Advance(1) {
		t.Error("Advance after Dispose = true")
	}
}

func TestDeferredValuesResolveAndReresolve(t *testing.T) {
	v := NewViewport(1000, 500)
	n := NewContainer("n")
	d := &manualDriver{}
	s := mustBuild(t, []Step{{
		Targets: []*Node{n}, Start: 0, End: 1,
		Tweens: []Tween{{Prop: PropX, From: Lit(0), To: Deferred(ViewportWidth(0.3))}},
	}}, d, WithResolver(NewResolver(v)))
	if s.State() != StateReady {
		t.Fatalf("state = %v, want ready", s.State())
	}
	d.set(1)
	assertNear(t, "x", n.OffsetX, 300)

	v.Resize(2000, 500)
	d.invalidate()
	assertNear(t, "x after resize", n.OffsetX, 600)
}

func TestUnresolvedSequenceRetries(t *testing.T) {
	v := NewViewport(0, 0)
	n := NewContainer("n")
	n.SetOffset(7, 0)
	d := &manualDriver{p: 1}
	s := mustBuild(t, []Step{{
		Targets: []*Node{n}, Start: 0, End: 1,
		Tweens: []Tween{{Prop: PropX, To: Deferred(ViewportWidth(0.5))}},
	}}, d, WithResolver(NewResolver(v)))

	if s.State() != StateBuilding {
		t.Fatalf("state = %v, want building", s.State())
	}
	if !errors.Is(s.Err(), ErrUnresolvedTarget) {
		t.Errorf("Err = %v, want ErrUnresolvedTarget", s.Err())
	}
	assertNear(t, "x untouched", n.OffsetX, 7)

	v.Resize(400, 300)
	d.set(1)
	if s.State() != StateReady || s.Err() != nil {
		t.Fatalf("state = %v err = %v, want ready", s.State(), s.Err())
	}
	assertNear(t, "x", n.OffsetX, 200)
}

func TestResolveFailureKeepsLastGoodValues(t *testing.T) {
	v := NewViewport(800, 600)
	container := NewBox("container", 800, 600, ColorWhite)
	ref := NewBox("ref", 10, 10, ColorWhite)
	ref.SetPosition(100, 0)
	container.AddChild(ref)
	n := NewContainer("n")

	refX := DeferredValue{Name: "ref-x", Reference: ref, Container: container,
		Fn: func(g Geometry) float64 { return g.Reference.X }}
	d := &manualDriver{}
	s := mustBuild(t, []Step{{
		Targets: []*Node{n}, Start: 0, End: 1,
		Tweens: []Tween{{Prop: PropX, From: Deferred(refX), To: Lit(0)}},
	}}, d, WithResolver(NewResolver(v)))
	d.set(0)
	assertNear(t, "x", n.OffsetX, 100)

	ref.Dispose()
	d.invalidate()
	if s.State() != StateBuilding {
		t.Errorf("state = %v, want building", s.State())
	}
	assertNear(t, "x kept", n.OffsetX, 100)
}

func TestStateString(t *testing.T) {
	if StateReady.String() != "ready" || State(42).String() != "State(42)" {
		t.Error("State.String mismatch")
	}
}

func TestDeferredIgnoresAnimatedSize(t *testing.T) {
	container := NewBox("container", 800, 600, ColorWhite)
	ref := NewBox("ref", 10, 10, ColorWhite)
	other := NewBox("other", 10, 10, ColorWhite)
	container.AddChild(ref)
	container.AddChild(other)
	refWidth := DeferredValue{
		Name:      "refWidth",
		Reference: ref,
		Container: container,
		Fn:        func(g Geometry) float64 { return g.Reference.Width },
	}

	d := &manualDriver{}
	seq := mustBuild(t, []Step{
		{Targets: []*Node{ref}, Start: 0, End: 0.5, Tweens: []Tween{{Prop: PropWidth, From: Lit(10), To: Lit(100)}}},
		{Targets: []*Node{other}, Start: 0.5, End: 1, Tweens: []Tween{{Prop: PropX, From: Lit(0), To: Deferred(refWidth)}}},
	}, d, WithResolver(NewResolver(NewViewport(1000, 800))))
	defer seq.Dispose()

	d.set(1)
	assertNear(t, "x at 1", other.OffsetX, 10)
	if w, _ := ref.drawSize(); w != 100 {
		t.Errorf("drawn width = %g, want 100", w)
	}
	if ref.Width != 10 || ref.LayoutBounds().Width != 10 {
		t.Errorf("layout width = %g, want 10", ref.Width)
	}

	// Re-resolving with the width tween finished must not pick it up.
	d.invalidate()
	assertNear(t, "x at 1 after invalidate", other.OffsetX, 10)
	d.set(0)
	d.invalidate()
	d.set(1)
	assertNear(t, "x at 1 after invalidate at 0", other.OffsetX, 10)
}
