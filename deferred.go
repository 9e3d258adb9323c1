package pinscroll

import (
	"fmt"
	"math"
)

// Geometry is the layout snapshot a DeferredValue computes from. Reference
// is expressed relative to Container's top-left corner; Container is the
// container's own box at the origin.
type Geometry struct {
	Reference Rect
	Container Rect
	Viewport  Rect
}

// DeferredValue is a keyframe endpoint computed from layout at build time.
// It is evaluated once per (re)build and never interpolated itself.
//
// Reference and Container are the default nodes for Resolve; either may be
// overridden by the caller. A value with neither set depends only on the
// viewport (see ViewportWidth).
type DeferredValue struct {
	Name      string
	Reference *Node
	Container *Node
	Fn        func(g Geometry) float64
}

// viewportOnly reports whether d needs no element geometry.
func (d DeferredValue) viewportOnly() bool {
	return d.Reference == nil && d.Container == nil
}

// ViewportWidth returns a deferred value equal to f × viewport width
// ("30vw" is ViewportWidth(0.3)).
func ViewportWidth(f float64) DeferredValue {
	return DeferredValue{
		Name: fmt.Sprintf("%gvw", f*100),
		Fn:   func(g Geometry) float64 { return g.Viewport.Width * f },
	}
}

// ViewportHeight returns a deferred value equal to f × viewport height.
func ViewportHeight(f float64) DeferredValue {
	return DeferredValue{
		Name: fmt.Sprintf("%gvh", f*100),
		Fn:   func(g Geometry) float64 { return g.Viewport.Height * f },
	}
}

// ViewportMax returns a deferred value equal to f × the larger viewport side
// ("142vmax" is ViewportMax(1.42)).
func ViewportMax(f float64) DeferredValue {
	return DeferredValue{
		Name: fmt.Sprintf("%gvmax", f*100),
		Fn:   func(g Geometry) float64 { return math.Max(g.Viewport.Width, g.Viewport.Height) * f },
	}
}

// ViewportMin returns a deferred value equal to f × the smaller viewport side.
func ViewportMin(f float64) DeferredValue {
	return DeferredValue{
		Name: fmt.Sprintf("%gvmin", f*100),
		Fn:   func(g Geometry) float64 { return math.Min(g.Viewport.Width, g.Viewport.Height) * f },
	}
}

// Resolver evaluates DeferredValues against current layout. It reads
// geometry only; it never writes node state.
type Resolver struct {
	viewport *Viewport
}

// NewResolver creates a resolver reading viewport size from v. v may be nil,
// in which case viewport-relative values resolve against an empty rect.
func NewResolver(v *Viewport) *Resolver {
	return &Resolver{viewport: v}
}

// Resolve computes d from the current layout boxes of ref and container.
// Returns ErrUnresolvedTarget when a required node is nil or disposed, or
// when the container has not been laid out yet.
func (r *Resolver) Resolve(d DeferredValue, ref, container *Node) (float64, error) {
	if d.Fn == nil {
		return 0, fmt.Errorf("%w: deferred value %q has no function", ErrUnresolvedTarget, d.Name)
	}
	g := Geometry{Viewport: r.viewportRect()}
	needsNodes := !d.viewportOnly() || ref != nil || container != nil
	if !needsNodes && g.Viewport.Empty() {
		return 0, fmt.Errorf("%w: %q: viewport has no size yet", ErrUnresolvedTarget, d.Name)
	}
	if needsNodes {
		if !alive(ref) {
			return 0, fmt.Errorf("%w: %q: reference node unavailable", ErrUnresolvedTarget, d.Name)
		}
		if !alive(container) {
			return 0, fmt.Errorf("%w: %q: container node unavailable", ErrUnresolvedTarget, d.Name)
		}
		cb := container.LayoutBounds()
		if cb.Empty() {
			return 0, fmt.Errorf("%w: %q: container %q not laid out", ErrUnresolvedTarget, d.Name, container.Name)
		}
		g.Reference = ref.LayoutBounds().RelativeTo(cb)
		g.Container = Rect{Width: cb.Width, Height: cb.Height}
	}
	v := d.Fn(g)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q evaluated to %v", ErrUnresolvedTarget, d.Name, v)
	}
	return v, nil
}

// resolveDefault resolves d against its own Reference and Container.
func (r *Resolver) resolveDefault(d DeferredValue) (float64, error) {
	return r.Resolve(d, d.Reference, d.Container)
}

func (r *Resolver) viewportRect() Rect {
	if r == nil || r.viewport == nil {
		return Rect{}
	}
	return Rect{Width: r.viewport.Width, Height: r.viewport.Height}
}

// --- Values ---

type valueKind uint8

const (
	valueLiteral valueKind = iota
	valueDeferred
	valueCurrent
)

// Value is one endpoint of a tween: a literal, a DeferredValue, or the
// target's current value.
type Value struct {
	kind     valueKind
	literal  float64
	deferred DeferredValue
}

// Lit returns a literal value.
func Lit(v float64) Value { return Value{kind: valueLiteral, literal: v} }

// Deferred returns a value computed from layout at build time.
func Deferred(d DeferredValue) Value { return Value{kind: valueDeferred, deferred: d} }

// Current returns a value taken from the target when the sequence is built,
// or from the previous step's end value on the same property.
func Current() Value { return Value{kind: valueCurrent} }

// IsDeferred reports whether v is computed from layout.
func (v Value) IsDeferred() bool { return v.kind == valueDeferred }

// Literal returns the literal and whether v is one.
func (v Value) Literal() (float64, bool) {
	return v.literal, v.kind == valueLiteral
}

func (v Value) String() string {
	switch v.kind {
	case valueDeferred:
		return "deferred(" + v.deferred.Name + ")"
	case valueCurrent:
		return "current"
	}
	return fmt.Sprintf("%g", v.literal)
}
