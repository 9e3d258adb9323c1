package pinscroll

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/harmonica"
)

// --- Listeners ---

type listener[F any] struct {
	id uint32
	fn F
}

// listeners is an ordered callback list. Callbacks may add or remove
// listeners while it is being notified.
type listeners[F any] struct {
	nextID  uint32
	entries []listener[F]
}

func (l *listeners[F]) add(fn F) Subscription {
	l.nextID++
	id := l.nextID
	l.entries = append(l.entries, listener[F]{id: id, fn: fn})
	return Subscription{remove: func() { l.remove(id) }}
}

// remove deletes the listener with the given id. The slice is copied so an
// in-flight snapshot is unaffected.
func (l *listeners[F]) remove(id uint32) {
	for i, e := range l.entries {
		if e.id == id {
			next := make([]listener[F], 0, len(l.entries)-1)
			next = append(next, l.entries[:i]...)
			l.entries = append(next, l.entries[i+1:]...)
			return
		}
	}
}

func (l *listeners[F]) contains(id uint32) bool {
	for _, e := range l.entries {
		if e.id == id {
			return true
		}
	}
	return false
}

func (l *listeners[F]) clear() {
	l.entries = nil
}

// Subscription removes a registered callback. The zero value is a no-op.
type Subscription struct {
	remove func()
}

// Remove unregisters the callback. Safe to call more than once.
func (s Subscription) Remove() {
	if s.remove != nil {
		s.remove()
	}
}

// --- Offsets ---

// Offset is a scroll position marker. An absolute offset is the scroll
// position at which a point on the anchor (Element, a fraction of its height)
// meets a point on the viewport (Viewport, a fraction of its height), shifted
// by Pixels. A relative offset lies Viewport×height+Pixels past the start.
//
// The zero Offset is "top top": the anchor's top edge at the viewport's top.
type Offset struct {
	Element  float64
	Viewport float64
	Pixels   float64
	Relative bool
}

// position returns the scroll position of an absolute offset for an anchor
// occupying box.
func (o Offset) position(box Rect, vh float64) float64 {
	return box.Y + o.Element*box.Height - o.Viewport*vh + o.Pixels
}

// distance returns the length of a relative offset.
func (o Offset) distance(vh float64) float64 {
	return o.Viewport*vh + o.Pixels
}

func (o Offset) String() string {
	if o.Relative {
		return fmt.Sprintf("+=%g%%%+gpx", o.Viewport*100, o.Pixels)
	}
	return fmt.Sprintf("%g%% %g%% %+gpx", o.Element*100, o.Viewport*100, o.Pixels)
}

// ParseOffset parses a marker in the familiar scroll-trigger notation:
//
//	"top top"          anchor top meets viewport top
//	"center 80%"       anchor centre meets 80% down the viewport
//	"bottom-=100px top" keyword with a pixel adjustment
//	"+=150%"           relative: 1.5 viewport heights past the start
//	"+=300"            relative: 300 pixels past the start
//
// Keywords are top (0%), center (50%) and bottom (100%). A single position
// applies to both the anchor and the viewport.
func ParseOffset(s string) (Offset, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Offset{}, fmt.Errorf("%w: empty offset", ErrInvalidRegion)
	}
	if strings.HasPrefix(s, "+=") || strings.HasPrefix(s, "-=") {
		v, pct, err := parseLength(s[2:])
		if err != nil {
			return Offset{}, fmt.Errorf("%w: offset %q: %v", ErrInvalidRegion, s, err)
		}
		if s[0] == '-' {
			v = -v
		}
		o := Offset{Relative: true}
		if pct {
			o.Viewport = v / 100
		} else {
			o.Pixels = v
		}
		return o, nil
	}

	words := strings.Fields(s)
	if len(words) == 1 {
		words = append(words, words[0])
	}
	if len(words) != 2 {
		return Offset{}, fmt.Errorf("%w: offset %q: want \"<anchor> <viewport>\"", ErrInvalidRegion, s)
	}
	var o Offset
	elem, elemPx, err := parsePosition(words[0])
	if err != nil {
		return Offset{}, fmt.Errorf("%w: offset %q: %v", ErrInvalidRegion, s, err)
	}
	view, viewPx, err := parsePosition(words[1])
	if err != nil {
		return Offset{}, fmt.Errorf("%w: offset %q: %v", ErrInvalidRegion, s, err)
	}
	o.Element = elem
	o.Viewport = view
	// A point lower on the anchor is reached later; lower on the viewport, sooner.
	o.Pixels = elemPx - viewPx
	return o, nil
}

// MustParseOffset is like ParseOffset but panics on error. For literals in
// section declarations.
func MustParseOffset(s string) Offset {
	o, err := ParseOffset(s)
	if err != nil {
		panic(err)
	}
	return o
}

// parsePosition parses one side of an absolute offset into a fraction of the
// side's height plus pixels.
func parsePosition(w string) (frac, px float64, err error) {
	base := w
	if i := strings.Index(w[1:], "="); i >= 0 && (w[i] == '+' || w[i] == '-') {
		base = w[:i]
		adj, pct, err := parseLength(w[i+2:])
		if err != nil {
			return 0, 0, err
		}
		if w[i] == '-' {
			adj = -adj
		}
		if pct {
			frac += adj / 100
		} else {
			px += adj
		}
	}
	switch base {
	case "top", "left":
		return frac, px, nil
	case "center":
		return frac + 0.5, px, nil
	case "bottom", "right":
		return frac + 1, px, nil
	}
	v, pct, err := parseLength(base)
	if err != nil {
		return 0, 0, err
	}
	if pct {
		return frac + v/100, px, nil
	}
	return frac, px + v, nil
}

// parseLength parses "12", "12px" or "12%".
func parseLength(s string) (v float64, percent bool, err error) {
	switch {
	case strings.HasSuffix(s, "%"):
		percent = true
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "px"):
		s = s[:len(s)-2]
	}
	v, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("bad length %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, fmt.Errorf("bad length %q", s)
	}
	return v, percent, nil
}

// --- Regions and triggers ---

// TriggerRegion declares the scroll extent a Trigger tracks.
type TriggerRegion struct {
	// Anchor is the node whose layout box defines the start position.
	Anchor *Node
	// Start is where progress is 0. The zero value is "top top".
	Start Offset
	// End is where progress is 1. The zero value is "+=100%".
	End Offset
	// Pinned holds Anchor fixed in the viewport while progress is in (0, 1).
	Pinned bool
	// PinSpacing reserves the pinned length in page flow after Anchor so
	// following content does not slide under it.
	PinSpacing bool
	// Scrub, when > 0, makes applied progress trail the scroll position by
	// roughly this many seconds. Zero applies progress immediately.
	Scrub float64
	// Markers draws start, end and scroller lines in debug overlays.
	Markers bool
	// Name labels the trigger in logs and markers.
	Name string
}

func (r TriggerRegion) endOffset() Offset {
	if r.End == (Offset{}) {
		return Offset{Relative: true, Viewport: 1}
	}
	return r.End
}

// scrub smoothing settles when both distance and velocity drop below this.
const scrubEpsilon = 1e-4

// Trigger tracks one TriggerRegion. It implements Driver.
type Trigger struct {
	observer *Observer
	region   TriggerRegion

	start, end float64
	raw        float64
	progress   float64
	velocity   float64
	fired      bool

	spring   harmonica.Spring
	springDT float64

	onProgress   listeners[func(float64)]
	onInvalidate listeners[func()]
	released     bool
}

// Progress returns the applied progress in [0, 1]. With scrub this trails
// RawProgress.
func (t *Trigger) Progress() float64 { return t.progress }

// RawProgress returns progress computed directly from the scroll position.
func (t *Trigger) RawProgress() float64 { return t.raw }

// Start returns the scroll position where progress is 0.
func (t *Trigger) Start() float64 { return t.start }

// End returns the scroll position where progress is 1.
func (t *Trigger) End() float64 { return t.end }

// Length returns End - Start.
func (t *Trigger) Length() float64 { return t.end - t.start }

// Region returns the region the trigger was registered with.
func (t *Trigger) Region() TriggerRegion { return t.region }

// SpacerLength returns the page-flow space reserved after the anchor.
func (t *Trigger) SpacerLength() float64 {
	if t.released || !t.region.Pinned || !t.region.PinSpacing {
		return 0
	}
	return t.Length()
}

// IsActive reports whether the scroll position lies strictly inside the region.
func (t *Trigger) IsActive() bool {
	return t.raw > 0 && t.raw < 1
}

// Released reports whether Release has been called.
func (t *Trigger) Released() bool { return t.released }

// OnProgress registers fn to run whenever applied progress changes.
func (t *Trigger) OnProgress(fn func(p float64)) Subscription {
	if t.released {
		return Subscription{}
	}
	return t.onProgress.add(fn)
}

// OnInvalidate registers fn to run after the trigger re-measures its region
// and before progress is re-applied. Callbacks should only read layout.
func (t *Trigger) OnInvalidate(fn func()) Subscription {
	if t.released {
		return Subscription{}
	}
	return t.onInvalidate.add(fn)
}

// Invalidate re-measures this trigger alone. To re-measure every trigger
// after a resize use Observer.Invalidate, which batches reads before writes.
func (t *Trigger) Invalidate() {
	if t.released {
		return
	}
	t.measure()
	t.notifyInvalidate()
	t.apply(true)
}

// Release stops tracking, removes the pin and drops every listener. Safe to
// call more than once, including from inside a progress callback.
func (t *Trigger) Release() {
	if t.released {
		return
	}
	t.released = true
	t.onProgress.clear()
	t.onInvalidate.clear()
	if alive(t.region.Anchor) {
		t.region.Anchor.setPin(0, 0)
	}
	if t.observer != nil {
		t.observer.remove(t)
	}
}

// measure recomputes start and end from the anchor's unpinned layout box.
// A region that collapsed since registration is widened to one pixel.
func (t *Trigger) measure() {
	if !alive(t.region.Anchor) {
		return
	}
	vh := t.observer.viewport.Height
	box := t.region.Anchor.layoutBounds(false)
	t.start = t.region.Start.position(box, vh)
	t.end = t.regionEnd(box, vh)
	if !(t.end > t.start) {
		logf("trigger %q: region end %g <= start %g, widening to 1px", t.region.Name, t.end, t.start)
		t.end = t.start + 1
	}
}

func (t *Trigger) regionEnd(box Rect, vh float64) float64 {
	end := t.region.endOffset()
	if end.Relative {
		return t.start + end.distance(vh)
	}
	return end.position(box, vh)
}

// sample recomputes raw progress and the pin for scroll position y.
func (t *Trigger) sample(y float64) {
	t.raw = clamp01((y - t.start) / (t.end - t.start))
	if t.region.Pinned && alive(t.region.Anchor) {
		t.region.Anchor.setPin(0, math.Max(0, math.Min(y-t.start, t.Length())))
	}
}

// apply samples the viewport and, unless scrubbing toward the new value,
// commits it. force notifies listeners even when progress is unchanged.
func (t *Trigger) apply(force bool) {
	t.sample(t.observer.viewport.ScrollY)
	if t.region.Scrub > 0 && !force && t.fired {
		return
	}
	t.velocity = 0
	t.commit(t.raw, force)
}

// commit sets applied progress and notifies listeners on change.
func (t *Trigger) commit(p float64, force bool) {
	changed := p != t.progress || !t.fired
	t.progress = p
	if !changed && !force {
		return
	}
	t.fired = true
	for _, l := range t.onProgress.entries {
		if t.released {
			return
		}
		if !t.onProgress.contains(l.id) {
			continue
		}
		l.fn(p)
	}
}

func (t *Trigger) notifyInvalidate() {
	for _, l := range t.onInvalidate.entries {
		if t.released {
			return
		}
		if !t.onInvalidate.contains(l.id) {
			continue
		}
		l.fn()
	}
}

// tick advances scrub smoothing by dt seconds.
func (t *Trigger) tick(dt float64) {
	if t.region.Scrub <= 0 || dt <= 0 || t.progress == t.raw {
		return
	}
	if dt != t.springDT {
		// Critically damped: ω≈5/scrub settles within about the scrub time.
		t.spring = harmonica.NewSpring(dt, 5/t.region.Scrub, 1)
		t.springDT = dt
	}
	p, v := t.spring.Update(t.progress, t.velocity, t.raw)
	if math.Abs(p-t.raw) < scrubEpsilon && math.Abs(v) < scrubEpsilon {
		p, v = t.raw, 0
	}
	t.velocity = v
	t.commit(clamp01(p), false)
}

// --- Observer ---

// Observer owns the triggers of one viewport and feeds them scroll position.
type Observer struct {
	viewport *Viewport
	triggers []*Trigger

	lastScroll  float64
	lastW       float64
	lastH       float64
	layoutDirty bool
}

// NewObserver creates an observer reading scroll position and size from v.
func NewObserver(v *Viewport) *Observer {
	return &Observer{viewport: v, lastScroll: v.ScrollY, lastW: v.Width, lastH: v.Height}
}

// Register starts tracking region. onProgress (may be nil) is called
// immediately with the progress for the current scroll position and again
// whenever it changes.
//
// Returns ErrMissingTarget if the anchor is nil or disposed, and
// ErrInvalidRegion if the region is malformed or its end does not lie after
// its start.
func (o *Observer) Register(region TriggerRegion, onProgress func(p float64)) (*Trigger, error) {
	if !alive(region.Anchor) {
		return nil, fmt.Errorf("%w: trigger %q has no anchor", ErrMissingTarget, region.Name)
	}
	if region.Start.Relative {
		return nil, fmt.Errorf("%w: trigger %q: start cannot be relative", ErrInvalidRegion, region.Name)
	}
	if math.IsNaN(region.Scrub) || region.Scrub < 0 {
		return nil, fmt.Errorf("%w: trigger %q: scrub %g", ErrInvalidRegion, region.Name, region.Scrub)
	}

	t := &Trigger{observer: o, region: region}
	vh := o.viewport.Height
	box := region.Anchor.layoutBounds(false)
	t.start = region.Start.position(box, vh)
	t.end = t.regionEnd(box, vh)
	if !(t.end > t.start) {
		return nil, fmt.Errorf("%w: trigger %q: end %g <= start %g", ErrInvalidRegion, region.Name, t.end, t.start)
	}

	o.triggers = append(o.triggers, t)
	if region.Pinned && region.PinSpacing {
		o.layoutDirty = true
	}
	if onProgress != nil {
		t.onProgress.add(onProgress)
	}
	logf("trigger %q registered: start=%g end=%g pinned=%v", region.Name, t.start, t.end, region.Pinned)
	t.apply(true)
	return t, nil
}

// Release stops tracking t. Equivalent to t.Release.
func (o *Observer) Release(t *Trigger) {
	if t != nil {
		t.Release()
	}
}

func (o *Observer) remove(t *Trigger) {
	for i, c := range o.triggers {
		if c == t {
			o.triggers = append(o.triggers[:i:i], o.triggers[i+1:]...)
			break
		}
	}
	if t.region.Pinned && t.region.PinSpacing {
		o.layoutDirty = true
	}
}

// Triggers returns the live triggers in registration order. The returned
// slice must not be mutated.
func (o *Observer) Triggers() []*Trigger {
	return o.triggers
}

// Invalidate re-measures every trigger, then lets dependents re-resolve,
// then re-applies pins and progress. Every layout read happens before any
// write.
func (o *Observer) Invalidate() {
	ts := append([]*Trigger(nil), o.triggers...)
	for _, t := range ts {
		// Measure against unpinned layout so existing pins do not skew it.
		t.measure()
	}
	for _, t := range ts {
		if !t.released {
			t.notifyInvalidate()
		}
	}
	for _, t := range ts {
		if !t.released {
			t.apply(true)
		}
	}
	o.lastScroll = o.viewport.ScrollY
	o.lastW, o.lastH = o.viewport.Width, o.viewport.Height
}

// Update samples the viewport. A size change invalidates every trigger; a
// scroll change updates pins and progress.
func (o *Observer) Update() {
	v := o.viewport
	if v.Width != o.lastW || v.Height != o.lastH {
		o.Invalidate()
		return
	}
	if v.ScrollY == o.lastScroll {
		return
	}
	o.lastScroll = v.ScrollY
	for _, t := range append([]*Trigger(nil), o.triggers...) {
		if !t.released {
			t.apply(false)
		}
	}
}

// Tick advances scrub smoothing by dt seconds.
func (o *Observer) Tick(dt float64) {
	for _, t := range append([]*Trigger(nil), o.triggers...) {
		if !t.released {
			t.tick(dt)
		}
	}
}

// SpacerFor measures the triggers anchored at n and returns the pin spacing
// they reserve. Page layout calls it after placing n.
func (o *Observer) SpacerFor(n *Node) float64 {
	var total float64
	for _, t := range o.triggers {
		if t.region.Anchor != n {
			continue
		}
		t.measure()
		total += t.SpacerLength()
	}
	return total
}

// takeLayoutDirty reports and clears whether pin spacing changed since the
// last call.
func (o *Observer) takeLayoutDirty() bool {
	d := o.layoutDirty
	o.layoutDirty = false
	return d
}
