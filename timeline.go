package pinscroll

import (
	"fmt"
	"math"
	"sort"
)

// Tween animates one property between two endpoints.
type Tween struct {
	Prop     Property
	From, To Value
}

// Step is one timeline instruction: a set of tweens applied to every target
// while progress moves through [Start, End).
type Step struct {
	Name    string
	Targets []*Node
	Start   float64
	End     float64
	Tweens  []Tween
	// Ease names a curve in the sequence's EasingProvider. Empty means "none".
	Ease string
}

// State is a Sequence lifecycle state.
type State uint8

const (
	StateUnbuilt     State = iota // constructed, not yet validated
	StateBuilding                 // resolving deferred values
	StateReady                    // advancing on progress
	StateInvalidated              // geometry stale, about to re-resolve
	StateDisposed                 // terminal
)

var stateNames = [...]string{"unbuilt", "building", "ready", "invalidated", "disposed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}

// Driver is a progress source a Sequence follows. *Trigger implements it.
type Driver interface {
	Progress() float64
	OnProgress(fn func(p float64)) Subscription
	OnInvalidate(fn func()) Subscription
}

// Option configures Build.
type Option func(*buildConfig)

type buildConfig struct {
	easings  EasingProvider
	resolver *Resolver
}

// WithEasings sets the provider used to look up step easing names.
// Without it, Build uses a fresh NewEasings registry.
func WithEasings(p EasingProvider) Option {
	return func(c *buildConfig) { c.easings = p }
}

// WithResolver sets the resolver for deferred values. Required when any
// tween endpoint is deferred.
func WithResolver(r *Resolver) Option {
	return func(c *buildConfig) { c.resolver = r }
}

// segment is one step's contribution to one channel.
type segment struct {
	step       int
	start, end float64
	ease       EaseFunc
	from, to   Value
	fromV, toV float64
}

// channel is a single (target, field) slot and every segment that drives it,
// sorted by start. Windows never overlap within a channel.
type channel struct {
	target   *Node
	field    field
	baseline float64
	segments []*segment
}

type channelKey struct {
	target *Node
	field  field
}

// Sequence is a built timeline bound to a progress driver. It owns its steps;
// targets are borrowed.
type Sequence struct {
	steps    []Step
	channels []*channel
	driver   Driver
	resolver *Resolver
	subs     []Subscription

	state        State
	lastProgress float64
	applied      bool
	lastErr      error
}

// Build validates steps, captures each target's current values, resolves
// deferred endpoints and subscribes to driver. Validation failures return a
// *StepError. Deferred values that cannot be resolved yet do not fail the
// build: the sequence stays in StateBuilding and retries on every progress
// or invalidation until they resolve.
//
// When driver is non-nil the sequence applies its state at driver.Progress()
// before returning. A nil driver means the caller calls Advance directly.
func Build(steps []Step, driver Driver, opts ...Option) (*Sequence, error) {
	s, err := newSequence(steps, driver, opts)
	if err != nil {
		return nil, err
	}
	s.start()
	return s, nil
}

// newSequence validates steps without touching any target.
func newSequence(steps []Step, driver Driver, opts []Option) (*Sequence, error) {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.easings == nil {
		cfg.easings = NewEasings()
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrInvalidStep)
	}

	s := &Sequence{
		steps:    append([]Step(nil), steps...),
		driver:   driver,
		resolver: cfg.resolver,
		state:    StateUnbuilt,
	}
	if err := s.compile(cfg.easings); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sequence) start() {
	// All reads (baselines, then geometry) happen before the first write.
	for _, ch := range s.channels {
		ch.baseline = ch.field.get(ch.target)
	}
	s.state = StateBuilding
	if err := s.resolve(); err == nil {
		s.state = StateReady
	} else {
		s.lastErr = err
	}

	if s.driver != nil {
		s.subs = append(s.subs,
			s.driver.OnProgress(func(p float64) { s.Advance(p) }),
			s.driver.OnInvalidate(s.Invalidate),
		)
		s.Advance(s.driver.Progress())
	}
}

// compile validates every step and groups segments into channels.
func (s *Sequence) compile(easings EasingProvider) error {
	index := make(map[channelKey]*channel)
	for i := range s.steps {
		st := &s.steps[i]
		if math.IsNaN(st.Start) || math.IsNaN(st.End) || st.Start < 0 || st.End > 1 || st.Start >= st.End {
			return stepErr(i, st, fmt.Sprintf("window [%g, %g) must satisfy 0 <= start < end <= 1", st.Start, st.End), nil)
		}
		if len(st.Targets) == 0 {
			return stepErr(i, st, "no targets", ErrMissingTarget)
		}
		for j, t := range st.Targets {
			if !alive(t) {
				return stepErr(i, st, fmt.Sprintf("target %d is nil or disposed", j), ErrMissingTarget)
			}
		}
		if len(st.Tweens) == 0 {
			return stepErr(i, st, "no properties", nil)
		}
		name := st.Ease
		if name == "" {
			name = "none"
		}
		ease, ok := easings.Ease(name)
		if !ok {
			return stepErr(i, st, fmt.Sprintf("unknown ease %q", name), nil)
		}

		seen := make(map[field]Property, len(st.Tweens))
		for _, tw := range st.Tweens {
			fields := tw.Prop.fields()
			if fields == nil {
				return stepErr(i, st, fmt.Sprintf("unknown property %v", tw.Prop), nil)
			}
			for _, v := range []Value{tw.From, tw.To} {
				if !v.IsDeferred() {
					continue
				}
				if v.deferred.Fn == nil {
					return stepErr(i, st, fmt.Sprintf("%v: deferred value %q has no function", tw.Prop, v.deferred.Name), nil)
				}
				if s.resolver == nil {
					return stepErr(i, st, fmt.Sprintf("%v: deferred value %q needs a resolver", tw.Prop, v.deferred.Name), nil)
				}
			}
			for _, f := range fields {
				if prev, dup := seen[f]; dup {
					return stepErr(i, st, fmt.Sprintf("%v conflicts with %v in the same step", tw.Prop, prev), nil)
				}
				seen[f] = tw.Prop
				for _, t := range st.Targets {
					key := channelKey{target: t, field: f}
					ch := index[key]
					if ch == nil {
						ch = &channel{target: t, field: f}
						index[key] = ch
						s.channels = append(s.channels, ch)
					}
					ch.segments = append(ch.segments, &segment{
						step:  i,
						start: st.Start,
						end:   st.End,
						ease:  ease,
						from:  tw.From,
						to:    tw.To,
					})
				}
			}
		}
	}

	for _, ch := range s.channels {
		sort.SliceStable(ch.segments, func(a, b int) bool {
			return ch.segments[a].start < ch.segments[b].start
		})
		for k := 1; k < len(ch.segments); k++ {
			prev, cur := ch.segments[k-1], ch.segments[k]
			if cur.start < prev.end {
				st := &s.steps[cur.step]
				return stepErr(cur.step, st, fmt.Sprintf("window overlaps step %d on %q", prev.step, ch.target.Name), nil)
			}
		}
	}
	return nil
}

// resolve turns every endpoint into a literal. Results are committed only
// when every deferred value resolves, so a failure leaves the previous
// literals in place.
func (s *Sequence) resolve() error {
	type pair struct{ from, to float64 }
	resolved := make([][]pair, len(s.channels))
	for ci, ch := range s.channels {
		resolved[ci] = make([]pair, len(ch.segments))
		carry := ch.baseline
		for si, seg := range ch.segments {
			from, err := s.resolveValue(seg.from, carry)
			if err != nil {
				return err
			}
			to, err := s.resolveValue(seg.to, from)
			if err != nil {
				return err
			}
			resolved[ci][si] = pair{from, to}
			carry = to
		}
	}
	for ci, ch := range s.channels {
		for si, seg := range ch.segments {
			seg.fromV, seg.toV = resolved[ci][si].from, resolved[ci][si].to
		}
	}
	s.lastErr = nil
	return nil
}

func (s *Sequence) resolveValue(v Value, current float64) (float64, error) {
	switch v.kind {
	case valueCurrent:
		return current, nil
	case valueDeferred:
		return s.resolver.resolveDefault(v.deferred)
	}
	return v.literal, nil
}

// Advance applies the timeline state at progress p. It is idempotent and
// order-independent: the result depends only on p. Returns false, writing
// nothing, while deferred values are unresolved or after Dispose.
func (s *Sequence) Advance(p float64) bool {
	switch s.state {
	case StateDisposed:
		return false
	case StateReady:
	default:
		if !s.rebuild() {
			return false
		}
	}
	if math.IsNaN(p) {
		return false
	}
	p = clamp01(p)

	for _, ch := range s.channels {
		seg := ch.active(p)
		t := clamp01((p - seg.start) / (seg.end - seg.start))
		e := seg.ease(t)
		ch.field.set(ch.target, seg.fromV+(seg.toV-seg.fromV)*e)
	}
	s.lastProgress = p
	s.applied = true
	return true
}

// active picks the segment that owns the channel at p: the latest one that
// has started, or the first one when none has.
func (ch *channel) active(p float64) *segment {
	cur := ch.segments[0]
	for _, seg := range ch.segments[1:] {
		if seg.start > p {
			break
		}
		cur = seg
	}
	return cur
}

// Invalidate marks geometry stale and re-resolves deferred values. It only
// reads layout; the driver re-applies state with its next progress
// notification (a *Trigger does so as part of its own invalidation).
func (s *Sequence) Invalidate() {
	if s.state == StateDisposed {
		return
	}
	s.state = StateInvalidated
	s.rebuild()
}

// rebuild re-enters StateBuilding and reports whether it reached StateReady.
func (s *Sequence) rebuild() bool {
	s.state = StateBuilding
	if err := s.resolve(); err != nil {
		s.lastErr = err
		return false
	}
	s.state = StateReady
	return true
}

// Dispose detaches from the driver and drops every target reference. Applied
// property values are left as they are. Safe to call more than once.
func (s *Sequence) Dispose() {
	if s.state == StateDisposed {
		return
	}
	for _, sub := range s.subs {
		sub.Remove()
	}
	s.subs = nil
	s.channels = nil
	s.steps = nil
	s.driver = nil
	s.resolver = nil
	s.state = StateDisposed
}

// State returns the current lifecycle state.
func (s *Sequence) State() State {
	return s.state
}

// LastProgress returns the progress most recently applied, and whether any
// progress has been applied yet.
func (s *Sequence) LastProgress() (float64, bool) {
	return s.lastProgress, s.applied
}

// Err returns the most recent resolution error, or nil once resolved.
func (s *Sequence) Err() error {
	return s.lastErr
}

// NumSteps returns the number of steps the sequence was built from.
func (s *Sequence) NumSteps() int {
	return len(s.steps)
}
