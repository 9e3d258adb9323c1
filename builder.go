package pinscroll

import (
	"fmt"
	"math"
	"sort"
)

// Targets is a set of nodes one timeline entry animates.
type Targets []*Node

// Props maps properties to endpoint values for a timeline entry.
type Props map[Property]Value

// TimelineDefaults apply to every entry that does not override them.
type TimelineDefaults struct {
	// Ease is the default curve name. Empty means "none".
	Ease string
	// Duration is the default entry length in timeline seconds. Zero means 0.5.
	Duration float64
}

// EntryOption adjusts one timeline entry.
type EntryOption func(*timelineEntry)

// Dur sets the entry duration in timeline seconds.
func Dur(d float64) EntryOption {
	return func(e *timelineEntry) { e.duration = d; e.hasDuration = true }
}

// At places the entry at an absolute timeline position instead of after the
// previous entry.
func At(pos float64) EntryOption {
	return func(e *timelineEntry) { e.at = pos; e.hasAt = true }
}

// Eased overrides the default curve for the entry.
func Eased(name string) EntryOption {
	return func(e *timelineEntry) { e.ease = name; e.hasEase = true }
}

// Named labels the entry. The label appears in StepError messages.
func Named(name string) EntryOption {
	return func(e *timelineEntry) { e.name = name }
}

type timelineEntry struct {
	name    string
	targets Targets
	from    Props // nil for To entries
	to      Props

	duration    float64
	hasDuration bool
	at          float64
	hasAt       bool
	ease        string
	hasEase     bool

	start float64
}

type timelineSet struct {
	targets Targets
	props   map[Property]float64
}

// Timeline composes steps in relative time the way section code is usually
// written: each entry has a duration and is appended after the previous one
// unless placed with At. Steps normalizes the result into [0, 1] windows.
type Timeline struct {
	defaults TimelineDefaults
	entries  []*timelineEntry
	sets     []timelineSet
	cursor   float64
}

// NewTimeline creates an empty timeline.
func NewTimeline(defaults TimelineDefaults) *Timeline {
	if defaults.Duration <= 0 {
		defaults.Duration = 0.5
	}
	return &Timeline{defaults: defaults}
}

// To animates targets from their current values to props.
func (tl *Timeline) To(targets Targets, to Props, opts ...EntryOption) *Timeline {
	return tl.add(targets, nil, to, opts)
}

// FromTo animates targets between explicit endpoints. Properties missing from
// from start at the current value.
func (tl *Timeline) FromTo(targets Targets, from, to Props, opts ...EntryOption) *Timeline {
	if from == nil {
		from = Props{}
	}
	return tl.add(targets, from, to, opts)
}

// Set records literal values written to targets when the timeline is built,
// before any baseline is captured.
func (tl *Timeline) Set(targets Targets, props map[Property]float64) *Timeline {
	tl.sets = append(tl.sets, timelineSet{targets: targets, props: props})
	return tl
}

func (tl *Timeline) add(targets Targets, from, to Props, opts []EntryOption) *Timeline {
	e := &timelineEntry{targets: targets, from: from, to: to}
	for _, opt := range opts {
		opt(e)
	}
	if !e.hasDuration {
		e.duration = tl.defaults.Duration
	}
	if !e.hasEase {
		e.ease = tl.defaults.Ease
	}
	e.start = tl.cursor
	if e.hasAt {
		e.start = e.at
	}
	tl.cursor = math.Max(tl.cursor, e.start+e.duration)
	tl.entries = append(tl.entries, e)
	return tl
}

// Duration returns the total timeline length in timeline seconds.
func (tl *Timeline) Duration() float64 {
	return tl.cursor
}

// Steps converts the entries into normalized steps. Window errors are
// reported by Build; Steps only rejects entries that cannot be normalized.
func (tl *Timeline) Steps() ([]Step, error) {
	if len(tl.entries) == 0 {
		return nil, fmt.Errorf("%w: timeline has no entries", ErrInvalidStep)
	}
	total := tl.Duration()
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return nil, fmt.Errorf("%w: timeline duration %g", ErrInvalidStep, total)
	}
	steps := make([]Step, 0, len(tl.entries))
	for i, e := range tl.entries {
		if e.duration <= 0 || e.start < 0 {
			return nil, &StepError{Index: i, Name: e.name, Reason: fmt.Sprintf("duration %g at %g", e.duration, e.start)}
		}
		end := e.start + e.duration
		steps = append(steps, Step{
			Name:    e.name,
			Targets: append([]*Node(nil), e.targets...),
			Start:   e.start / total,
			End:     math.Min(end/total, 1),
			Tweens:  e.tweens(),
			Ease:    e.ease,
		})
	}
	return steps, nil
}

// tweens returns the entry's tweens in property order.
func (e *timelineEntry) tweens() []Tween {
	props := make([]Property, 0, len(e.to))
	for p := range e.to {
		props = append(props, p)
	}
	sort.Slice(props, func(i, j int) bool { return props[i] < props[j] })
	out := make([]Tween, 0, len(props))
	for _, p := range props {
		from := Current()
		if v, ok := e.from[p]; ok {
			from = v
		}
		out = append(out, Tween{Prop: p, From: from, To: e.to[p]})
	}
	return out
}

// Build validates Steps, applies recorded Set values and builds a Sequence.
// A build that fails validation leaves every target untouched.
func (tl *Timeline) Build(driver Driver, opts ...Option) (*Sequence, error) {
	steps, err := tl.Steps()
	if err != nil {
		return nil, err
	}
	s, err := newSequence(steps, driver, opts)
	if err != nil {
		return nil, err
	}
	tl.applySets()
	s.start()
	return s, nil
}

func (tl *Timeline) applySets() {
	for _, s := range tl.sets {
		for _, n := range s.targets {
			if !alive(n) {
				continue
			}
			for p, v := range s.props {
				p.Set(n, v)
			}
		}
	}
}
