package pinscroll

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is a declarative timeline plus trigger, loaded from YAML:
//
//	name: grow-image
//	trigger:
//	  anchor: section
//	  start: top top
//	  end: +=150%
//	  pin: true
//	  pinSpacing: true
//	  scrub: 1.5
//	defaults:
//	  ease: power2.inOut
//	set:
//	  - target: final
//	    props: {opacity: 0, scale: 0, y: 50}
//	tweens:
//	  - target: circle
//	    to: {scale: 15}
//	    duration: 1
//	  - target: image
//	    to: {x: 30vw, y: -10vw, borderRadius: 1rem}
//	    duration: 1
//	    at: 0.5
//
// Values are numbers or strings with a unit: px, rem (16px), vw, vh, vmin,
// vmax. "current" takes the value at build time and "@name" (quoted, since
// YAML reserves '@') refers to a deferred value supplied in Bindings.
type Scenario struct {
	Name     string           `yaml:"name"`
	Trigger  ScenarioTrigger  `yaml:"trigger"`
	Defaults ScenarioDefaults `yaml:"defaults"`
	Set      []ScenarioSet    `yaml:"set"`
	Tweens   []ScenarioTween  `yaml:"tweens"`
}

// ScenarioTrigger describes the TriggerRegion. Anchor names a bound node and
// defaults to "section".
type ScenarioTrigger struct {
	Anchor     string  `yaml:"anchor"`
	Start      string  `yaml:"start"`
	End        string  `yaml:"end"`
	Pin        bool    `yaml:"pin"`
	PinSpacing bool    `yaml:"pinSpacing"`
	Scrub      float64 `yaml:"scrub"`
	Markers    bool    `yaml:"markers"`
}

// ScenarioDefaults mirror TimelineDefaults.
type ScenarioDefaults struct {
	Ease     string  `yaml:"ease"`
	Duration float64 `yaml:"duration"`
}

// ScenarioSet is an immediate assignment applied before the timeline builds.
type ScenarioSet struct {
	Target  string             `yaml:"target"`
	Targets []string           `yaml:"targets"`
	Props   map[string]float64 `yaml:"props"`
}

// ScenarioTween is one timeline entry. Entries with From are fromTo tweens;
// the rest animate from the current value.
type ScenarioTween struct {
	Name     string         `yaml:"name"`
	Target   string         `yaml:"target"`
	Targets  []string       `yaml:"targets"`
	From     map[string]any `yaml:"from"`
	To       map[string]any `yaml:"to"`
	Duration *float64       `yaml:"duration"`
	At       *float64       `yaml:"at"`
	Ease     string         `yaml:"ease"`
}

// Bindings connect scenario names to the scene.
type Bindings struct {
	Nodes    map[string]*Node
	Deferred map[string]DeferredValue
}

// LoadScenario parses YAML scenario data.
func LoadScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(sc.Tweens) == 0 {
		return nil, fmt.Errorf("parse scenario %q: %w: no tweens", sc.Name, ErrInvalidStep)
	}
	if sc.Trigger.Anchor == "" {
		sc.Trigger.Anchor = "section"
	}
	if sc.Trigger.Start == "" {
		sc.Trigger.Start = "top top"
	}
	if sc.Trigger.End == "" {
		sc.Trigger.End = "+=100%"
	}
	return &sc, nil
}

// Compile binds the scenario to nodes and returns its timeline and region.
// Unknown node names fail with ErrMissingTarget; malformed values with
// ErrInvalidStep.
func (sc *Scenario) Compile(b Bindings) (*Timeline, TriggerRegion, error) {
	region, err := sc.region(b)
	if err != nil {
		return nil, TriggerRegion{}, err
	}

	tl := NewTimeline(TimelineDefaults{Ease: sc.Defaults.Ease, Duration: sc.Defaults.Duration})
	for i, s := range sc.Set {
		targets, err := b.targets(s.Target, s.Targets)
		if err != nil {
			return nil, TriggerRegion{}, fmt.Errorf("scenario %q: set %d: %w", sc.Name, i, err)
		}
		props := make(map[Property]float64, len(s.Props))
		for name, v := range s.Props {
			p, err := ParseProperty(name)
			if err != nil {
				return nil, TriggerRegion{}, fmt.Errorf("scenario %q: set %d: %w", sc.Name, i, err)
			}
			props[p] = v
		}
		tl.Set(targets, props)
	}

	for i, tw := range sc.Tweens {
		targets, err := b.targets(tw.Target, tw.Targets)
		if err != nil {
			return nil, TriggerRegion{}, fmt.Errorf("scenario %q: tween %d: %w", sc.Name, i, err)
		}
		to, err := b.props(tw.To)
		if err != nil {
			return nil, TriggerRegion{}, fmt.Errorf("scenario %q: tween %d: %w", sc.Name, i, err)
		}
		if len(to) == 0 {
			return nil, TriggerRegion{}, fmt.Errorf("scenario %q: tween %d: %w: no properties", sc.Name, i, ErrInvalidStep)
		}
		var opts []EntryOption
		if tw.Name != "" {
			opts = append(opts, Named(tw.Name))
		}
		if tw.Duration != nil {
			opts = append(opts, Dur(*tw.Duration))
		}
		if tw.At != nil {
			opts = append(opts, At(*tw.At))
		}
		if tw.Ease != "" {
			opts = append(opts, Eased(tw.Ease))
		}
		if tw.From == nil {
			tl.To(targets, to, opts...)
			continue
		}
		from, err := b.props(tw.From)
		if err != nil {
			return nil, TriggerRegion{}, fmt.Errorf("scenario %q: tween %d: %w", sc.Name, i, err)
		}
		tl.FromTo(targets, from, to, opts...)
	}
	return tl, region, nil
}

func (sc *Scenario) region(b Bindings) (TriggerRegion, error) {
	t := sc.Trigger
	anchor := b.Nodes[t.Anchor]
	if anchor == nil {
		return TriggerRegion{}, fmt.Errorf("scenario %q: %w: anchor %q not bound", sc.Name, ErrMissingTarget, t.Anchor)
	}
	start, err := ParseOffset(t.Start)
	if err != nil {
		return TriggerRegion{}, fmt.Errorf("scenario %q: start: %w", sc.Name, err)
	}
	end, err := ParseOffset(t.End)
	if err != nil {
		return TriggerRegion{}, fmt.Errorf("scenario %q: end: %w", sc.Name, err)
	}
	return TriggerRegion{
		Anchor:     anchor,
		Start:      start,
		End:        end,
		Pinned:     t.Pin,
		PinSpacing: t.PinSpacing,
		Scrub:      t.Scrub,
		Markers:    t.Markers,
		Name:       sc.Name,
	}, nil
}

func (b Bindings) targets(one string, many []string) (Targets, error) {
	names := many
	if one != "" {
		names = append([]string{one}, many...)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no target", ErrMissingTarget)
	}
	out := make(Targets, 0, len(names))
	for _, name := range names {
		n := b.Nodes[name]
		if n == nil {
			return nil, fmt.Errorf("%w: node %q not bound", ErrMissingTarget, name)
		}
		out = append(out, n)
	}
	return out, nil
}

func (b Bindings) props(raw map[string]any) (Props, error) {
	out := make(Props, len(raw))
	for name, v := range raw {
		p, err := ParseProperty(name)
		if err != nil {
			return nil, err
		}
		val, err := b.value(v)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", p, err)
		}
		out[p] = val
	}
	return out, nil
}

// remPixels is the root font size "rem" lengths resolve against.
const remPixels = 16

// value converts a YAML scalar to a Value.
func (b Bindings) value(v any) (Value, error) {
	switch x := v.(type) {
	case int:
		return Lit(float64(x)), nil
	case float64:
		return Lit(x), nil
	case string:
		return b.parseValue(strings.TrimSpace(x))
	}
	return Value{}, fmt.Errorf("%w: unsupported value %v (%T)", ErrInvalidStep, v, v)
}

func (b Bindings) parseValue(s string) (Value, error) {
	if s == "current" {
		return Current(), nil
	}
	if strings.HasPrefix(s, "@") {
		d, ok := b.Deferred[s[1:]]
		if !ok {
			return Value{}, fmt.Errorf("%w: deferred value %q not bound", ErrInvalidStep, s[1:])
		}
		return Deferred(d), nil
	}
	units := []struct {
		suffix string
		value  func(f float64) Value
	}{
		{"vmax", func(f float64) Value { return Deferred(ViewportMax(f / 100)) }},
		{"vmin", func(f float64) Value { return Deferred(ViewportMin(f / 100)) }},
		{"vw", func(f float64) Value { return Deferred(ViewportWidth(f / 100)) }},
		{"vh", func(f float64) Value { return Deferred(ViewportHeight(f / 100)) }},
		{"rem", func(f float64) Value { return Lit(f * remPixels) }},
		{"px", func(f float64) Value { return Lit(f) }},
		{"", func(f float64) Value { return Lit(f) }},
	}
	for _, u := range units {
		if !strings.HasSuffix(s, u.suffix) {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, u.suffix), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, fmt.Errorf("%w: bad value %q", ErrInvalidStep, s)
		}
		return u.value(f), nil
	}
	return Value{}, fmt.Errorf("%w: bad value %q", ErrInvalidStep, s)
}
