package pinscroll

import (
	"math"
	"sort"

	"github.com/tanema/gween/ease"
)

// EaseFunc maps a normalized phase in [0, 1] to an eased factor. f(0) must be
// 0 and f(1) must be 1; values in between may overshoot.
type EaseFunc func(t float64) float64

// EasingProvider resolves easing names to curves. A Scene owns one and passes
// it to every Sequence it builds, so curve registration is per scene rather
// than process-wide.
type EasingProvider interface {
	Ease(name string) (EaseFunc, bool)
}

// Easings is a name → curve registry. The zero value is empty; use
// NewEasings for the standard set.
type Easings struct {
	funcs map[string]EaseFunc
}

// NewEasings returns a registry holding every gween curve under both its
// gween name ("InOutCubic") and the GSAP-style name ("power2.inOut").
// "none" and "linear" are the identity.
func NewEasings() *Easings {
	e := &Easings{funcs: make(map[string]EaseFunc, 96)}
	quad, cubic, quart, quint := powerCurves(2), powerCurves(3), powerCurves(4), powerCurves(5)
	sine := [3]EaseFunc{sineIn, sineOut, sineInOut}
	families := []struct {
		gsap  []string
		curve [3]EaseFunc // in, out, inOut
	}{
		{[]string{"power1", "quad"}, quad},
		{[]string{"power2", "cubic"}, cubic},
		{[]string{"power3", "quart"}, quart},
		{[]string{"power4", "quint", "strong"}, quint},
		{[]string{"sine"}, sine},
		{[]string{"expo"}, tweenCurves(ease.InExpo, ease.OutExpo, ease.InOutExpo)},
		{[]string{"circ"}, tweenCurves(ease.InCirc, ease.OutCirc, ease.InOutCirc)},
		{[]string{"back"}, tweenCurves(ease.InBack, ease.OutBack, ease.InOutBack)},
		{[]string{"elastic"}, tweenCurves(ease.InElastic, ease.OutElastic, ease.InOutElastic)},
		{[]string{"bounce"}, tweenCurves(ease.InBounce, ease.OutBounce, ease.InOutBounce)},
	}
	gweenNames := map[string]EaseFunc{
		"InQuad": quad[0], "OutQuad": quad[1], "InOutQuad": quad[2], "OutInQuad": FromTween(ease.OutInQuad),
		"InCubic": cubic[0], "OutCubic": cubic[1], "InOutCubic": cubic[2], "OutInCubic": FromTween(ease.OutInCubic),
		"InQuart": quart[0], "OutQuart": quart[1], "InOutQuart": quart[2], "OutInQuart": FromTween(ease.OutInQuart),
		"InQuint": quint[0], "OutQuint": quint[1], "InOutQuint": quint[2], "OutInQuint": FromTween(ease.OutInQuint),
		"InSine": sine[0], "OutSine": sine[1], "InOutSine": sine[2], "OutInSine": FromTween(ease.OutInSine),
		"InExpo": FromTween(ease.InExpo), "OutExpo": FromTween(ease.OutExpo), "InOutExpo": FromTween(ease.InOutExpo), "OutInExpo": FromTween(ease.OutInExpo),
		"InCirc": FromTween(ease.InCirc), "OutCirc": FromTween(ease.OutCirc), "InOutCirc": FromTween(ease.InOutCirc), "OutInCirc": FromTween(ease.OutInCirc),
		"InBack": FromTween(ease.InBack), "OutBack": FromTween(ease.OutBack), "InOutBack": FromTween(ease.InOutBack), "OutInBack": FromTween(ease.OutInBack),
		"InElastic": FromTween(ease.InElastic), "OutElastic": FromTween(ease.OutElastic), "InOutElastic": FromTween(ease.InOutElastic), "OutInElastic": FromTween(ease.OutInElastic),
		"InBounce": FromTween(ease.InBounce), "OutBounce": FromTween(ease.OutBounce), "InOutBounce": FromTween(ease.InOutBounce), "OutInBounce": FromTween(ease.OutInBounce),
	}

	e.Register("none", Linear)
	e.Register("linear", Linear)
	e.Register("Linear", Linear)
	for _, fam := range families {
		for _, name := range fam.gsap {
			e.Register(name+".in", fam.curve[0])
			e.Register(name+".out", fam.curve[1])
			e.Register(name+".inOut", fam.curve[2])
			// A bare family name means ".out", as in GSAP.
			e.Register(name, fam.curve[1])
		}
	}
	for name, f := range gweenNames {
		e.Register(name, f)
	}
	return e
}

// Register adds or replaces a curve. Endpoints are pinned so that f(0)=0 and
// f(1)=1 regardless of the curve's numerical error.
func (e *Easings) Register(name string, f EaseFunc) {
	if e.funcs == nil {
		e.funcs = make(map[string]EaseFunc)
	}
	e.funcs[name] = pinEndpoints(f)
}

// Ease implements EasingProvider.
func (e *Easings) Ease(name string) (EaseFunc, bool) {
	f, ok := e.funcs[name]
	return f, ok
}

// Names returns the registered names in sorted order.
func (e *Easings) Names() []string {
	names := make([]string, 0, len(e.funcs))
	for name := range e.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Linear is the identity curve.
func Linear(t float64) float64 { return t }

// FromTween adapts a gween curve (t, begin, change, duration) to an EaseFunc.
// gween evaluates in float32, so results carry about 1e-7 relative error.
// The power and sine families in NewEasings are evaluated in float64 instead.
func FromTween(f ease.TweenFunc) EaseFunc {
	return func(t float64) float64 {
		return float64(f(float32(t), 0, 1, 1))
	}
}

func tweenCurves(in, out, inOut ease.TweenFunc) [3]EaseFunc {
	return [3]EaseFunc{FromTween(in), FromTween(out), FromTween(inOut)}
}

// powerCurves returns the in, out and inOut curves of t^k.
func powerCurves(k float64) [3]EaseFunc {
	in := func(t float64) float64 { return math.Pow(t, k) }
	out := func(t float64) float64 { return 1 - math.Pow(1-t, k) }
	inOut := func(t float64) float64 {
		if t < 0.5 {
			return math.Pow(2, k-1) * math.Pow(t, k)
		}
		return 1 - math.Pow(2-2*t, k)/2
	}
	return [3]EaseFunc{in, out, inOut}
}

func sineIn(t float64) float64    { return 1 - math.Cos(t*math.Pi/2) }
func sineOut(t float64) float64   { return math.Sin(t * math.Pi / 2) }
func sineInOut(t float64) float64 { return -(math.Cos(math.Pi*t) - 1) / 2 }

func pinEndpoints(f EaseFunc) EaseFunc {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		return f(t)
	}
}
