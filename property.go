package pinscroll

import "fmt"

// Property names an animatable node property.
type Property uint8

const (
	PropOpacity      Property = iota // Node.Alpha
	PropScale                        // Node.ScaleX and Node.ScaleY together
	PropScaleX                       // Node.ScaleX
	PropScaleY                       // Node.ScaleY
	PropX                            // Node.OffsetX (translation, not layout)
	PropY                            // Node.OffsetY
	PropWidth                        // drawn width, via Node.GrowWidth
	PropHeight                       // drawn height, via Node.GrowHeight
	PropRotation                     // Node.Rotation, radians
	PropCornerRadius                 // Node.CornerRadius
)

var propertyNames = [...]string{
	PropOpacity:      "opacity",
	PropScale:        "scale",
	PropScaleX:       "scaleX",
	PropScaleY:       "scaleY",
	PropX:            "x",
	PropY:            "y",
	PropWidth:        "width",
	PropHeight:       "height",
	PropRotation:     "rotation",
	PropCornerRadius: "borderRadius",
}

func (p Property) String() string {
	if int(p) < len(propertyNames) {
		return propertyNames[p]
	}
	return fmt.Sprintf("Property(%d)", p)
}

// ParseProperty maps a property name to its Property. "alpha" and
// "cornerRadius" are accepted as aliases.
func ParseProperty(name string) (Property, error) {
	switch name {
	case "alpha":
		return PropOpacity, nil
	case "cornerRadius":
		return PropCornerRadius, nil
	}
	for i, n := range propertyNames {
		if n == name {
			return Property(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown property %q", ErrInvalidStep, name)
}

// field is a single float64 slot on a Node. PropScale expands to two fields;
// every other property maps to one. The sequencer tracks ownership per field
// so that "scale" and "scaleX" on the same node conflict.
type field uint8

const (
	fieldAlpha field = iota
	fieldScaleX
	fieldScaleY
	fieldOffsetX
	fieldOffsetY
	fieldWidth
	fieldHeight
	fieldRotation
	fieldRadius
)

func (p Property) fields() []field {
	switch p {
	case PropOpacity:
		return []field{fieldAlpha}
	case PropScale:
		return []field{fieldScaleX, fieldScaleY}
	case PropScaleX:
		return []field{fieldScaleX}
	case PropScaleY:
		return []field{fieldScaleY}
	case PropX:
		return []field{fieldOffsetX}
	case PropY:
		return []field{fieldOffsetY}
	case PropWidth:
		return []field{fieldWidth}
	case PropHeight:
		return []field{fieldHeight}
	case PropRotation:
		return []field{fieldRotation}
	case PropCornerRadius:
		return []field{fieldRadius}
	}
	return nil
}

func (f field) ptr(n *Node) *float64 {
	switch f {
	case fieldAlpha:
		return &n.Alpha
	case fieldScaleX:
		return &n.ScaleX
	case fieldScaleY:
		return &n.ScaleY
	case fieldOffsetX:
		return &n.OffsetX
	case fieldOffsetY:
		return &n.OffsetY
	case fieldRotation:
		return &n.Rotation
	case fieldRadius:
		return &n.CornerRadius
	}
	return nil
}

// get reads the field's animated value. Width and height read the drawn
// size: layout size plus growth.
func (f field) get(n *Node) float64 {
	switch f {
	case fieldWidth:
		return n.Width + n.GrowWidth
	case fieldHeight:
		return n.Height + n.GrowHeight
	}
	return *f.ptr(n)
}

// set writes the field's animated value. Width and height store the
// difference from the layout size and leave Width and Height untouched.
func (f field) set(n *Node, v float64) {
	switch f {
	case fieldWidth:
		n.GrowWidth = v - n.Width
	case fieldHeight:
		n.GrowHeight = v - n.Height
	default:
		*f.ptr(n) = v
	}
	n.transformDirty = true
}

// Get reads the property's current value. PropScale reads ScaleX.
func (p Property) Get(n *Node) float64 {
	fs := p.fields()
	if len(fs) == 0 {
		return 0
	}
	return fs[0].get(n)
}

// Set writes v to every field of the property and marks the node dirty.
func (p Property) Set(n *Node, v float64) {
	for _, f := range p.fields() {
		f.set(n, v)
	}
	n.transformDirty = true
}
