package element

import "github.com/matzehuels/flowpen/pkg/geom"

// AsNode returns the port-bearing state of a component, parameter, slider or
// panel. The returned pointer aliases e.
func AsNode(e Element) (*NodeState, bool) {
	switch v := e.(type) {
	case *Component:
		return &v.Current, true
	case *Parameter:
		return &v.Current, true
	case *Slider:
		return &v.Current.NodeState, true
	case *Panel:
		return &v.Current.NodeState, true
	}
	return nil, false
}

// TemplateOf returns the node template of a port-bearing element.
func TemplateOf(e Element) (NodeTemplate, bool) {
	switch v := e.(type) {
	case *Component:
		return v.Template, true
	case *Parameter:
		return v.Template, true
	case *Slider:
		return v.Template, true
	case *Panel:
		return v.Template, true
	}
	return NodeTemplate{}, false
}

// AsWire narrows e to a wire.
func AsWire(e Element) (*Wire, bool) {
	w, ok := e.(*Wire)
	return w, ok
}

// Position returns a pointer to the canvas position of any element that is
// placed by position. Wires are positioned by their endpoints instead.
func Position(e Element) (*geom.Point, bool) {
	if node, ok := AsNode(e); ok {
		return &node.Position, true
	}
	switch v := e.(type) {
	case *Region:
		return &v.Current.Position, true
	case *Annotation:
		return &v.Current.Position, true
	}
	return nil, false
}

// Size returns the rendered dimensions of a positioned element.
func Size(e Element) (*Dimensions, bool) {
	if node, ok := AsNode(e); ok {
		return &node.Dimensions, true
	}
	switch v := e.(type) {
	case *Region:
		return &v.Current.Dimensions, true
	case *Annotation:
		return &v.Current.Dimensions, true
	case *Wire:
		return &v.Current.Dimensions, true
	}
	return nil, false
}

// Extents returns the axis-aligned bounding box of a positioned element.
func Extents(e Element) (geom.Region, bool) {
	pos, ok := Position(e)
	if !ok {
		return geom.Region{}, false
	}
	size, _ := Size(e)
	return geom.Extents(*pos, size.Width, size.Height), true
}

// SettingsOf returns a pointer to a node's settings.
func SettingsOf(e Element) (*Settings, bool) {
	node, ok := AsNode(e)
	if !ok {
		return nil, false
	}
	return &node.Settings, true
}

// IsSelectable reports whether elements of type t take part in selection.
func IsSelectable(t Type) bool {
	switch t {
	case TypeComponent, TypeParameter, TypePanel, TypeSlider:
		return true
	}
	return false
}

// IsLive reports whether e only exists for the duration of a gesture: live
// and provisional wires, and regions.
func IsLive(e Element) bool {
	switch v := e.(type) {
	case *Wire:
		return v.Template.Mode == WireLive || v.Template.Mode == WireProvisional
	case *Region:
		return true
	}
	return false
}
