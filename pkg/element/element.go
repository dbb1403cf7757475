package element

import (
	"github.com/matzehuels/flowpen/pkg/datatree"
	"github.com/matzehuels/flowpen/pkg/geom"
	"github.com/matzehuels/flowpen/pkg/library"
)

// =============================================================================
// Element Types
// =============================================================================

// Type is the variant tag carried in template.type.
type Type string

// Element variants.
const (
	TypeComponent  Type = "static-component"
	TypeParameter  Type = "static-parameter"
	TypeSlider     Type = "number-slider"
	TypePanel      Type = "panel"
	TypeRegion     Type = "region"
	TypeAnnotation Type = "annotation"
	TypeWire       Type = "wire"
)

// Types lists every variant tag.
var Types = []Type{
	TypeComponent, TypeParameter, TypeSlider, TypePanel,
	TypeRegion, TypeAnnotation, TypeWire,
}

// Valid reports whether t names a known variant.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Element is implemented by the seven variant pointer types of this package.
type Element interface {
	ID() string
	Type() Type
	Clone() Element

	// current returns a pointer to the variant's mutable state.
	current() any
	// replaceCurrent decodes data into a fresh state value and swaps it in.
	replaceCurrent(data []byte) error
}

// =============================================================================
// Shared State
// =============================================================================

// Visibility of a node.
const (
	Visible = "visible"
	Hidden  = "hidden"
)

// Execution state of a node.
const (
	Enabled  = "enabled"
	Disabled = "disabled"
)

// Solution strategy of a node.
const (
	Immediate = "immediate"
	Deferred  = "deferred"
)

// Dimensions is a rendered element size.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Settings are the per-node toggles.
type Settings struct {
	Visibility string `json:"visibility"`
	Execution  string `json:"execution"`
	Solution   string `json:"solution"`
}

// DefaultSettings returns visible, enabled settings with the given solution
// strategy.
func DefaultSettings(solution string) Settings {
	return Settings{Visibility: Visible, Execution: Enabled, Solution: solution}
}

// PortRef addresses one port instance on one element.
type PortRef struct {
	ElementID   string `json:"elementId"`
	ParameterID string `json:"parameterId"`
}

// Source is one incoming connection of an input port.
type Source struct {
	ElementInstanceID   string `json:"elementInstanceId"`
	ParameterInstanceID string `json:"parameterInstanceId"`
}

// Matches reports whether s is the connection from the given port.
func (s Source) Matches(from PortRef) bool {
	return s.ElementInstanceID == from.ElementID && s.ParameterInstanceID == from.ParameterID
}

// SourceOf returns the source entry for a connection from the given port.
func SourceOf(from PortRef) Source {
	return Source{ElementInstanceID: from.ElementID, ParameterInstanceID: from.ParameterID}
}

// NodeTemplate is the immutable metadata of a ports-bearing element: the
// library component it was created from plus its variant tag.
type NodeTemplate struct {
	Type Type `json:"type"`
	library.Component
}

// NewNodeTemplate tags a library component with a node variant.
func NewNodeTemplate(t Type, c library.Component) NodeTemplate {
	return NodeTemplate{Type: t, Component: c}
}

// NodeState is the mutable state shared by every ports-bearing variant.
type NodeState struct {
	Position   geom.Point                `json:"position"`
	Dimensions Dimensions                `json:"dimensions"`
	Settings   Settings                  `json:"settings"`
	Sources    map[string][]Source       `json:"sources"`
	Values     map[string]*datatree.Tree `json:"values"`
	Anchors    map[string]geom.Point     `json:"anchors"`
	Inputs     map[string]int            `json:"inputs"`
	Outputs    map[string]int            `json:"outputs"`
}

// Anchor returns the absolute canvas position of a port, if its local
// offset is known.
func (n *NodeState) Anchor(portID string) (geom.Point, bool) {
	offset, ok := n.Anchors[portID]
	if !ok {
		return geom.Point{}, false
	}
	return geom.Anchor(n.Position, offset), true
}

// HasSource reports whether the input port already receives from.
func (n *NodeState) HasSource(portID string, from PortRef) bool {
	for _, s := range n.Sources[portID] {
		if s.Matches(from) {
			return true
		}
	}
	return false
}

// RemoveSource drops the connection from the given port out of an input's
// source list. It reports whether anything was removed.
func (n *NodeState) RemoveSource(portID string, from PortRef) bool {
	sources, ok := n.Sources[portID]
	if !ok {
		return false
	}
	kept := sources[:0]
	for _, s := range sources {
		if !s.Matches(from) {
			kept = append(kept, s)
		}
	}
	n.Sources[portID] = kept
	return len(kept) != len(sources)
}

// normalize allocates any map a decoded or hand-built state left nil.
func (n *NodeState) normalize() {
	if n.Sources == nil {
		n.Sources = make(map[string][]Source)
	}
	if n.Values == nil {
		n.Values = make(map[string]*datatree.Tree)
	}
	if n.Anchors == nil {
		n.Anchors = make(map[string]geom.Point)
	}
	if n.Inputs == nil {
		n.Inputs = make(map[string]int)
	}
	if n.Outputs == nil {
		n.Outputs = make(map[string]int)
	}
}

func (n NodeState) clone() NodeState {
	out := n
	out.Sources = make(map[string][]Source, len(n.Sources))
	for k, v := range n.Sources {
		out.Sources[k] = append([]Source{}, v...)
	}
	out.Values = make(map[string]*datatree.Tree, len(n.Values))
	for k, v := range n.Values {
		out.Values[k] = v.Clone()
	}
	out.Anchors = cloneMap(n.Anchors)
	out.Inputs = cloneMap(n.Inputs)
	out.Outputs = cloneMap(n.Outputs)
	return out
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
