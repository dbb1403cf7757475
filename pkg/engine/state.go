package engine

import (
	"slices"

	"github.com/matzehuels/flowpen/pkg/element"
)

// Mode is the editor interaction mode. The engine stores it for the
// presentation layer and does not interpret it.
type Mode string

// Editor modes.
const (
	ModeIdle      Mode = "idle"
	ModeSelecting Mode = "selecting"
	ModeMoving    Mode = "moving"
	ModeWiring    Mode = "wiring"
	ModePlacing   Mode = "placing"
)

// ProvisionalWireID is the fixed id of the connection preview wire.
const ProvisionalWireID = "provisional-wire"

// State is the full mutable state of one graph.
type State struct {
	Elements  element.Map `json:"elements"`
	Selection []string    `json:"selection"`
	Mode      Mode        `json:"mode"`
	Registry  Registry    `json:"registry"`
}

// Registry holds bookkeeping that is not part of any element.
type Registry struct {
	// Latest is the id of the most recently created element.
	Latest string `json:"latest"`

	// Visibility lists the ids the last SetVisibility actually changed.
	Visibility []string `json:"visibility"`

	// Restored lists ids exempt from first-placement correction.
	Restored []string `json:"restored"`

	// Live lists non-wire elements created by AddLiveElement.
	Live []string `json:"live"`

	Move MoveRegistry `json:"move"`
	Wire WireRegistry `json:"wire"`
}

// MoveRegistry caches what a live-motion dispatch moves.
type MoveRegistry struct {
	Elements  []string `json:"elements"`
	FromWires []string `json:"fromWires"`
	ToWires   []string `json:"toWires"`
}

// WireRegistry tracks the live wire gesture.
type WireRegistry struct {
	Primary string           `json:"primary"`
	Origin  element.PortRef  `json:"origin"`
	Capture *element.PortRef `json:"capture,omitempty"`

	// Live lists the gesture's live wire ids in creation order.
	Live []string `json:"live"`
}

func newState() *State {
	return &State{
		Elements:  element.Map{},
		Selection: []string{},
		Mode:      ModeIdle,
		Registry:  newRegistry(),
	}
}

func newRegistry() Registry {
	return Registry{
		Latest:     unset,
		Visibility: []string{},
		Restored:   []string{},
		Live:       []string{},
		Move:       MoveRegistry{Elements: []string{}, FromWires: []string{}, ToWires: []string{}},
		Wire:       WireRegistry{Primary: unset, Origin: element.PortRef{ElementID: unset, ParameterID: unset}, Live: []string{}},
	}
}

const unset = "unset"

func (s *State) clone() *State {
	out := *s
	out.Elements = s.Elements.Clone()
	out.Selection = slices.Clone(s.Selection)
	out.Registry = s.Registry.clone()
	return &out
}

func (r Registry) clone() Registry {
	out := r
	out.Visibility = slices.Clone(r.Visibility)
	out.Restored = slices.Clone(r.Restored)
	out.Live = slices.Clone(r.Live)
	out.Move = MoveRegistry{
		Elements:  slices.Clone(r.Move.Elements),
		FromWires: slices.Clone(r.Move.FromWires),
		ToWires:   slices.Clone(r.Move.ToWires),
	}
	out.Wire.Live = slices.Clone(r.Wire.Live)
	if r.Wire.Capture != nil {
		c := *r.Wire.Capture
		out.Wire.Capture = &c
	}
	return out
}

// isLive reports whether id names an element that must not outlive its
// gesture.
func (s *State) isLive(id string) bool {
	e, ok := s.Elements[id]
	if !ok {
		return false
	}
	return element.IsLive(e) || slices.Contains(s.Registry.Live, id)
}

// committed returns a copy of the elements with every live element removed.
func (s *State) committed() element.Map {
	out := make(element.Map, len(s.Elements))
	for id, e := range s.Elements {
		if s.isLive(id) {
			continue
		}
		out[id] = e.Clone()
	}
	return out
}

// liveWires returns the gesture's live wires in creation order, followed by
// any live wire the registry lost track of.
func (s *State) liveWires() []*element.Wire {
	var out []*element.Wire
	seen := make(map[string]bool)
	for _, id := range s.Registry.Wire.Live {
		if w, ok := element.AsWire(s.Elements[id]); ok && w.Template.Mode == element.WireLive {
			out = append(out, w)
			seen[id] = true
		}
	}
	for _, id := range sortedIDs(s.Elements) {
		if seen[id] {
			continue
		}
		if w, ok := element.AsWire(s.Elements[id]); ok && w.Template.Mode == element.WireLive {
			out = append(out, w)
		}
	}
	return out
}

// wires returns every wire sorted by id.
func (s *State) wires() []*element.Wire {
	var out []*element.Wire
	for _, id := range sortedIDs(s.Elements) {
		if w, ok := element.AsWire(s.Elements[id]); ok {
			out = append(out, w)
		}
	}
	return out
}

func sortedIDs(m element.Map) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
