package engine

import (
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowpen/pkg/element"
	"github.com/matzehuels/flowpen/pkg/geom"
	"github.com/matzehuels/flowpen/pkg/library"
)

var (
	addition = library.Component{
		GUID:     "a0d62394-a118-422d-abb3-6af115c75b25",
		Name:     "Addition",
		Nickname: "A+B",
		Inputs: []library.Parameter{
			{Name: "A", Nickname: "A", Type: "Generic Data"},
			{Name: "B", Nickname: "B", Type: "Generic Data"},
		},
		Outputs: []library.Parameter{
			{Name: "Result", Nickname: "R", Type: "Generic Data"},
		},
	}
	numberSlider = library.Component{
		GUID:     "57da07bd-ecab-415d-9d86-af36d7073abc",
		Name:     "Number Slider",
		Nickname: "Slider",
	}
)

func sequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

func newTestStore() *Store {
	return New(Options{Logger: log.New(io.Discard), NewID: sequence()})
}

func mustDispatch(t *testing.T, s *Store, actions ...Action) {
	t.Helper()
	for _, a := range actions {
		if err := s.Dispatch(a); err != nil {
			t.Fatalf("Dispatch(%s) error: %v", a.Kind(), err)
		}
	}
}

// addComponent places an Addition component and lays out its ports:
// inputs on the left edge, the output on the right.
func addComponent(t *testing.T, s *Store, at geom.Point) string {
	t.Helper()
	mustDispatch(t, s, AddElement{Type: element.TypeComponent, Position: at, Template: addition})
	id := s.Latest()
	mustDispatch(t, s,
		RegisterElementAnchor{ElementID: id, AnchorID: port(t, s, id, element.Input, "A"), Position: geom.Pt(0, 15)},
		RegisterElementAnchor{ElementID: id, AnchorID: port(t, s, id, element.Input, "B"), Position: geom.Pt(0, 35)},
		RegisterElementAnchor{ElementID: id, AnchorID: port(t, s, id, element.Output, "Result"), Position: geom.Pt(50, 25)},
	)
	return id
}

func addSlider(t *testing.T, s *Store, at geom.Point) string {
	t.Helper()
	mustDispatch(t, s, AddElement{Type: element.TypeSlider, Position: at, Template: numberSlider})
	id := s.Latest()
	mustDispatch(t, s, RegisterElementAnchor{ElementID: id, AnchorID: element.PortOutput, Position: geom.Pt(300, 21)})
	return id
}

func port(t *testing.T, s *Store, id string, kind element.PortKind, name string) string {
	t.Helper()
	e, ok := s.Element(id)
	if !ok {
		t.Fatalf("element %s missing", id)
	}
	p, ok := element.PortID(e, kind, name)
	if !ok {
		t.Fatalf("element %s has no %s port %q", id, kind, name)
	}
	return p
}

func ref(id, portID string) element.PortRef {
	return element.PortRef{ElementID: id, ParameterID: portID}
}

// drag runs a full wire gesture from an output port into an input port.
func drag(t *testing.T, s *Store, from, to element.PortRef, mode EndMode) {
	t.Helper()
	mustDispatch(t, s,
		StartLiveWires{Templates: []element.WireTemplate{{Mode: element.WireLive, From: &from}}, Origin: from},
		UpdateLiveWires{Position: geom.Pt(120, 20)},
		CaptureLiveWires{Type: element.Input, ElementID: to.ElementID, ParameterID: to.ParameterID},
		EndLiveWires{Mode: mode},
	)
}

func node(t *testing.T, s *Store, id string) *element.NodeState {
	t.Helper()
	e, ok := s.Element(id)
	if !ok {
		t.Fatalf("element %s missing", id)
	}
	n, ok := element.AsNode(e)
	if !ok {
		t.Fatalf("element %s is a %s, not a node", id, e.Type())
	}
	return n
}

func dataWires(s *Store) []*element.Wire {
	var out []*element.Wire
	for _, w := range s.Elements().Wires() {
		if w.Template.Mode == element.WireData {
			out = append(out, w)
		}
	}
	return out
}

func wiresInto(s *Store, to element.PortRef) []*element.Wire {
	var out []*element.Wire
	for _, w := range dataWires(s) {
		if w.Template.To != nil && *w.Template.To == to {
			out = append(out, w)
		}
	}
	return out
}
