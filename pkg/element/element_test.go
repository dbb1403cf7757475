package element

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/matzehuels/flowpen/pkg/errors"
	"github.com/matzehuels/flowpen/pkg/geom"
	"github.com/matzehuels/flowpen/pkg/library"
)

func counter() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("p%d", n)
	}
}

var addition = library.Component{
	GUID:     "add",
	Name:     "Addition",
	Nickname: "A+B",
	Inputs:   []library.Parameter{{Name: "A", Nickname: "a"}, {Name: "B", Nickname: "b"}},
	Outputs:  []library.Parameter{{Name: "Result", Nickname: "R"}},
}

func TestInitializeParameters(t *testing.T) {
	newID := counter()
	first := InitializeParameters(addition, newID)
	second := InitializeParameters(addition, newID)

	if len(first.Inputs) != 2 || len(first.Outputs) != 1 {
		t.Fatalf("ports = %d in / %d out, want 2 / 1", len(first.Inputs), len(first.Outputs))
	}
	for id := range first.Inputs {
		if _, shared := second.Inputs[id]; shared {
			t.Errorf("input instance id %q shared between instances", id)
		}
		if s, ok := first.Sources[id]; !ok || s == nil || len(s) != 0 {
			t.Errorf("sources[%s] = %v, want empty list", id, s)
		}
	}
	for id := range first.Outputs {
		if first.Values[id] == nil {
			t.Errorf("values[%s] missing", id)
		}
	}
	if first.Anchors == nil || len(first.Anchors) != 0 {
		t.Errorf("anchors = %v, want empty map", first.Anchors)
	}
}

func TestConstructors(t *testing.T) {
	pos := geom.Pt(10, 20)
	tests := []struct {
		name     string
		e        Element
		typ      Type
		size     Dimensions
		solution string
	}{
		{"component", NewComponent("c", addition, pos, counter()), TypeComponent, ComponentSize, Deferred},
		{"parameter", NewParameter("p", addition, pos, counter()), TypeParameter, ComponentSize, Deferred},
		{"slider", NewSlider("s", library.Component{}, pos), TypeSlider, SliderSize, Immediate},
		{"panel", NewPanel("n", library.Component{}, pos), TypePanel, PanelSize, Immediate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.e.Type() != tt.typ {
				t.Errorf("Type() = %s, want %s", tt.e.Type(), tt.typ)
			}
			tmpl, ok := TemplateOf(tt.e)
			if !ok || tmpl.Type != tt.typ {
				t.Errorf("template type = %s, want %s", tmpl.Type, tt.typ)
			}
			node, ok := AsNode(tt.e)
			if !ok {
				t.Fatal("AsNode() = false")
			}
			if node.Position != pos || node.Dimensions != tt.size {
				t.Errorf("position/size = %v %v", node.Position, node.Dimensions)
			}
			if node.Settings != DefaultSettings(tt.solution) {
				t.Errorf("settings = %+v", node.Settings)
			}
		})
	}

	t.Run("slider defaults", func(t *testing.T) {
		s := NewSlider("s", library.Component{}, pos)
		if s.Current.Rounding != RoundRational || s.Current.Domain != [2]float64{0, 1} || s.Current.Precision != 3 {
			t.Errorf("slider state = %+v", s.Current)
		}
		values, ok := s.Current.Values[PortOutput].Branch("{0}")
		if !ok || len(values) != 1 || values[0].Value != 0.25 {
			t.Errorf("slider value = %v", values)
		}
	})

	t.Run("panel defaults", func(t *testing.T) {
		p := NewPanel("n", library.Component{}, pos)
		if !p.Current.IsMultilineData {
			t.Error("panel should default to multiline")
		}
		if s, ok := p.Current.Sources[PortInput]; !ok || len(s) != 0 {
			t.Errorf("panel sources = %v", p.Current.Sources)
		}
	})

	t.Run("region", func(t *testing.T) {
		r := NewRegion("r", pos)
		if r.Current.From != pos || r.Current.To != pos || r.Current.Selection.Mode != "default" {
			t.Errorf("region = %+v", r.Current)
		}
	})
}

func TestPortID(t *testing.T) {
	c := NewComponent("c", addition, geom.Point{}, counter())
	tests := []struct {
		kind   PortKind
		name   string
		wantOK bool
		order  int
	}{
		{Input, "A", true, 0},
		{Input, "b", true, 1},
		{Output, "Result", true, 0},
		{Output, "A", false, 0},
		{Input, "missing", false, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.name, func(t *testing.T) {
			id, ok := PortID(c, tt.kind, tt.name)
			if ok != tt.wantOK {
				t.Fatalf("PortID() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			ports := c.Current.Inputs
			if tt.kind == Output {
				ports = c.Current.Outputs
			}
			if ports[id] != tt.order {
				t.Errorf("PortID() = %s with order %d, want order %d", id, ports[id], tt.order)
			}
			if tt.kind == Input && PortName(c, id) != addition.Inputs[tt.order].Name {
				t.Errorf("PortName(%s) = %s", id, PortName(c, id))
			}
		})
	}

	s := NewSlider("s", library.Component{}, geom.Point{})
	if id, ok := PortID(s, Output, PortOutput); !ok || id != PortOutput {
		t.Errorf("slider output = %q %v", id, ok)
	}
	if _, ok := PortID(NewRegion("r", geom.Point{}), Input, "A"); ok {
		t.Error("region has no ports")
	}
}

func TestMerge(t *testing.T) {
	t.Run("shallow replace", func(t *testing.T) {
		c := NewComponent("c", addition, geom.Pt(1, 1), counter())
		patch, err := PatchOf(map[string]any{
			"position": geom.Pt(5, 6),
			"anchors":  map[string]geom.Point{"x": geom.Pt(1, 2)},
		})
		if err != nil {
			t.Fatal(err)
		}
		if err := Merge(c, patch); err != nil {
			t.Fatalf("Merge() error: %v", err)
		}
		if c.Current.Position != geom.Pt(5, 6) {
			t.Errorf("position = %v", c.Current.Position)
		}
		if len(c.Current.Anchors) != 1 {
			t.Errorf("anchors = %v, want replaced map", c.Current.Anchors)
		}
		if len(c.Current.Inputs) != 2 {
			t.Errorf("untouched field changed: inputs = %v", c.Current.Inputs)
		}
	})

	t.Run("slider keeps embedded state", func(t *testing.T) {
		s := NewSlider("s", library.Component{}, geom.Point{})
		if err := Merge(s, Patch{"precision": json.RawMessage(`5`)}); err != nil {
			t.Fatal(err)
		}
		if s.Current.Precision != 5 || s.Current.Dimensions != SliderSize {
			t.Errorf("slider = %+v", s.Current)
		}
	})

	t.Run("bad patch leaves element unchanged", func(t *testing.T) {
		c := NewComponent("c", addition, geom.Pt(1, 1), counter())
		err := Merge(c, Patch{"position": json.RawMessage(`"nowhere"`)})
		if !errors.Is(err, errors.ErrCodeInvalidPatch) {
			t.Fatalf("Merge() error = %v, want INVALID_PATCH", err)
		}
		if c.Current.Position != geom.Pt(1, 1) {
			t.Errorf("position changed to %v", c.Current.Position)
		}
	})
}

func TestUnmarshalRoundTrip(t *testing.T) {
	pos := geom.Pt(3, 4)
	from := PortRef{ElementID: "s", ParameterID: PortOutput}
	to := PortRef{ElementID: "c", ParameterID: "p1"}
	elements := []Element{
		NewComponent("c", addition, pos, counter()),
		NewParameter("p", addition, pos, counter()),
		NewSlider("s", library.Component{GUID: "slider"}, pos),
		NewPanel("n", library.Component{}, pos),
		NewRegion("r", pos),
		NewAnnotation("a", pos, Dimensions{Width: 10, Height: 5}),
		NewDataWire("w", from, to, geom.Pt(1, 1), geom.Pt(2, 2)),
	}

	for _, e := range elements {
		t.Run(string(e.Type()), func(t *testing.T) {
			data, err := json.Marshal(e)
			if err != nil {
				t.Fatal(err)
			}
			got, err := Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if got.ID() != e.ID() || got.Type() != e.Type() {
				t.Errorf("got %s/%s, want %s/%s", got.ID(), got.Type(), e.ID(), e.Type())
			}
			again, _ := json.Marshal(got)
			if string(again) != string(data) {
				t.Errorf("round trip mismatch:\n got %s\nwant %s", again, data)
			}
		})
	}
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{`},
		{"no id", `{"template":{"type":"panel"}}`},
		{"unknown type", `{"id":"x","template":{"type":"teapot"}}`},
		{"bad current", `{"id":"x","template":{"type":"panel"},"current":{"position":"up"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(tt.input)); !errors.Is(err, errors.ErrCodeInvalidManifest) {
				t.Errorf("Unmarshal() error = %v, want INVALID_MANIFEST", err)
			}
		})
	}
}

func TestMap(t *testing.T) {
	m := Map{
		"s": NewSlider("s", library.Component{}, geom.Point{}),
		"w": NewDataWire("w", PortRef{"s", PortOutput}, PortRef{"c", "i"}, geom.Point{}, geom.Point{}),
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Map
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if len(decoded) != 2 || len(decoded.Wires()) != 1 {
		t.Errorf("decoded = %v", decoded)
	}

	var mismatched Map
	if err := json.Unmarshal([]byte(`{"k":{"id":"other","template":{"type":"region"}}}`), &mismatched); err == nil {
		t.Error("expected key/id mismatch error")
	}
}

func TestClone(t *testing.T) {
	c := NewComponent("c", addition, geom.Point{}, counter())
	in, _ := PortID(c, Input, "A")
	clone := c.Clone().(*Component)

	clone.Current.Position = geom.Pt(9, 9)
	clone.Current.Sources[in] = append(clone.Current.Sources[in], Source{"x", "y"})
	clone.Current.Anchors[in] = geom.Pt(1, 1)

	if c.Current.Position != (geom.Point{}) || len(c.Current.Sources[in]) != 0 || len(c.Current.Anchors) != 0 {
		t.Error("mutating clone changed the original")
	}

	w := NewDataWire("w", PortRef{"a", "o"}, PortRef{"b", "i"}, geom.Point{}, geom.Point{})
	wc := w.Clone().(*Wire)
	wc.Template.From.ElementID = "z"
	if w.Template.From.ElementID != "a" {
		t.Error("wire clone shares port refs")
	}
}

func TestCapabilities(t *testing.T) {
	wire := NewWire("w", WireTemplate{Mode: WireLive}, geom.Point{}, geom.Point{})
	tests := []struct {
		name       string
		e          Element
		node       bool
		positioned bool
		live       bool
	}{
		{"component", NewComponent("c", addition, geom.Point{}, counter()), true, true, false},
		{"region", NewRegion("r", geom.Point{}), false, true, true},
		{"annotation", NewAnnotation("a", geom.Point{}, Dimensions{}), false, true, false},
		{"live wire", wire, false, false, true},
		{"data wire", NewDataWire("d", PortRef{}, PortRef{}, geom.Point{}, geom.Point{}), false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := AsNode(tt.e); ok != tt.node {
				t.Errorf("AsNode() = %v, want %v", ok, tt.node)
			}
			if _, ok := Position(tt.e); ok != tt.positioned {
				t.Errorf("Position() = %v, want %v", ok, tt.positioned)
			}
			if IsLive(tt.e) != tt.live {
				t.Errorf("IsLive() = %v, want %v", IsLive(tt.e), tt.live)
			}
		})
	}

	for _, typ := range Types {
		want := typ == TypeComponent || typ == TypeParameter || typ == TypeSlider || typ == TypePanel
		if IsSelectable(typ) != want {
			t.Errorf("IsSelectable(%s) = %v, want %v", typ, IsSelectable(typ), want)
		}
	}
}

func TestExtents(t *testing.T) {
	c := NewComponent("c", addition, geom.Pt(10, 20), counter())
	r, ok := Extents(c)
	if !ok {
		t.Fatal("Extents() = false")
	}
	lo, hi := r.Bounds()
	if lo != geom.Pt(10, 20) || hi != geom.Pt(60, 70) {
		t.Errorf("Extents() = %v..%v", lo, hi)
	}
}

func TestSources(t *testing.T) {
	n := &NodeState{Sources: map[string][]Source{"in": {{"a", "o"}, {"b", "o"}}}}
	from := PortRef{ElementID: "a", ParameterID: "o"}

	if !n.HasSource("in", from) {
		t.Error("HasSource() = false")
	}
	if !n.RemoveSource("in", from) {
		t.Error("RemoveSource() = false")
	}
	if n.HasSource("in", from) || len(n.Sources["in"]) != 1 {
		t.Errorf("sources after remove = %v", n.Sources["in"])
	}
	// Only an exact (element, port) pair is removed.
	if n.RemoveSource("in", PortRef{ElementID: "b", ParameterID: "other"}) {
		t.Error("RemoveSource() removed a partial match")
	}
}
