package element

import (
	"encoding/json"

	"github.com/matzehuels/flowpen/pkg/datatree"
	"github.com/matzehuels/flowpen/pkg/geom"
	"github.com/matzehuels/flowpen/pkg/library"
)

// Well-known port ids of the single-port variants.
const (
	PortInput  = "input"
	PortOutput = "output"
)

// Default sizes used before the first layout reports real dimensions.
var (
	ComponentSize = Dimensions{Width: 50, Height: 50}
	SliderSize    = Dimensions{Width: 300, Height: 42}
	PanelSize     = Dimensions{Width: 250, Height: 150}
)

// DefaultPanelText is the initial content of a new panel.
const DefaultPanelText = "Double click to edit panel content..."

// =============================================================================
// Component & Parameter
// =============================================================================

// Component is a library component placed on the canvas.
type Component struct {
	ElementID string       `json:"id"`
	Template  NodeTemplate `json:"template"`
	Current   NodeState    `json:"current"`
}

// NewComponent creates a component whose ports get fresh instance ids.
func NewComponent(id string, tmpl library.Component, position geom.Point, newID func() string) *Component {
	state := InitializeParameters(tmpl, newID)
	state.Position = position
	state.Dimensions = ComponentSize
	state.Settings = DefaultSettings(Deferred)
	return &Component{ElementID: id, Template: NewNodeTemplate(TypeComponent, tmpl), Current: state}
}

func (c *Component) ID() string   { return c.ElementID }
func (c *Component) Type() Type   { return TypeComponent }
func (c *Component) current() any { return &c.Current }

func (c *Component) Clone() Element {
	out := *c
	out.Current = c.Current.clone()
	return &out
}

func (c *Component) replaceCurrent(data []byte) error {
	var next NodeState
	if err := json.Unmarshal(data, &next); err != nil {
		return err
	}
	next.normalize()
	c.Current = next
	return nil
}

// Parameter is a standalone parameter node. It shares the component layout.
type Parameter struct {
	ElementID string       `json:"id"`
	Template  NodeTemplate `json:"template"`
	Current   NodeState    `json:"current"`
}

// NewParameter creates a parameter node whose ports get fresh instance ids.
func NewParameter(id string, tmpl library.Component, position geom.Point, newID func() string) *Parameter {
	state := InitializeParameters(tmpl, newID)
	state.Position = position
	state.Dimensions = ComponentSize
	state.Settings = DefaultSettings(Deferred)
	return &Parameter{ElementID: id, Template: NewNodeTemplate(TypeParameter, tmpl), Current: state}
}

func (p *Parameter) ID() string   { return p.ElementID }
func (p *Parameter) Type() Type   { return TypeParameter }
func (p *Parameter) current() any { return &p.Current }

func (p *Parameter) Clone() Element {
	out := *p
	out.Current = p.Current.clone()
	return &out
}

func (p *Parameter) replaceCurrent(data []byte) error {
	var next NodeState
	if err := json.Unmarshal(data, &next); err != nil {
		return err
	}
	next.normalize()
	p.Current = next
	return nil
}

// =============================================================================
// Slider
// =============================================================================

// Slider rounding modes.
const (
	RoundRational = "rational"
	RoundInteger  = "integer"
	RoundEven     = "even"
	RoundOdd      = "odd"
)

// SliderState extends NodeState with the numeric range.
type SliderState struct {
	NodeState
	Rounding  string     `json:"rounding"`
	Domain    [2]float64 `json:"domain"`
	Precision int        `json:"precision"`
}

// Slider is a number slider with a single output port.
type Slider struct {
	ElementID string       `json:"id"`
	Template  NodeTemplate `json:"template"`
	Current   SliderState  `json:"current"`
}

// NewSlider creates a slider holding 0.25 on the unit domain.
func NewSlider(id string, tmpl library.Component, position geom.Point) *Slider {
	state := NodeState{
		Position:   position,
		Dimensions: SliderSize,
		Settings:   DefaultSettings(Immediate),
		Values: map[string]*datatree.Tree{
			PortOutput: datatree.Single(datatree.Number(0.25)),
		},
		Outputs: map[string]int{PortOutput: 0},
	}
	state.normalize()
	return &Slider{
		ElementID: id,
		Template:  NewNodeTemplate(TypeSlider, tmpl),
		Current: SliderState{
			NodeState: state,
			Rounding:  RoundRational,
			Domain:    [2]float64{0, 1},
			Precision: 3,
		},
	}
}

func (s *Slider) ID() string   { return s.ElementID }
func (s *Slider) Type() Type   { return TypeSlider }
func (s *Slider) current() any { return &s.Current }

func (s *Slider) Clone() Element {
	out := *s
	out.Current.NodeState = s.Current.NodeState.clone()
	return &out
}

func (s *Slider) replaceCurrent(data []byte) error {
	var next SliderState
	if err := json.Unmarshal(data, &next); err != nil {
		return err
	}
	next.normalize()
	s.Current = next
	return nil
}

// =============================================================================
// Panel
// =============================================================================

// PanelState extends NodeState with the panel display mode.
type PanelState struct {
	NodeState
	IsMultilineData bool `json:"isMultilineData"`
}

// Panel displays incoming data and re-emits it on its output.
type Panel struct {
	ElementID string       `json:"id"`
	Template  NodeTemplate `json:"template"`
	Current   PanelState   `json:"current"`
}

// NewPanel creates a panel with placeholder text and one empty input.
func NewPanel(id string, tmpl library.Component, position geom.Point) *Panel {
	state := NodeState{
		Position:   position,
		Dimensions: PanelSize,
		Settings:   DefaultSettings(Immediate),
		Sources:    map[string][]Source{PortInput: {}},
		Values: map[string]*datatree.Tree{
			PortOutput: datatree.Single(datatree.Text(DefaultPanelText)),
		},
		Outputs: map[string]int{PortOutput: 0},
	}
	state.normalize()
	return &Panel{
		ElementID: id,
		Template:  NewNodeTemplate(TypePanel, tmpl),
		Current:   PanelState{NodeState: state, IsMultilineData: true},
	}
}

func (p *Panel) ID() string   { return p.ElementID }
func (p *Panel) Type() Type   { return TypePanel }
func (p *Panel) current() any { return &p.Current }

func (p *Panel) Clone() Element {
	out := *p
	out.Current.NodeState = p.Current.NodeState.clone()
	return &out
}

func (p *Panel) replaceCurrent(data []byte) error {
	var next PanelState
	if err := json.Unmarshal(data, &next); err != nil {
		return err
	}
	next.normalize()
	p.Current = next
	return nil
}

// =============================================================================
// Region & Annotation
// =============================================================================

// Template is the metadata of variants that carry nothing but their tag.
type Template struct {
	Type Type `json:"type"`
}

// RegionSelection records how a region combines with the selection.
type RegionSelection struct {
	Mode string `json:"mode"`
}

// RegionState is a drag rectangle.
type RegionState struct {
	Position   geom.Point      `json:"position"`
	Dimensions Dimensions      `json:"dimensions"`
	From       geom.Point      `json:"from"`
	To         geom.Point      `json:"to"`
	Selection  RegionSelection `json:"selection"`
}

// Bounds returns the rectangle spanned by the drag.
func (r RegionState) Bounds() geom.Region {
	return geom.Region{From: r.From, To: r.To}
}

// Region is a marquee selection rectangle. It lives for one gesture.
type Region struct {
	ElementID string      `json:"id"`
	Template  Template    `json:"template"`
	Current   RegionState `json:"current"`
}

// NewRegion creates a zero-size region anchored at position.
func NewRegion(id string, position geom.Point) *Region {
	return &Region{
		ElementID: id,
		Template:  Template{Type: TypeRegion},
		Current: RegionState{
			Position:  position,
			From:      position,
			To:        position,
			Selection: RegionSelection{Mode: "default"},
		},
	}
}

func (r *Region) ID() string   { return r.ElementID }
func (r *Region) Type() Type   { return TypeRegion }
func (r *Region) current() any { return &r.Current }

func (r *Region) Clone() Element {
	out := *r
	return &out
}

func (r *Region) replaceCurrent(data []byte) error {
	var next RegionState
	if err := json.Unmarshal(data, &next); err != nil {
		return err
	}
	r.Current = next
	return nil
}

// AnnotationState is a placed note.
type AnnotationState struct {
	Position   geom.Point `json:"position"`
	Dimensions Dimensions `json:"dimensions"`
	Content    string     `json:"content,omitempty"`
}

// Annotation is free text on the canvas.
type Annotation struct {
	ElementID string          `json:"id"`
	Template  Template        `json:"template"`
	Current   AnnotationState `json:"current"`
}

// NewAnnotation creates an annotation.
func NewAnnotation(id string, position geom.Point, size Dimensions) *Annotation {
	return &Annotation{
		ElementID: id,
		Template:  Template{Type: TypeAnnotation},
		Current:   AnnotationState{Position: position, Dimensions: size},
	}
}

func (a *Annotation) ID() string   { return a.ElementID }
func (a *Annotation) Type() Type   { return TypeAnnotation }
func (a *Annotation) current() any { return &a.Current }

func (a *Annotation) Clone() Element {
	out := *a
	return &out
}

func (a *Annotation) replaceCurrent(data []byte) error {
	var next AnnotationState
	if err := json.Unmarshal(data, &next); err != nil {
		return err
	}
	a.Current = next
	return nil
}

// =============================================================================
// Wire
// =============================================================================

// WireMode distinguishes persistent connections from gesture previews.
type WireMode string

// Wire modes.
const (
	WireLive        WireMode = "live"
	WireProvisional WireMode = "provisional"
	WireData        WireMode = "data"
)

// WireTemplate describes what a wire connects. While a live wire is being
// dragged exactly one of From and To is set; data wires have both.
type WireTemplate struct {
	Type      Type     `json:"type"`
	Mode      WireMode `json:"mode"`
	From      *PortRef `json:"from,omitempty"`
	To        *PortRef `json:"to,omitempty"`
	Transpose bool     `json:"transpose,omitempty"`
}

// WireState holds absolute endpoint coordinates.
type WireState struct {
	From       geom.Point `json:"from"`
	To         geom.Point `json:"to"`
	Position   geom.Point `json:"position"`
	Dimensions Dimensions `json:"dimensions"`
}

// Wire connects an output port to an input port.
type Wire struct {
	ElementID string       `json:"id"`
	Template  WireTemplate `json:"template"`
	Current   WireState    `json:"current"`
}

// NewWire creates a wire with the given endpoints.
func NewWire(id string, tmpl WireTemplate, from, to geom.Point) *Wire {
	tmpl.Type = TypeWire
	return &Wire{ElementID: id, Template: tmpl, Current: WireState{From: from, To: to}}
}

// NewDataWire creates a persistent connection wire.
func NewDataWire(id string, from, to PortRef, fromPos, toPos geom.Point) *Wire {
	return NewWire(id, WireTemplate{Mode: WireData, From: &from, To: &to}, fromPos, toPos)
}

func (w *Wire) ID() string   { return w.ElementID }
func (w *Wire) Type() Type   { return TypeWire }
func (w *Wire) current() any { return &w.Current }

func (w *Wire) Clone() Element {
	out := *w
	if w.Template.From != nil {
		from := *w.Template.From
		out.Template.From = &from
	}
	if w.Template.To != nil {
		to := *w.Template.To
		out.Template.To = &to
	}
	return &out
}

func (w *Wire) replaceCurrent(data []byte) error {
	var next WireState
	if err := json.Unmarshal(data, &next); err != nil {
		return err
	}
	w.Current = next
	return nil
}

// Connects reports whether w is a data wire between exactly from and to.
// Live and provisional wires never count as connections.
func (w *Wire) Connects(from, to PortRef) bool {
	t := w.Template
	return t.Mode == WireData && t.From != nil && t.To != nil && *t.From == from && *t.To == to
}

// AttachedTo reports which ends of w reference elementID. When portID is
// not empty the port must match as well.
func (w *Wire) AttachedTo(elementID, portID string) (from, to bool) {
	match := func(ref *PortRef) bool {
		return ref != nil && ref.ElementID == elementID && (portID == "" || ref.ParameterID == portID)
	}
	return match(w.Template.From), match(w.Template.To)
}
