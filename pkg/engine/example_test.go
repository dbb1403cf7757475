package engine_test

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowpen/pkg/element"
	"github.com/matzehuels/flowpen/pkg/engine"
	"github.com/matzehuels/flowpen/pkg/geom"
	"github.com/matzehuels/flowpen/pkg/library"
)

func Example() {
	n := 0
	store := engine.New(engine.Options{
		Logger: log.New(io.Discard),
		NewID: func() string {
			n++
			return fmt.Sprintf("n%d", n)
		},
	})

	negative := library.Component{
		GUID:    "negative",
		Name:    "Negative",
		Inputs:  []library.Parameter{{Name: "Value"}},
		Outputs: []library.Parameter{{Name: "Result"}},
	}

	// A slider feeding a component. Anchors normally come from the
	// renderer once the ports are laid out.
	_ = store.Dispatch(engine.AddElement{Type: element.TypeSlider, Template: library.Component{Name: "Slider"}})
	slider := store.Latest()
	_ = store.Dispatch(engine.RegisterElementAnchor{ElementID: slider, AnchorID: element.PortOutput, Position: geom.Pt(300, 21)})

	_ = store.Dispatch(engine.AddElement{Type: element.TypeComponent, Position: geom.Pt(400, 0), Template: negative})
	comp := store.Latest()
	e, _ := store.Element(comp)
	in, _ := element.PortID(e, element.Input, "Value")
	_ = store.Dispatch(engine.RegisterElementAnchor{ElementID: comp, AnchorID: in, Position: geom.Pt(0, 25)})

	from := element.PortRef{ElementID: slider, ParameterID: element.PortOutput}
	for _, a := range []engine.Action{
		engine.StartLiveWires{Templates: []element.WireTemplate{{Mode: element.WireLive, From: &from}}, Origin: from},
		engine.UpdateLiveWires{Position: geom.Pt(390, 20)},
		engine.CaptureLiveWires{Type: element.Input, ElementID: comp, ParameterID: in},
		engine.EndLiveWires{Mode: engine.EndDefault},
	} {
		_ = store.Dispatch(a)
	}

	for _, w := range store.Manifest().Graph.Elements.Wires() {
		fmt.Println(w.Template.From.ElementID, "->", w.Template.To.ElementID, w.Current.From, w.Current.To)
	}
	fmt.Println("undo:", store.History().Past)
	// Output:
	// n1 -> n2 (300, 21) (400, 25)
	// undo: 3
}
