package element

import (
	"github.com/matzehuels/flowpen/pkg/datatree"
	"github.com/matzehuels/flowpen/pkg/library"
)

// PortKind is the direction of a port.
type PortKind string

// Port directions.
const (
	Input  PortKind = "input"
	Output PortKind = "output"
)

// InitializeParameters builds the port skeleton of a new node: one fresh
// instance id per template port, an empty source list per input and an
// empty data tree per output. Instance ids are never shared between
// elements, even when they come from the same template.
func InitializeParameters(tmpl library.Component, newID func() string) NodeState {
	state := NodeState{
		Sources: make(map[string][]Source, len(tmpl.Inputs)),
		Values:  make(map[string]*datatree.Tree, len(tmpl.Outputs)),
		Inputs:  make(map[string]int, len(tmpl.Inputs)),
		Outputs: make(map[string]int, len(tmpl.Outputs)),
	}
	for i := range tmpl.Inputs {
		id := newID()
		state.Sources[id] = []Source{}
		state.Inputs[id] = i
	}
	for i := range tmpl.Outputs {
		id := newID()
		state.Values[id] = datatree.New()
		state.Outputs[id] = i
	}
	state.normalize()
	return state
}

// PortID resolves a port name (or nickname) to its instance id on e. A name
// that already is an instance id, like the "output" port of a slider,
// resolves to itself.
func PortID(e Element, kind PortKind, name string) (string, bool) {
	node, ok := AsNode(e)
	if !ok {
		return "", false
	}
	tmpl, _ := TemplateOf(e)

	ports, params := node.Inputs, tmpl.Inputs
	if kind == Output {
		ports, params = node.Outputs, tmpl.Outputs
	}
	if _, ok := ports[name]; ok {
		return name, true
	}

	best, bestOrder := "", -1
	for id, order := range ports {
		if order < 0 || order >= len(params) {
			continue
		}
		if p := params[order]; p.Name != name && p.Nickname != name {
			continue
		}
		if bestOrder == -1 || order < bestOrder {
			best, bestOrder = id, order
		}
	}
	return best, bestOrder != -1
}

// PortName returns the template name of a port instance, or the instance id
// itself when the template does not describe it.
func PortName(e Element, portID string) string {
	node, ok := AsNode(e)
	if !ok {
		return portID
	}
	tmpl, _ := TemplateOf(e)
	if order, ok := node.Inputs[portID]; ok && order >= 0 && order < len(tmpl.Inputs) {
		return tmpl.Inputs[order].Name
	}
	if order, ok := node.Outputs[portID]; ok && order >= 0 && order < len(tmpl.Outputs) {
		return tmpl.Outputs[order].Name
	}
	return portID
}
