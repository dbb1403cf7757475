package engine

import (
	"slices"

	"github.com/matzehuels/flowpen/pkg/element"
)

func (a PrepareLiveMotion) apply(r *reducer) error {
	if slices.Contains(r.state.Selection, a.Anchor) {
		// The selection change already primed the cache; the anchor itself
		// is moved by its own gesture.
		r.state.Registry.Move.Elements = without(r.state.Registry.Move.Elements, a.Anchor)
		return nil
	}
	r.prepareMotion(a.Targets)
	return nil
}

// prepareMotion scans once for every wire end attached to targets and
// caches it together with the targets.
func (r *reducer) prepareMotion(targets []string) {
	move := MoveRegistry{
		Elements:  slices.Clone(targets),
		FromWires: []string{},
		ToWires:   []string{},
	}
	if move.Elements == nil {
		move.Elements = []string{}
	}
	set := make(map[string]bool, len(targets))
	for _, id := range targets {
		set[id] = true
	}
	for _, w := range r.state.wires() {
		if w.Template.From != nil && set[w.Template.From.ElementID] {
			move.FromWires = append(move.FromWires, w.ID())
		}
		if w.Template.To != nil && set[w.Template.To.ElementID] {
			move.ToWires = append(move.ToWires, w.ID())
		}
	}
	r.state.Registry.Move = move
}

func (a DispatchLiveMotion) apply(r *reducer) error {
	move := r.state.Registry.Move
	for _, id := range move.FromWires {
		if w, ok := element.AsWire(r.state.Elements[id]); ok {
			w.Current.From = w.Current.From.Add(a.Delta)
		}
	}
	for _, id := range move.ToWires {
		if w, ok := element.AsWire(r.state.Elements[id]); ok {
			w.Current.To = w.Current.To.Add(a.Delta)
		}
	}
	for _, id := range move.Elements {
		e, ok := r.state.Elements[id]
		if !ok {
			continue
		}
		if pos, ok := element.Position(e); ok {
			*pos = pos.Add(a.Delta)
		}
	}
	return nil
}
