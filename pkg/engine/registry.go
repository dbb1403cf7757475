package engine

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowpen/pkg/element"
	"github.com/matzehuels/flowpen/pkg/errors"
	"github.com/matzehuels/flowpen/pkg/geom"
)

// reducer applies actions to a state in place. It is only ever used with
// the store's write lock held.
type reducer struct {
	state  *State
	newID  func() string
	logger *log.Logger
}

// lookup returns the element with the given id and variant. An empty want
// accepts any variant.
func (r *reducer) lookup(id string, want element.Type) (element.Element, error) {
	e, ok := r.state.Elements[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "element %s does not exist", id)
	}
	if want != "" && e.Type() != want {
		return nil, errors.New(errors.ErrCodeTypeMismatch, "element %s is a %s, not a %s", id, e.Type(), want)
	}
	return e, nil
}

// =============================================================================
// Creation
// =============================================================================

func (a AddElement) apply(r *reducer) error {
	id := r.newID()

	var e element.Element
	switch a.Type {
	case element.TypeComponent:
		e = element.NewComponent(id, a.Template, a.Position, r.newID)
	case element.TypeParameter:
		e = element.NewParameter(id, a.Template, a.Position, r.newID)
	case element.TypeSlider:
		e = element.NewSlider(id, a.Template, a.Position)
	case element.TypePanel:
		e = element.NewPanel(id, a.Template, a.Position)
	case element.TypeRegion:
		e = element.NewRegion(id, a.Position)
	default:
		return errors.New(errors.ErrCodeUnsupported, "cannot add element of type %q", a.Type)
	}

	if err := element.Merge(e, a.Data); err != nil {
		return err
	}

	r.state.Elements[id] = e
	r.state.Registry.Latest = id
	return nil
}

func (a AddLiveElement) apply(r *reducer) error {
	id := r.newID()

	var e element.Element
	switch a.Type {
	case element.TypeAnnotation:
		e = element.NewAnnotation(id, a.Position, a.Dimensions)
	case element.TypeRegion:
		e = element.NewRegion(id, a.Position)
	default:
		return errors.New(errors.ErrCodeUnsupported, "cannot add live element of type %q", a.Type)
	}

	r.state.Elements[id] = e
	r.state.Registry.Latest = id
	r.state.Registry.Live = append(r.state.Registry.Live, id)
	return nil
}

// =============================================================================
// Update
// =============================================================================

func (a UpdateElement) apply(r *reducer) error {
	return r.update(a.ID, a.Type, a.Data)
}

func (a UpdateLiveElement) apply(r *reducer) error {
	return r.update(a.ID, a.Type, a.Data)
}

func (a BatchUpdateLiveElement) apply(r *reducer) error {
	var first error
	for _, u := range a.Updates {
		if err := r.update(u.ID, u.Type, u.Data); err != nil {
			r.logger.Warn("live update skipped", "id", u.ID, "error", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func (r *reducer) update(id string, typ element.Type, data element.Patch) error {
	e, err := r.lookup(id, typ)
	if err != nil {
		return err
	}
	return element.Merge(e, data)
}

// =============================================================================
// Deletion
// =============================================================================

func (a DeleteElements) apply(r *reducer) error {
	for _, id := range a.IDs {
		e, ok := r.state.Elements[id]
		if !ok {
			continue
		}
		if w, ok := element.AsWire(e); ok {
			r.deleteWire(w)
			continue
		}
		for _, w := range r.state.wires() {
			if from, to := w.AttachedTo(id, ""); from || to {
				r.deleteWire(w)
			}
		}
		r.forget(id)
	}
	return nil
}

func (a DeleteLiveElements) apply(r *reducer) error {
	for _, id := range a.IDs {
		if _, ok := r.state.Elements[id]; !ok {
			continue
		}
		if !r.state.isLive(id) {
			r.logger.Debug("refusing live delete of committed element", "id", id)
			continue
		}
		r.forget(id)
	}
	return nil
}

// deleteWire removes a wire and, for data wires, the source entry it
// represents at its target.
func (r *reducer) deleteWire(w *element.Wire) {
	t := w.Template
	if t.Mode == element.WireData && t.From != nil && t.To != nil {
		if target, ok := element.AsNode(r.state.Elements[t.To.ElementID]); ok {
			target.RemoveSource(t.To.ParameterID, *t.From)
		}
	}
	r.forget(w.ID())
}

// forget removes an element and every registry reference to it.
func (r *reducer) forget(id string) {
	delete(r.state.Elements, id)
	reg := &r.state.Registry
	r.state.Selection = without(r.state.Selection, id)
	reg.Live = without(reg.Live, id)
	reg.Move.Elements = without(reg.Move.Elements, id)
	reg.Move.FromWires = without(reg.Move.FromWires, id)
	reg.Move.ToWires = without(reg.Move.ToWires, id)
	reg.Wire.Live = without(reg.Wire.Live, id)
}

func without(ids []string, id string) []string {
	return slices.DeleteFunc(ids, func(x string) bool { return x == id })
}

// =============================================================================
// Motion
// =============================================================================

func (a MoveElement) apply(r *reducer) error {
	e, err := r.lookup(a.ID, "")
	if err != nil {
		return err
	}
	if _, ok := element.Position(e); !ok {
		return errors.New(errors.ErrCodeTypeMismatch, "element %s (%s) has no position", a.ID, e.Type())
	}
	r.move(e, a.Position)
	return nil
}

func (a MoveElements) apply(r *reducer) error {
	targets := make([]element.Element, len(a.Moves))
	for i, m := range a.Moves {
		e, err := r.lookup(m.ID, "")
		if err != nil {
			return err
		}
		if _, ok := element.Position(e); !ok {
			return errors.New(errors.ErrCodeTypeMismatch, "element %s (%s) has no position", m.ID, e.Type())
		}
		targets[i] = e
	}
	for i, e := range targets {
		r.move(e, a.Moves[i].Position)
	}
	return nil
}

// move sets the position of e and re-derives the endpoints of attached
// wires from its anchors. An end whose anchor is unknown is left alone.
func (r *reducer) move(e element.Element, position geom.Point) {
	pos, _ := element.Position(e)
	*pos = position

	node, ok := element.AsNode(e)
	if !ok {
		return
	}
	for _, w := range r.state.wires() {
		from, to := w.AttachedTo(e.ID(), "")
		if from {
			if p, ok := node.Anchor(w.Template.From.ParameterID); ok {
				w.Current.From = p
			}
		}
		if to {
			if p, ok := node.Anchor(w.Template.To.ParameterID); ok {
				w.Current.To = p
			}
		}
	}
}

// =============================================================================
// Layout
// =============================================================================

func (a RegisterElement) apply(r *reducer) error {
	e, err := r.lookup(a.ID, "")
	if err != nil {
		return err
	}
	if size, ok := element.Size(e); ok {
		*size = a.Dimensions
	}
	if a.Adjustment == nil || slices.Contains(r.state.Registry.Restored, a.ID) {
		return nil
	}
	if pos, ok := element.Position(e); ok {
		*pos = pos.Add(*a.Adjustment)
	}
	return nil
}

func (a RegisterElementAnchor) apply(r *reducer) error {
	e, err := r.lookup(a.ElementID, "")
	if err != nil {
		return err
	}
	node, ok := element.AsNode(e)
	if !ok {
		return errors.New(errors.ErrCodeTypeMismatch, "element %s (%s) has no anchors", a.ElementID, e.Type())
	}
	node.Anchors[a.AnchorID] = a.Position
	return nil
}

// =============================================================================
// Settings
// =============================================================================

func (a ToggleVisibility) apply(r *reducer) error {
	for _, id := range a.IDs {
		settings, ok := element.SettingsOf(r.state.Elements[id])
		if !ok {
			continue
		}
		if settings.Visibility == element.Visible {
			settings.Visibility = element.Hidden
		} else {
			settings.Visibility = element.Visible
		}
	}
	return nil
}

func (a SetVisibility) apply(r *reducer) error {
	if a.Visibility != element.Visible && a.Visibility != element.Hidden {
		return errors.New(errors.ErrCodeInvalidAction, "unknown visibility %q", a.Visibility)
	}
	changed := []string{}
	for _, id := range a.IDs {
		settings, ok := element.SettingsOf(r.state.Elements[id])
		if !ok || settings.Visibility == a.Visibility {
			continue
		}
		settings.Visibility = a.Visibility
		changed = append(changed, id)
	}
	r.state.Registry.Visibility = changed
	return nil
}

func (a SetMode) apply(r *reducer) error {
	r.state.Mode = a.Mode
	return nil
}
