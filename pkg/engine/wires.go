package engine

import (
	"github.com/matzehuels/flowpen/pkg/element"
	"github.com/matzehuels/flowpen/pkg/geom"
)

// WirePhase is the state of the wire gesture.
type WirePhase string

// Wire gesture phases. A gesture moves idle → dragging ⇄ captured and back
// to idle when it is committed or cancelled.
const (
	WireIdle     WirePhase = "idle"
	WireDragging WirePhase = "dragging"
	WireCaptured WirePhase = "captured"
)

func (s *State) wirePhase() WirePhase {
	switch {
	case len(s.liveWires()) == 0:
		return WireIdle
	case s.Registry.Wire.Capture != nil:
		return WireCaptured
	default:
		return WireDragging
	}
}

// anchor resolves the absolute position of a port.
func (r *reducer) anchor(ref element.PortRef) (geom.Point, bool) {
	node, ok := element.AsNode(r.state.Elements[ref.ElementID])
	if !ok {
		return geom.Point{}, false
	}
	return node.Anchor(ref.ParameterID)
}

// anchorOrPosition falls back to the element position when the port has
// not been laid out yet.
func (r *reducer) anchorOrPosition(ref element.PortRef) geom.Point {
	if p, ok := r.anchor(ref); ok {
		return p
	}
	if pos, ok := element.Position(r.state.Elements[ref.ElementID]); ok {
		return *pos
	}
	return geom.Point{}
}

// discardLiveWires removes every live wire and clears the capture.
func (r *reducer) discardLiveWires() {
	for _, w := range r.state.liveWires() {
		r.forget(w.ID())
	}
	r.state.Registry.Wire.Capture = nil
	r.state.Registry.Wire.Live = []string{}
}

// =============================================================================
// Gesture
// =============================================================================

func (a StartLiveWires) apply(r *reducer) error {
	reg := &r.state.Registry.Wire
	if stale := r.state.liveWires(); len(stale) > 0 {
		r.logger.Warn("discarding live wires left over from an earlier gesture", "count", len(stale))
		r.discardLiveWires()
	}

	reg.Capture = nil
	reg.Origin = a.Origin
	reg.Live = []string{}

	for _, tmpl := range a.Templates {
		if tmpl.Mode != element.WireLive {
			continue
		}
		ref := tmpl.From
		if ref == nil {
			ref = tmpl.To
		}
		if ref == nil {
			r.logger.Debug("live wire template has no attached end")
			continue
		}
		p, ok := r.anchor(*ref)
		if !ok {
			r.logger.Debug("live wire origin has no anchor yet", "element", ref.ElementID, "port", ref.ParameterID)
			continue
		}

		w := element.NewWire(r.newID(), tmpl, p, p)
		r.state.Elements[w.ID()] = w
		if len(reg.Live) == 0 {
			reg.Primary = w.ID()
		}
		reg.Live = append(reg.Live, w.ID())
	}
	return nil
}

func (a UpdateLiveWires) apply(r *reducer) error {
	if r.state.Registry.Wire.Capture != nil {
		return nil
	}
	for _, w := range r.state.liveWires() {
		if w.Template.From != nil {
			w.Current.To = a.Position
		} else {
			w.Current.From = a.Position
		}
	}
	return nil
}

func (a CaptureLiveWires) apply(r *reducer) error {
	reg := &r.state.Registry.Wire
	if reg.Origin.ElementID == a.ElementID {
		r.logger.Debug("capture rejected: self connection", "element", a.ElementID)
		return nil
	}

	target := element.PortRef{ElementID: a.ElementID, ParameterID: a.ParameterID}
	p, ok := r.anchor(target)
	if !ok {
		r.logger.Debug("capture rejected: target port has no anchor", "element", a.ElementID, "port", a.ParameterID)
		return nil
	}

	for _, w := range r.state.liveWires() {
		// Connecting into an input fills the wire's "to" end; the template
		// must have left it open.
		bound := w.Template.To
		if a.Type == element.Output {
			bound = w.Template.From
		}
		if bound != nil {
			r.logger.Debug("capture rejected: port direction", "element", a.ElementID, "type", a.Type)
			continue
		}

		reg.Capture = &target
		if w.Template.From != nil {
			w.Current.To = p
		} else {
			w.Current.From = p
		}
	}
	return nil
}

func (a ReleaseLiveWires) apply(r *reducer) error {
	r.state.Registry.Wire.Capture = nil
	return nil
}

// =============================================================================
// Commit
// =============================================================================

func (a EndLiveWires) apply(r *reducer) error {
	wires := r.state.liveWires()
	capture := r.state.Registry.Wire.Capture

	if a.Mode == EndCancel || capture == nil || len(wires) == 0 {
		if a.Mode != EndCancel && len(wires) > 0 {
			r.logger.Debug("live wires ended without a capture")
		}
		r.discardLiveWires()
		return nil
	}

	if wires[0].Template.Transpose {
		r.detachOrigin(r.state.Registry.Wire.Origin)
	}

	for _, w := range wires {
		mode := a.Mode
		if w.Template.Transpose {
			mode = EndTranspose
		}
		from, to := *capture, *capture
		if w.Template.From != nil {
			from = *w.Template.From
		}
		if w.Template.To != nil {
			to = *w.Template.To
		}
		r.connect(mode, from, to)
		r.forget(w.ID())
	}

	r.state.Registry.Wire.Capture = nil
	r.state.Registry.Wire.Live = []string{}

	if len(r.state.Selection) > 0 {
		r.prepareMotion(r.state.Selection)
	}
	return nil
}

// detachOrigin removes every connection at the origin port in both
// directions, ahead of a transpose.
func (r *reducer) detachOrigin(origin element.PortRef) {
	for _, w := range r.state.wires() {
		if w.Template.Mode != element.WireData {
			continue
		}
		from, to := w.AttachedTo(origin.ElementID, origin.ParameterID)
		if from {
			r.deleteWire(w)
		}
		if to {
			if node, ok := element.AsNode(r.state.Elements[origin.ElementID]); ok {
				node.Sources[origin.ParameterID] = []element.Source{}
			}
			r.forget(w.ID())
		}
	}
}

// connect applies one resolved connection.
func (r *reducer) connect(mode EndMode, from, to element.PortRef) {
	target, ok := element.AsNode(r.state.Elements[to.ElementID])
	if !ok {
		r.logger.Warn("connection target is missing or has no ports", "element", to.ElementID)
		return
	}
	if target.Sources[to.ParameterID] == nil {
		r.logger.Warn("repairing missing source list", "element", to.ElementID, "port", to.ParameterID)
		target.Sources[to.ParameterID] = []element.Source{}
	}

	switch mode {
	case EndDefault:
		// Single-source drop: everything else at the target port goes.
		exists := false
		for _, w := range r.state.wires() {
			if _, into := w.AttachedTo(to.ElementID, to.ParameterID); !into {
				continue
			}
			if w.Template.Mode != element.WireData {
				continue
			}
			if w.Connects(from, to) {
				exists = true
				continue
			}
			r.deleteWire(w)
		}
		kept := target.Sources[to.ParameterID][:0]
		for _, s := range target.Sources[to.ParameterID] {
			if s.Matches(from) {
				kept = append(kept, s)
			}
		}
		target.Sources[to.ParameterID] = kept
		if exists && len(kept) > 0 {
			return
		}
		r.addConnection(target, from, to)

	case EndAdd, EndTranspose:
		if target.HasSource(to.ParameterID, from) {
			return
		}
		r.addConnection(target, from, to)

	case EndRemove:
		for _, w := range r.state.wires() {
			if w.Connects(from, to) {
				r.deleteWire(w)
			}
		}
		target.RemoveSource(to.ParameterID, from)
	}
}

func (r *reducer) addConnection(target *element.NodeState, from, to element.PortRef) {
	if !target.HasSource(to.ParameterID, from) {
		target.Sources[to.ParameterID] = append(target.Sources[to.ParameterID], element.SourceOf(from))
	}
	for _, w := range r.state.wires() {
		if w.Connects(from, to) {
			return
		}
	}
	w := element.NewDataWire(r.newID(), from, to, r.anchorOrPosition(from), r.anchorOrPosition(to))
	r.state.Elements[w.ID()] = w
}

// =============================================================================
// Provisional Wire
// =============================================================================

func (a SetProvisionalWire) apply(r *reducer) error {
	from, ok := r.anchor(a.From)
	if !ok {
		r.logger.Debug("provisional wire skipped: no anchor", "element", a.From.ElementID)
		return nil
	}
	to, ok := r.anchor(a.To)
	if !ok {
		r.logger.Debug("provisional wire skipped: no anchor", "element", a.To.ElementID)
		return nil
	}
	f, t := a.From, a.To
	tmpl := element.WireTemplate{Mode: element.WireProvisional, From: &f, To: &t}
	r.state.Elements[ProvisionalWireID] = element.NewWire(ProvisionalWireID, tmpl, from, to)
	return nil
}

func (a ClearProvisionalWire) apply(r *reducer) error {
	delete(r.state.Elements, ProvisionalWireID)
	return nil
}
