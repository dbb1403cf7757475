package engine

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/matzehuels/flowpen/pkg/element"
)

// DefaultHistoryLimit bounds the number of undo steps kept.
const DefaultHistoryLimit = 100

// HistoryState reports undo/redo availability.
type HistoryState struct {
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
	Past    int  `json:"past"`
	Future  int  `json:"future"`
}

// snapshot is the committed part of a state: no live elements, no gesture
// registries.
type snapshot struct {
	Elements  element.Map `json:"elements"`
	Selection []string    `json:"selection"`
}

func takeSnapshot(s *State) snapshot {
	elements := s.committed()
	selection := make([]string, 0, len(s.Selection))
	for _, id := range s.Selection {
		if _, ok := elements[id]; ok {
			selection = append(selection, id)
		}
	}
	return snapshot{Elements: elements, Selection: selection}
}

func (s snapshot) clone() snapshot {
	return snapshot{Elements: s.Elements.Clone(), Selection: slices.Clone(s.Selection)}
}

// equal reports whether two snapshots hold the same selection and elements.
// Selection, size and key set are checked first; element bodies are then
// compared one at a time, stopping at the first difference.
func (s snapshot) equal(o snapshot) bool {
	if !slices.Equal(s.Selection, o.Selection) || len(s.Elements) != len(o.Elements) {
		return false
	}
	for id := range s.Elements {
		if _, ok := o.Elements[id]; !ok {
			return false
		}
	}
	for id, e := range s.Elements {
		if !sameElement(e, o.Elements[id]) {
			return false
		}
	}
	return true
}

func sameElement(a, b element.Element) bool {
	if a == b {
		return true
	}
	if a.Type() != b.Type() {
		return false
	}
	x, errA := json.Marshal(a)
	y, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(x, y)
}

// History is a bounded past/future stack of committed snapshots around the
// latest committed one.
type History struct {
	past   []snapshot
	future []snapshot
	latest snapshot
	limit  int
}

func newHistory(limit int, s *State) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{latest: takeSnapshot(s), limit: limit}
}

// record pushes the previous committed snapshot if s differs from it.
// It reports whether a step was recorded.
func (h *History) record(s *State) bool {
	next := takeSnapshot(s)
	if next.equal(h.latest) {
		return false
	}
	h.past = append(h.past, h.latest)
	if len(h.past) > h.limit {
		h.past = h.past[len(h.past)-h.limit:]
	}
	h.latest = next
	h.future = nil
	return true
}

func (h *History) undo() (snapshot, bool) {
	if len(h.past) == 0 {
		return snapshot{}, false
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, h.latest)
	h.latest = prev
	return prev.clone(), true
}

func (h *History) redo() (snapshot, bool) {
	if len(h.future) == 0 {
		return snapshot{}, false
	}
	next := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, h.latest)
	h.latest = next
	return next.clone(), true
}

// amend applies a layout action to every stored snapshot. Snapshots that do
// not contain the element are left as they are.
func (h *History) amend(a Action, base *reducer) {
	apply := func(s *snapshot) {
		st := &State{Elements: s.Elements, Selection: s.Selection, Registry: base.state.Registry.clone()}
		r := &reducer{state: st, newID: base.newID, logger: base.logger}
		_ = a.apply(r)
	}
	for i := range h.past {
		apply(&h.past[i])
	}
	for i := range h.future {
		apply(&h.future[i])
	}
	apply(&h.latest)
}

func (h *History) state() HistoryState {
	return HistoryState{
		CanUndo: len(h.past) > 0,
		CanRedo: len(h.future) > 0,
		Past:    len(h.past),
		Future:  len(h.future),
	}
}
