package engine

import (
	"slices"

	"github.com/matzehuels/flowpen/pkg/element"
	"github.com/matzehuels/flowpen/pkg/graph"
)

// Queries return copies; callers may keep or mutate the results freely.

// Manifest returns the committed graph: live elements are never included.
func (s *Store) Manifest() graph.Manifest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.manifest.Clone()
	m.Graph.Elements = s.state.committed()
	return m
}

// SetMetadata renames the graph and its author without touching elements.
func (s *Store) SetMetadata(id, name string, author graph.Author) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifest.ID = id
	s.manifest.Name = name
	s.manifest.Author = author
}

// GraphID returns the id of the loaded graph.
func (s *Store) GraphID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manifest.ID
}

// GraphAuthor returns the author of the loaded graph.
func (s *Store) GraphAuthor() graph.Author {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manifest.Author
}

// Elements returns every element, live ones included.
func (s *Store) Elements() element.Map {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Elements.Clone()
}

// Element returns a copy of one element.
func (s *Store) Element(id string) (element.Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.state.Elements[id]
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

// Selection returns the selected ids in selection order.
func (s *Store) Selection() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.Selection)
}

// Mode returns the editor mode.
func (s *Store) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Mode
}

// History reports undo/redo availability.
func (s *Store) History() HistoryState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.state()
}

// WirePhase returns the state of the wire gesture.
func (s *Store) WirePhase() WirePhase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.wirePhase()
}

// PrimaryWire returns the id of the first live wire of the current
// gesture, or "unset".
func (s *Store) PrimaryWire() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Registry.Wire.Primary
}

// LiveWiresOrigin returns the port the current wire gesture started at.
func (s *Store) LiveWiresOrigin() element.PortRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Registry.Wire.Origin
}

// Capture returns the captured port, if any.
func (s *Store) Capture() (element.PortRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c := s.state.Registry.Wire.Capture; c != nil {
		return *c, true
	}
	return element.PortRef{}, false
}

// LiveWires returns the ids of the gesture's live wires in creation order.
func (s *Store) LiveWires() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for _, w := range s.state.liveWires() {
		ids = append(ids, w.ID())
	}
	return ids
}

// VisibilityRegistry returns the ids the last SetVisibility changed.
func (s *Store) VisibilityRegistry() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.Registry.Visibility)
}

// Latest returns the id of the most recently created element, or "unset".
func (s *Store) Latest() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Registry.Latest
}

// Snapshot returns a deep copy of the full state, registries included.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.state.clone()
}
