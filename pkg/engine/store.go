package engine

import (
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/flowpen/pkg/element"
	"github.com/matzehuels/flowpen/pkg/errors"
	"github.com/matzehuels/flowpen/pkg/graph"
	"github.com/matzehuels/flowpen/pkg/observability"
)

// Options configures a Store. The zero value is usable.
type Options struct {
	// Logger receives diagnostics. Defaults to log.Default().
	Logger *log.Logger
	// HistoryLimit bounds the undo stack. Defaults to DefaultHistoryLimit.
	HistoryLimit int
	// NewID allocates element and port instance ids. Defaults to random UUIDs.
	NewID func() string
}

// Event describes a state change delivered to subscribers.
type Event struct {
	Kind  string // action kind, or "undo", "redo", "restore", "reset"
	Class Class  // empty for non-action events
	Err   error
}

// Store owns the state of one graph.
type Store struct {
	mu       sync.RWMutex
	state    *State
	history  *History
	manifest graph.Manifest
	opts     Options
	logger   *log.Logger

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// New creates an empty store.
func New(opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	state := newState()
	return &Store{
		state:    state,
		history:  newHistory(opts.HistoryLimit, state),
		manifest: graph.New(graph.Unset),
		opts:     opts,
		logger:   opts.Logger,
		subs:     make(map[int]func(Event)),
	}
}

// =============================================================================
// Commands
// =============================================================================

// Dispatch applies an action. Referential failures are returned and leave
// the store unchanged; protocol rejections are not errors.
func (s *Store) Dispatch(a Action) error {
	if a == nil {
		return errors.New(errors.ErrCodeInvalidAction, "nil action")
	}
	start := time.Now()

	s.mu.Lock()
	err := s.dispatchLocked(a)
	hist := s.history.state()
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("action rejected", "action", a.Kind(), "error", err)
	} else {
		s.logger.Debug("action applied", "action", a.Kind(), "class", a.Class())
	}
	observability.Engine().OnAction(a.Kind(), string(a.Class()), time.Since(start), err)
	if err == nil && a.Class() == ClassCommitted {
		observability.Engine().OnHistory("record", hist.Past, hist.Future)
	}
	s.notify(Event{Kind: a.Kind(), Class: a.Class(), Err: err})
	return err
}

func (s *Store) dispatchLocked(a Action) error {
	// Committed actions run against a scratch copy so that a failure part
	// way through leaves nothing behind.
	target := s.state
	if a.Class() == ClassCommitted {
		target = s.state.clone()
	}
	r := s.reducer(target)
	if err := a.apply(r); err != nil {
		return err
	}
	s.state = target

	switch a.Class() {
	case ClassCommitted:
		s.history.record(s.state)
	case ClassLayout:
		s.history.amend(a, r)
	}
	return nil
}

func (s *Store) reducer(st *State) *reducer {
	return &reducer{state: st, newID: s.opts.NewID, logger: s.logger}
}

// Undo rewinds to the previous committed snapshot. Any gesture in progress
// is dropped. It reports whether there was anything to undo.
func (s *Store) Undo() bool {
	return s.travel("undo", (*History).undo)
}

// Redo re-applies the next committed snapshot.
func (s *Store) Redo() bool {
	return s.travel("redo", (*History).redo)
}

func (s *Store) travel(op string, step func(*History) (snapshot, bool)) bool {
	s.mu.Lock()
	snap, ok := step(s.history)
	if ok {
		s.state.Elements = snap.Elements
		s.state.Selection = snap.Selection
		reg := &s.state.Registry
		reg.Wire = newRegistry().Wire
		reg.Live = []string{}
		s.reducer(s.state).prepareMotion(s.state.Selection)
	}
	hist := s.history.state()
	s.mu.Unlock()

	if !ok {
		return false
	}
	s.logger.Debug("history", "op", op, "past", hist.Past, "future", hist.Future)
	observability.Engine().OnHistory(op, hist.Past, hist.Future)
	s.notify(Event{Kind: op})
	return true
}

// Restore replaces the store's contents with the manifest. Restored ids are
// exempt from first-placement correction, history starts empty, and
// dangling references are repaired.
func (s *Store) Restore(m graph.Manifest) {
	s.mu.Lock()
	state := newState()
	state.Elements = m.Graph.Elements.Clone()
	if state.Elements == nil {
		state.Elements = element.Map{}
	}
	s.repair(state)
	state.Registry.Restored = sortedIDs(state.Elements)

	s.manifest = m.Clone()
	s.manifest.Graph.Elements = element.Map{}
	s.state = state
	s.history = newHistory(s.opts.HistoryLimit, state)
	s.mu.Unlock()

	s.logger.Info("graph restored", "id", m.ID, "elements", len(m.Graph.Elements))
	s.notify(Event{Kind: "restore"})
}

// repair drops live leftovers and wires whose ends no longer exist, and
// source entries pointing at missing elements.
func (s *Store) repair(st *State) {
	r := s.reducer(st)
	for _, w := range st.wires() {
		if element.IsLive(w) {
			r.logger.Warn("dropping live wire from restored graph", "id", w.ID())
			r.forget(w.ID())
			continue
		}
		t := w.Template
		if t.From == nil || t.To == nil || st.Elements[t.From.ElementID] == nil || st.Elements[t.To.ElementID] == nil {
			r.logger.Warn("dropping dangling wire", "id", w.ID())
			r.deleteWire(w)
		}
	}
	for _, id := range sortedIDs(st.Elements) {
		e := st.Elements[id]
		if _, ok := e.(*element.Region); ok {
			r.forget(id)
			continue
		}
		node, ok := element.AsNode(e)
		if !ok {
			continue
		}
		for port, sources := range node.Sources {
			kept := slices.DeleteFunc(sources, func(src element.Source) bool {
				return st.Elements[src.ElementInstanceID] == nil
			})
			if len(kept) != len(sources) {
				r.logger.Warn("dropping dangling sources", "element", id, "port", port)
			}
			node.Sources[port] = kept
		}
	}
}

// Reset clears elements, selection and history.
func (s *Store) Reset() {
	s.mu.Lock()
	s.state = newState()
	s.history = newHistory(s.opts.HistoryLimit, s.state)
	s.mu.Unlock()
	s.notify(Event{Kind: "reset"})
}

// =============================================================================
// Subscriptions
// =============================================================================

// Subscribe registers fn to be called after every state change. Calls
// happen outside the store lock, so fn may query the store. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(ev Event) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
