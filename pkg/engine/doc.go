// Package engine is the graph state engine: the single mutator of a graph's
// elements, selection and interaction registries.
//
// # Store
//
// A [Store] owns one graph. Callers change it only by dispatching [Action]
// values; everything else is a read-only query that returns deep copies:
//
//	s := engine.New(engine.Options{Logger: logger})
//	s.Restore(manifest)
//	err := s.Dispatch(engine.AddElement{Type: element.TypeSlider, Position: geom.Pt(0, 0)})
//	id := s.Latest()
//
// Mutation is serialized behind a single-writer lock, so no reader ever
// observes a half-applied action. Subscribers are notified after the lock
// is released.
//
// # Action Classes
//
// Every action embeds exactly one class marker:
//
//   - committed: add, delete, move, update, wire end, selection. Recorded as
//     one undo step each, unless the action changed nothing.
//   - live: per-frame gesture state (live wire drag, capture, live motion,
//     region staging). Never recorded.
//   - layout: write-backs of rendered dimensions and port anchors. Never
//     recorded, but folded into every history snapshot so that undo never
//     loses layout data.
//
// Snapshots are taken with every live element stripped, so undoing past a
// gesture cannot resurrect live wires or a stale capture.
//
// # Wire Protocol
//
// A connection is drawn in five steps:
//
//	StartLiveWires   create zero-length live wires at the origin port
//	UpdateLiveWires  the free endpoint follows the pointer (pinned while captured)
//	CaptureLiveWires hover a compatible port
//	ReleaseLiveWires leave it again
//	EndLiveWires     commit (default, add, remove, transpose) or cancel
//
// [Store.WirePhase] reports where the gesture currently is.
//
// # Errors
//
// Referential failures (missing element, wrong variant, unsupported type)
// are returned by [Store.Dispatch] with codes from pkg/errors and logged at
// warn level; the store is left unchanged. Protocol rejections (an illegal
// capture) are logged at debug level and are not errors. Broken invariants
// found along the way are repaired in place and logged at warn level.
package engine
