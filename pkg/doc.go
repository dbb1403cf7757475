// Package pkg provides the core libraries of flowpen, the graph state
// engine of a visual dataflow editor.
//
// # Overview
//
// A flowpen graph is a set of typed elements (components, parameters,
// sliders, panels, regions, annotations and wires) on an infinite canvas.
// The engine owns their in-memory state and implements the editing
// protocols around it: connecting ports with wires, resolving selection
// rectangles, and moving a selection together with its attached wire ends
// without flooding the undo history. The libraries are organized in three
// layers:
//
//  1. Model - [geom], [datatree], [library], [element]
//  2. Engine - [engine]
//  3. Collaborators - [graph], [cache], [storage], [persist], [render]
//
// # Architecture
//
// The engine never performs I/O. Collaborators move manifests in and out:
//
//	JSON/HCL template library ──→ [library]
//	                                  ↓
//	manifest ─→ [graph] ─→ engine.Store.Restore
//	                          ↓  Dispatch(action) / Undo / Redo
//	                    engine.Store.Manifest
//	                          ↓
//	        [persist] (JSON + BSON snapshot + solution → [storage])
//	        [render/nodelink] (DOT, SVG)
//
// # Quick Start
//
// Restore a manifest, connect two nodes, and write the result:
//
//	m, _ := graph.ReadManifestFile("adder.json")
//	store := engine.New(engine.Options{Logger: logger})
//	store.Restore(m)
//
//	_ = store.Dispatch(engine.StartLiveWires{...})
//	_ = store.Dispatch(engine.CaptureLiveWires{...})
//	_ = store.Dispatch(engine.EndLiveWires{Mode: engine.EndDefault})
//
//	_ = graph.WriteManifestFile(store.Manifest(), "adder.json")
//
// # Main Packages
//
// [engine] - The store: element registry, wire connection protocol,
// selection, live motion and history. Actions are a closed set of types
// dispatched one at a time; each carries a history class (committed, live
// or layout) that decides whether it becomes an undo step.
//
// [element] - The closed sum type of element variants, their JSON codec,
// capability helpers (AsNode, Position, Extents) and shallow patch merge.
//
// [library] - Node templates and loaders for JSON (GraphQL response or plain
// array) and HCL library files, plus a caching GraphQL client.
//
// [graph] - The manifest: canonical JSON and the derived BSON snapshot.
//
// [persist] - The save job: uploads a manifest, its snapshot and its
// solution in parallel and commits the revision record.
//
// [storage] - Blob buckets and revision repositories (memory, MongoDB).
//
// [cache] - Byte cache with file, Redis and null backends, used for the
// library client and server autosave.
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Hooks for metrics and tracing with no-op defaults.
//
// # Testing
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/engine/...     # Engine only
//	go test -run Example ./...   # Examples only
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/flowpen/pkg/geom
// [datatree]: https://pkg.go.dev/github.com/matzehuels/flowpen/pkg/datatree
// [library]: https://pkg.go.dev/github.com/matzehuels/flowpen/pkg/library
// [element]: https://pkg.go.dev/github.com/matzehuels/flowpen/pkg/element
// [engine]: https://pkg.go.dev/github.com/matzehuels/flowpen/pkg/engine
// [graph]: https://pkg.go.dev/github.com/matzehuels/flowpen/pkg/graph
// [cache]: https://pkg.go.dev/github.com/matzehuels/flowpen/pkg/cache
// [storage]: https://pkg.go.dev/github.com/matzehuels/flowpen/pkg/storage
// [persist]: https://pkg.go.dev/github.com/matzehuels/flowpen/pkg/persist
// [render]: https://pkg.go.dev/github.com/matzehuels/flowpen/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/flowpen/pkg/render/nodelink
// [errors]: https://pkg.go.dev/github.com/matzehuels/flowpen/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/flowpen/pkg/observability
package pkg
