// Package element defines the graph's only entity type.
//
// An [Element] is a closed sum type over seven variants:
//
//	*Component   static-component   a library component with typed ports
//	*Parameter   static-parameter   a standalone parameter node
//	*Slider      number-slider      a numeric input with one output
//	*Panel       panel              a text/data panel with one input and one output
//	*Region      region             a marquee selection rectangle
//	*Annotation  annotation         a free-text note on the canvas
//	*Wire        wire               a connection between two ports
//
// The interface is sealed: only this package can add variants, so a type
// switch over the seven cases is exhaustive. Code outside the package
// narrows elements with capability helpers instead of probing fields:
// [AsNode] for anything with ports, sources and anchors, [AsWire] for
// connections, and [Position] for anything placed on the canvas.
//
// Every element serializes as
//
//	{"id": "...", "template": {"type": "...", ...}, "current": {...}}
//
// where template is immutable metadata and current is the mutable runtime
// state. [Unmarshal] and [Map] decode the polymorphic form, and [Merge]
// applies a shallow JSON [Patch] to current.
package element
