// Package nodelink renders flowpen graphs as node-link diagrams.
//
// # Overview
//
// Node elements (components, parameters, sliders, panels) become boxes and
// data wires become arrows, laid out left to right in dataflow order.
// Gesture-only elements are never drawn.
//
// # Usage
//
// Convert a manifest to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(m, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
