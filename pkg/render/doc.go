// Package render groups the visual exports of a graph.
//
// The engine itself is rendering-agnostic: it only stores positions,
// dimensions and anchors that a front end reports. The exporters here
// produce static pictures of a saved manifest.
//
//	dot := nodelink.ToDOT(m, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/flowpen/pkg/render/nodelink
package render
