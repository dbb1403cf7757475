// Package geom provides the small amount of planar geometry the graph engine
// needs: canvas points, axis-aligned regions, containment and intersection
// tests, and anchor coordinate resolution.
//
// Points serialize as two-element JSON arrays ([x, y]) so that manifests stay
// compatible with the editor's wire format:
//
//	p := geom.Pt(10, 20)
//	data, _ := json.Marshal(p) // [10,20]
//
// Regions are defined by two arbitrary corners. All predicates normalize the
// corners first, so a region dragged from bottom-right to top-left behaves
// exactly like one dragged the other way.
package geom
