package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flowpen/pkg/element"
	"github.com/matzehuels/flowpen/pkg/graph"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the element type, position and output values to node
	// labels, and port names to edges. When false, only the node name is
	// shown.
	Detailed bool
}

// ToDOT converts a manifest to Graphviz DOT format. Every node element
// becomes a box and every data wire an edge; live wires, regions and
// annotations are skipped. The resulting DOT string can be rendered using
// [RenderSVG].
//
// Hidden nodes are drawn with dashed outlines and grey fill.
func ToDOT(m graph.Manifest, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, id := range m.ElementIDs() {
		e := m.Graph.Elements[id]
		n, ok := element.AsNode(e)
		if !ok {
			continue
		}
		label := fmtLabel(e, n, opts.Detailed)
		attrs := fmtAttrs(n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, id := range m.ElementIDs() {
		w, ok := element.AsWire(m.Graph.Elements[id])
		if !ok || w.Template.Mode != element.WireData {
			continue
		}
		from, to := w.Template.From, w.Template.To
		if from == nil || to == nil {
			continue
		}
		src, dst := m.Graph.Elements[from.ElementID], m.Graph.Elements[to.ElementID]
		if src == nil || dst == nil {
			continue
		}
		if opts.Detailed {
			fmt.Fprintf(&buf, "  %q -> %q [taillabel=%q, headlabel=%q];\n",
				from.ElementID, to.ElementID,
				element.PortName(src, from.ParameterID), element.PortName(dst, to.ParameterID))
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", from.ElementID, to.ElementID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(e element.Element, n *element.NodeState, detailed bool) string {
	tmpl, _ := element.TemplateOf(e)
	name := tmpl.Nickname
	if name == "" {
		name = tmpl.Name
	}
	if name == "" {
		name = e.ID()
	}
	if !detailed {
		return name
	}

	parts := []string{string(e.Type()), "at " + n.Position.String()}
	for _, id := range sortedPorts(n.Outputs) {
		tree := n.Values[id]
		if tree == nil || tree.Count() == 0 {
			continue
		}
		var values []string
		for _, v := range tree.Flatten() {
			values = append(values, fmt.Sprint(v.Value))
		}
		parts = append(parts, fmt.Sprintf("%s: %s", element.PortName(e, id), strings.Join(values, ", ")))
	}
	return name + "\n" + strings.Join(parts, "\n")
}

// sortedPorts orders port instance ids by template order.
func sortedPorts(ports map[string]int) []string {
	ids := make([]string, 0, len(ports))
	for id := range ports {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		if d := ports[a] - ports[b]; d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	return ids
}

func fmtAttrs(n *element.NodeState, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Settings.Visibility == element.Hidden {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales from the
// origin regardless of the offsets Graphviz emits.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(root))
}
