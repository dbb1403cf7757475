package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowpen/pkg/element"
	"github.com/matzehuels/flowpen/pkg/engine"
	"github.com/matzehuels/flowpen/pkg/geom"
)

// inspectCommand prints a summary of a graph.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <manifest>",
		Short: "Summarize the elements and wires of a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore(args[0], false)
			if err != nil {
				return err
			}
			printInspect(cmd.OutOrStdout(), store)
			return nil
		},
	}
}

func printInspect(w io.Writer, store *engine.Store) {
	m := store.Manifest()

	fmt.Fprintln(w, StyleTitle.Render(m.Name))
	printKeyValue(w, "id", m.ID)
	printKeyValue(w, "author", m.Author.Name)
	printKeyValue(w, "elements", fmtCounts(m.Counts()))
	if sel := store.Selection(); len(sel) > 0 {
		printKeyValue(w, "selection", strings.Join(sel, ", "))
	}
	fmt.Fprintln(w)

	if len(m.Graph.Elements) > 0 {
		fmt.Fprintln(w, elementTable(m.Graph.Elements, store.Selection()))
	}
}

// fmtCounts renders per-type counts in a stable order, e.g.
// "2 static-component · 1 wire".
func fmtCounts(counts map[element.Type]int) string {
	if len(counts) == 0 {
		return "none"
	}
	var parts []string
	for _, t := range element.Types {
		if n := counts[t]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, t))
		}
	}
	return strings.Join(parts, " · ")
}

// elementTable renders one row per element. Wires show their endpoints,
// nodes their position and connected inputs.
func elementTable(elements element.Map, selection []string) string {
	selected := make(map[string]bool, len(selection))
	for _, id := range selection {
		selected[id] = true
	}

	ids := make([]string, 0, len(elements))
	for id := range elements {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, elementRow(elements, elements[id]))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("ID", "Type", "Name", "Where", "Links").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if row >= 0 && row < len(ids) && selected[ids[row]] {
				return styleSelected
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

func elementRow(elements element.Map, e element.Element) []string {
	if w, ok := element.AsWire(e); ok {
		return []string{e.ID(), string(e.Type()), string(w.Template.Mode), fmtPoint(w.Current.From) + " " + iconArrow + " " + fmtPoint(w.Current.To), fmtWireEnds(w)}
	}

	name := ""
	if tmpl, ok := element.TemplateOf(e); ok {
		name = tmpl.Nickname
		if name == "" {
			name = tmpl.Name
		}
	}
	where := ""
	if pos, ok := element.Position(e); ok {
		where = fmtPoint(*pos)
	}
	links := ""
	if node, ok := element.AsNode(e); ok {
		links = fmtSources(elements, e, node)
	}
	return []string{e.ID(), string(e.Type()), name, where, links}
}

func fmtPoint(p geom.Point) string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

func fmtWireEnds(w *element.Wire) string {
	end := func(ref *element.PortRef) string {
		if ref == nil {
			return "?"
		}
		return ref.ElementID
	}
	return end(w.Template.From) + " " + iconArrow + " " + end(w.Template.To)
}

// fmtSources lists "input←source" pairs for the node's connected inputs.
func fmtSources(elements element.Map, e element.Element, node *element.NodeState) string {
	ports := make([]string, 0, len(node.Sources))
	for port, sources := range node.Sources {
		if len(sources) > 0 {
			ports = append(ports, port)
		}
	}
	sort.Strings(ports)

	var parts []string
	for _, port := range ports {
		for _, src := range node.Sources[port] {
			from := src.ElementInstanceID
			if srcEl, ok := elements[from]; ok {
				if name := element.PortName(srcEl, src.ParameterInstanceID); name != "" {
					from += "." + name
				}
			}
			parts = append(parts, element.PortName(e, port)+"←"+from)
		}
	}
	return strings.Join(parts, ", ")
}
