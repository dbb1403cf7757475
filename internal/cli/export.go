package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowpen/pkg/graph"
	"github.com/matzehuels/flowpen/pkg/render/nodelink"
)

// Export formats.
const (
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatBSON = "bson"
	formatJSON = "json"
)

var exportFormats = []string{formatDOT, formatSVG, formatBSON, formatJSON}

type exportOpts struct {
	format   string
	output   string
	detailed bool
}

// exportCommand writes a graph in another format. The manifest is restored
// first, so dangling references never reach the output.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export <manifest>",
		Short: "Export a graph as DOT, SVG, BSON snapshot or repaired JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore(args[0], false)
			if err != nil {
				return err
			}
			data, err := export(cmd, store.Manifest(), opts)
			if err != nil {
				return err
			}
			if err := writeOutput(cmd.OutOrStdout(), opts.output, data); err != nil {
				return err
			}
			if opts.output != "" {
				printFile(cmd.ErrOrStderr(), opts.output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", formatSVG, "output format: "+strings.Join(exportFormats, ", "))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with type, position and values")
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return exportFormats, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func export(cmd *cobra.Command, m graph.Manifest, opts exportOpts) ([]byte, error) {
	switch opts.format {
	case formatDOT:
		return []byte(nodelink.ToDOT(m, nodelink.Options{Detailed: opts.detailed})), nil
	case formatSVG:
		return nodelink.RenderSVG(cmd.Context(), nodelink.ToDOT(m, nodelink.Options{Detailed: opts.detailed}))
	case formatBSON:
		return graph.MarshalSnapshot(m)
	case formatJSON:
		return graph.MarshalManifest(m)
	}
	return nil, fmt.Errorf("unknown format %q (want %s)", opts.format, strings.Join(exportFormats, ", "))
}
