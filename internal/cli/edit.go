package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowpen/pkg/graph"
)

// editCommand opens the interactive editor on a manifest.
func (c *CLI) editCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "edit <manifest>",
		Short: "Edit a graph interactively",
		Long: `Open a graph in a terminal editor. Select nodes, move them with the
arrow keys, commit moves with enter, undo and redo with u and r, and
write the graph back with w.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if output == "" {
				output = path
			}

			store, err := c.openStore(path, false)
			if err != nil {
				return err
			}
			// The editor owns the terminal; engine diagnostics would tear the view.
			c.SetLogLevel(LogError)

			model := NewEditorModel(store, func(m graph.Manifest) error {
				return graph.WriteManifestFile(m, output)
			})
			final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
			if err != nil {
				return fmt.Errorf("editor: %w", err)
			}

			if em, ok := final.(EditorModel); ok && em.Dirty() {
				printWarning(cmd.ErrOrStderr(), "Unwritten changes to %s were discarded", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of the input manifest")

	return cmd
}
