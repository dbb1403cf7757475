package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowpen/pkg/engine"
	"github.com/matzehuels/flowpen/pkg/graph"
)

type replayOpts struct {
	actions    string
	output     string
	keepGoing  bool
	sequential bool
}

// replayCommand restores a manifest, dispatches an action script against
// it and writes the committed result.
func (c *CLI) replayCommand() *cobra.Command {
	var opts replayOpts

	cmd := &cobra.Command{
		Use:   "replay <manifest>",
		Short: "Apply a JSON action script to a graph",
		Long: `Restore a graph manifest, dispatch every action of a JSON script
([{"type": "addElement", "payload": {...}}, ...]) in order, and write the
committed manifest to stdout or --output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReplay(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.actions, "actions", "a", "", "action script (JSON array)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output manifest (default stdout)")
	cmd.Flags().BoolVar(&opts.keepGoing, "keep-going", false, "skip rejected actions instead of stopping")
	cmd.Flags().BoolVar(&opts.sequential, "sequential-ids", false, "allocate ids id1, id2, ... so scripts can refer to the elements they create")
	_ = cmd.MarkFlagRequired("actions")

	return cmd
}

func (c *CLI) runReplay(cmd *cobra.Command, path string, opts replayOpts) error {
	logger := loggerFromContext(cmd.Context())
	prog := newProgress(logger)

	store, err := c.openStore(path, opts.sequential)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(opts.actions)
	if err != nil {
		return fmt.Errorf("read actions: %w", err)
	}
	actions, err := engine.DecodeScript(data)
	if err != nil {
		return err
	}

	applied, err := replay(store, actions, opts.keepGoing)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Replayed %d of %d actions", applied, len(actions)))

	if opts.output == "" {
		return graph.WriteManifest(store.Manifest(), cmd.OutOrStdout())
	}
	if err := graph.WriteManifestFile(store.Manifest(), opts.output); err != nil {
		return err
	}
	printFile(cmd.ErrOrStderr(), opts.output)
	return nil
}

// replay dispatches actions in order and returns how many were applied.
// A rejected action stops the replay unless keepGoing is set.
func replay(store *engine.Store, actions []engine.Action, keepGoing bool) (int, error) {
	applied := 0
	for i, a := range actions {
		if err := store.Dispatch(a); err != nil {
			if !keepGoing {
				return applied, fmt.Errorf("action %d (%s): %w", i, a.Kind(), err)
			}
			continue
		}
		applied++
	}
	return applied, nil
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
