package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowpen/pkg/graph"
	"github.com/matzehuels/flowpen/pkg/persist"
)

type saveOpts struct {
	solution string
}

// saveCommand runs the persistence job for a manifest: the graph JSON, its
// binary snapshot and the solution go to the storage bucket, and the
// revision record is updated.
func (c *CLI) saveCommand() *cobra.Command {
	var opts saveOpts

	cmd := &cobra.Command{
		Use:   "save <manifest>",
		Short: "Save a graph to the configured storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.ErrOrStderr()

			store, err := c.openStore(args[0], false)
			if err != nil {
				return err
			}
			job := persist.Job{Manifest: store.Manifest()}
			if opts.solution != "" {
				data, err := os.ReadFile(opts.solution)
				if err != nil {
					return fmt.Errorf("read solution: %w", err)
				}
				if !json.Valid(data) {
					return fmt.Errorf("solution %s is not valid JSON", opts.solution)
				}
				job.Solution = data
			}

			runner, closeRunner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer closeRunner()

			spin := newSpinnerWithContext(ctx, out, "Saving "+job.Manifest.ID+"...")
			spin.Start()
			res, err := runner.Save(ctx, job)
			if err != nil {
				spin.StopWithError("Save failed")
				return err
			}
			spin.StopWithSuccess(fmt.Sprintf("Saved %s revision %d", job.Manifest.ID, res.Revision.Number))
			for _, key := range []string{graph.FileJSON, graph.FileSnapshot, graph.FileSolution} {
				printDetail(out, "%-8s %s", key, res.Files[key])
			}
			if c.Config.Storage.Revisions != "mongo" {
				printNextStep(out, "Keep revision numbers across runs", "set storage.revisions = \"mongo\"")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.solution, "solution", "", "solution JSON to store with the graph")

	return cmd
}
