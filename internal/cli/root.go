package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowpen/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Every command loads the configuration file first and attaches the logger
// to the command context, where loggerFromContext finds it.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Flowpen edits dataflow graphs from the command line",
		Long:         `Flowpen drives the graph state engine of the flowpen dataflow editor: replay action scripts, inspect and export graphs, edit them interactively, and serve them over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/flowpen/config.toml)")

	root.AddCommand(c.replayCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.libraryCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.saveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
