package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowpen/internal/server"
	"github.com/matzehuels/flowpen/pkg/cache"
	"github.com/matzehuels/flowpen/pkg/library"
)

type serveOpts struct {
	addr     string
	library  string
	autosave bool
	noCache  bool
}

// serveCommand runs the HTTP session server until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve graphs over a JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if !cmd.Flags().Changed("addr") {
				opts.addr = c.Config.Server.Addr
			}
			if !cmd.Flags().Changed("autosave") {
				opts.autosave = c.Config.Server.Autosave
			}

			lib, err := c.loadLibrary(ctx, opts.library, false, opts.noCache)
			if err != nil {
				logger.Warn("serving an empty library", "error", err)
				lib = library.New(nil)
			}

			ch, err := c.newCache(ctx, opts.noCache)
			if err != nil {
				logger.Warn("autosave disabled", "error", err)
				ch = cache.NewNullCache()
			}
			defer ch.Close()

			runner, closeRunner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer closeRunner()

			srv := server.New(server.Config{
				Library:      lib,
				Runner:       runner,
				Cache:        ch,
				CacheTTL:     c.Config.CacheTTL(),
				Autosave:     opts.autosave,
				HistoryLimit: c.Config.History.Limit,
				Logger:       logger,
			})
			logger.Info("flowpen server", "addr", opts.addr, "templates", lib.Len(), "autosave", opts.autosave)
			return srv.ListenAndServe(ctx, opts.addr)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&opts.library, "library", "", "library file (default from config)")
	cmd.Flags().BoolVar(&opts.autosave, "autosave", false, "autosave committed changes to the cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}
