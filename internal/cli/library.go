package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowpen/pkg/library"
)

type libraryOpts struct {
	search   string
	category string
	refresh  bool
	noCache  bool
}

// libraryCommand lists node templates from a library file or the
// configured GraphQL endpoint.
func (c *CLI) libraryCommand() *cobra.Command {
	var opts libraryOpts

	cmd := &cobra.Command{
		Use:   "library [file]",
		Short: "List the templates of a component library",
		Long: `List node templates from a JSON or HCL library file. Without a file,
the library is fetched from library.endpoint in the config and cached.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}

			spin := newSpinnerWithContext(cmd.Context(), cmd.ErrOrStderr(), "Loading library...")
			spin.Start()
			lib, err := c.loadLibrary(cmd.Context(), path, opts.refresh, opts.noCache)
			spin.Stop()
			if err != nil {
				return err
			}

			printLibrary(cmd.OutOrStdout(), filterLibrary(lib, opts))
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "filter by name, nickname or category")
	cmd.Flags().StringVarP(&opts.category, "category", "c", "", "filter by category")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cached library")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func filterLibrary(lib *library.Library, opts libraryOpts) []library.Component {
	components := lib.All()
	if opts.search != "" {
		components = lib.Search(opts.search)
	}
	if opts.category == "" {
		return components
	}
	out := components[:0:0]
	for _, c := range components {
		if strings.EqualFold(c.Category, opts.category) {
			out = append(out, c)
		}
	}
	return out
}

func printLibrary(w io.Writer, components []library.Component) {
	if len(components) == 0 {
		printInfo(w, "No templates found")
		return
	}

	rows := make([][]string, 0, len(components))
	for _, c := range components {
		rows = append(rows, []string{
			c.Name,
			c.Nickname,
			strings.Trim(c.Category+"/"+c.Subcategory, "/"),
			fmt.Sprintf("%d", len(c.Inputs)),
			fmt.Sprintf("%d", len(c.Outputs)),
			c.GUID,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("Name", "Nick", "Category", "In", "Out", "GUID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 5:
				return StyleDim
			}
			return lipgloss.NewStyle()
		})
	fmt.Fprintln(w, t.Render())
	printDetail(w, "%d templates", len(components))
}
