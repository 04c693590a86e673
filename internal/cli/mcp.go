package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/lvillar/layoutpdf/mcp"
	"github.com/lvillar/layoutpdf/store"
)

func newMCPCmd() *cobra.Command {
	var noStore bool
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the template tools over MCP on stdio",
		Long:  `Run a Model Context Protocol server on stdin/stdout exposing render_template, inspect_template, validate_template and, unless --no-store is given, the template repository tools.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if noStore {
				return serveMCP(cmd, nil)
			}
			return withRepository(cmd, func(repo store.Repository) error {
				return serveMCP(cmd, repo)
			})
		},
	}
	cmd.Flags().BoolVar(&noStore, "no-store", false, "serve without the template repository")
	return cmd
}

// serveMCP runs the MCP server with the command's configuration until stdin
// closes or the context is canceled.
func serveMCP(cmd *cobra.Command, repo store.Repository) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	r, err := newRenderer(cfg, logger)
	if err != nil {
		return err
	}
	tk := &mcp.Toolkit{Repo: repo, Renderer: r, DPI: cfg.Render.DPI}
	s := mcp.NewServer(
		mcp.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()),
		mcp.WithLogger(logger),
		mcp.WithVersion(version),
	)
	mcp.RegisterDefaultTools(s, tk)
	mcp.RegisterDefaultResources(s, tk)
	logger.Debug("mcp server ready", "store", repo != nil)
	return s.Run(ctx)
}

// ExecuteMCP runs the mcp command directly, for the standalone
// layoutpdf-mcp binary. Global flags such as --config still apply.
func ExecuteMCP(ctx context.Context) error {
	root := newRootCmd()
	root.SetArgs(append([]string{"mcp"}, os.Args[1:]...))
	return root.ExecuteContext(ctx)
}
