// Package cli implements the layoutpdf command-line interface.
//
// # Commands
//
//   - render: render a template JSON file to PDF, one page per record
//   - vars: report a template's variables and sample values
//   - templates: list, show, import, duplicate and delete stored templates
//   - mcp: serve the template tools over MCP on stdio
//
// # Configuration
//
// Settings are read from --config (default ./layoutpdf.toml, optional) and
// may be overridden by flags. See package config for the file format.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lvillar/layoutpdf/config"
)

var (
	version = "dev" // semantic version (e.g., "v1.2.3")
	commit  string  // git commit SHA
	date    string  // build timestamp
)

// defaultConfigFile is read when --config is not given. It may be absent.
const defaultConfigFile = "layoutpdf.toml"

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Version returns the version set by SetVersion.
func Version() string { return version }

// Execute runs the layoutpdf CLI.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "layoutpdf",
		Short:        "layoutpdf renders page layouts with variables to PDF",
		Long:         `layoutpdf renders page-sized layouts (certificates, cards, badges) built from text, images, shapes and QR codes into print-ready PDFs, substituting template variables.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, optional := configPath, false
			if path == "" {
				path, optional = defaultConfigFile, true
			}
			cfg, err := config.Load(path, optional)
			if err != nil {
				return err
			}
			level, err := cfg.Log.ParseLevel()
			if err != nil {
				return err
			}
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = withLogger(ctx, newLogger(os.Stderr, level))
			ctx = withConfig(ctx, cfg)
			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("layoutpdf %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./"+defaultConfigFile+" if present)")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newVarsCmd())
	root.AddCommand(newTemplatesCmd())
	root.AddCommand(newMCPCmd())

	return root
}
