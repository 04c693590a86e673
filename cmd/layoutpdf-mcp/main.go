// Command layoutpdf-mcp is an MCP (Model Context Protocol) server that
// exposes layout template rendering and the template store to AI assistants.
// It is equivalent to "layoutpdf mcp".
//
// # Installation
//
//	go install github.com/lvillar/layoutpdf/cmd/layoutpdf-mcp@latest
//
// # Configuration
//
// Add to the client's MCP server list:
//
//	{
//	  "mcpServers": {
//	    "layoutpdf": {
//	      "command": "layoutpdf-mcp",
//	      "args": ["--config", "/path/to/layoutpdf.toml"]
//	    }
//	  }
//	}
//
// # Available Tools
//
//   - render_template: Render a template with variables, optionally batched
//   - inspect_template: Report declared, referenced and missing variables
//   - validate_template: Check a template and summarize its elements
//   - list_templates: List stored templates
//   - get_template: Fetch a stored template
//   - save_template: Store or duplicate a template
//
// # Available Resources
//
//   - template://list : Stored template summaries
//   - template://get?id=... : A stored template
//   - template://variables?id=... : Variable report for a stored template
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lvillar/layoutpdf/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.ExecuteMCP(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "layoutpdf-mcp: %v\n", err)
		os.Exit(1)
	}
}
