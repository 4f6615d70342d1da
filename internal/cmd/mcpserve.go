package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anthropics/cmdschema/internal/mcpserver"
	"github.com/anthropics/cmdschema/internal/schema"
)

var (
	mcpServeBundle string
	mcpServeTools  []string
)

var mcpServeCmd = &cobra.Command{
	Use:   "mcp-serve",
	Short: "Serve a schema bundle over MCP on stdio",
	Long: `McpServe loads a schema bundle (the output of the bundle command) and
exposes it to MCP clients over stdio via the lookup_command_schema,
search_flags, and list_known_commands tools.

Example:
  cmdschema mcp-serve --bundle bundle.json`,
	RunE: runMcpServe,
}

func init() {
	rootCmd.AddCommand(mcpServeCmd)

	mcpServeCmd.Flags().StringVar(&mcpServeBundle, "bundle", "", "Path to a bundled schema package JSON file")
	mcpServeCmd.Flags().StringSliceVar(&mcpServeTools, "tools", nil, "Tools to expose (default: all)")
	mcpServeCmd.MarkFlagRequired("bundle")
}

func runMcpServe(c *cobra.Command, args []string) error {
	raw, err := os.ReadFile(mcpServeBundle)
	if err != nil {
		return fmt.Errorf("reading bundle %q: %w", mcpServeBundle, err)
	}

	var pkg schema.SchemaPackage
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return fmt.Errorf("parsing bundle %q: %w", mcpServeBundle, err)
	}
	if errs := schema.ValidatePackage(pkg); len(errs) > 0 {
		return fmt.Errorf("bundle %q failed validation: %s", mcpServeBundle, errs[0].Error())
	}

	tools := mcpServeTools
	if len(tools) == 0 {
		tools = mcpserver.DefaultTools
	}

	srv, err := mcpserver.New(pkg, mcpserver.Config{Tools: tools})
	if err != nil {
		return fmt.Errorf("starting MCP server: %w", err)
	}

	return srv.ServeStdio()
}
