// Package cmd contains the cmdschema CLI's cobra commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is the current version of cmdschema, set by the linker at
// release build time.
var Version = "0.1.0"

var (
	outputFormat string
	verbose      bool
)

// rootCmd is the base command invoked when cmdschema runs with no
// subcommand.
var rootCmd = &cobra.Command{
	Use:   "cmdschema",
	Short: "Offline command schema discovery and bundling",
	Long: `cmdschema extracts structured schemas for CLI tools by parsing their
own --help/-h output and man pages, without depending on any upstream
man-page or completion-script repository.

It discovers an explicit command list, a curated allowlist, and/or a
PATH scan, probes each command for help text, classifies and parses
that text into flags/subcommands/positional arguments, and gates the
result on a confidence/coverage quality policy before accepting it.

Output Format:
  Most commands default to JSON. Use --format to switch to yaml,
  markdown, or table.

Examples:
  cmdschema extract --commands git,docker --output ./schemas
  cmdschema validate ./schemas
  cmdschema bundle ./schemas --output bundle.json
  cmdschema parse-file --command mytool --input help.txt
  cmdschema ci-extract --config ci.yaml --manifest manifest.json --output ./schemas
  cmdschema migrate up --db schemas.db --prefix cmdschema

See 'cmdschema <command> --help' for command-specific options.`,
	Version: Version,
}

// Execute runs the root command, printing any error to stderr and
// exiting with status 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "json", "Output format (json|yaml|markdown|table)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose diagnostic output")
}
