package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anthropics/cmdschema/internal/bundle"
)

var validateCmd = &cobra.Command{
	Use:   "validate <input> [input...]",
	Short: "Structurally validate one or more schema JSON files",
	Long: `Validate loads each schema file named by <input> (or every .json file
in an <input> directory, excluding extraction-report.json) and checks
it against the command schema's structural invariants: required
fields present, flag/argument shapes well-formed. Each file is
checked on its own; duplicate command names across files are not
checked here (the bundle command rejects them).

Examples:
  cmdschema validate ./schemas
  cmdschema validate ./schemas/git.json ./schemas/docker.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(c *cobra.Command, args []string) error {
	paths, err := bundle.CollectSchemaPaths(args)
	if err != nil {
		return err
	}

	schemas, err := bundle.LoadAndValidateSchemas(paths)
	if err != nil {
		return err
	}

	fmt.Printf("Validated %d schema file(s) for %d command(s).\n", len(paths), len(schemas))
	return nil
}
