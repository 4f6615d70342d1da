package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/anthropics/cmdschema/internal/bundle"
	"github.com/anthropics/cmdschema/internal/output"
)

var (
	bundleOutput      string
	bundleName        string
	bundleDescription string
)

var bundleCmd = &cobra.Command{
	Use:   "bundle <input> [input...]",
	Short: "Merge schema JSON files into a single validated bundle",
	Long: `Bundle collects schemas from the given files and/or directories,
validates each one, merges them into a single SchemaPackage, and
writes the result to --output.

Examples:
  cmdschema bundle ./schemas --output bundle.json
  cmdschema bundle ./schemas/git.json ./schemas/docker.json \
    --output bundle.json --name "core-tools" --description "Core dev tools"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBundle,
}

func init() {
	rootCmd.AddCommand(bundleCmd)

	bundleCmd.Flags().StringVar(&bundleOutput, "output", "", "Output path for the bundled schema package")
	bundleCmd.Flags().StringVar(&bundleName, "name", "", "Optional bundle name metadata")
	bundleCmd.Flags().StringVar(&bundleDescription, "description", "", "Optional bundle description metadata")
	bundleCmd.MarkFlagRequired("output")
}

func runBundle(c *cobra.Command, args []string) error {
	paths, err := bundle.CollectSchemaPaths(args)
	if err != nil {
		return err
	}

	generatedAt := time.Now().UTC().Format(time.RFC3339)
	pkg, err := bundle.BundleSchemaFiles(paths, Version, bundleName, bundleDescription, generatedAt)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(bundleOutput); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory %q: %w", dir, err)
		}
	}

	raw, err := output.FormatPackage(pkg, output.FormatJSON)
	if err != nil {
		return fmt.Errorf("serializing schema bundle: %w", err)
	}
	if err := os.WriteFile(bundleOutput, []byte(raw), 0o644); err != nil {
		return fmt.Errorf("writing %q: %w", bundleOutput, err)
	}

	fmt.Printf("Bundled %d schema(s) into %q.\n", len(pkg.Schemas), bundleOutput)
	return nil
}
