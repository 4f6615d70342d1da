package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/anthropics/cmdschema/internal/extract"
	"github.com/anthropics/cmdschema/internal/output"
	"github.com/anthropics/cmdschema/internal/quality"
	"github.com/anthropics/cmdschema/internal/schema"
)

var (
	parseCommand    string
	parseInput      string
	parseWithReport bool
)

var parseStdinCmd = &cobra.Command{
	Use:   "parse-stdin",
	Short: "Parse already-captured help text read from stdin",
	Long: `ParseStdin runs the same classification/parsing pipeline as extract,
but against help text supplied on stdin rather than a spawned process,
using a permissive quality policy (no installed-command population to
gate against).

Example:
  mytool --help | cmdschema parse-stdin --command mytool`,
	RunE: runParseStdin,
}

var parseFileCmd = &cobra.Command{
	Use:   "parse-file",
	Short: "Parse already-captured help text read from a file",
	Long: `ParseFile is parse-stdin's file-backed counterpart: it reads help
text from --input instead of stdin.

Example:
  cmdschema parse-file --command mytool --input help.txt`,
	RunE: runParseFile,
}

func init() {
	rootCmd.AddCommand(parseStdinCmd, parseFileCmd)

	for _, c := range []*cobra.Command{parseStdinCmd, parseFileCmd} {
		c.Flags().StringVar(&parseCommand, "command", "", "Command name the help text belongs to")
		c.Flags().BoolVar(&parseWithReport, "with-report", false, "Output both schema and extraction report")
		c.MarkFlagRequired("command")
	}
	parseFileCmd.Flags().StringVar(&parseInput, "input", "", "Path to file containing help text")
	parseFileCmd.MarkFlagRequired("input")
}

func runParseStdin(c *cobra.Command, args []string) error {
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	return parseHelpText(parseCommand, string(raw))
}

func runParseFile(c *cobra.Command, args []string) error {
	raw, err := os.ReadFile(parseInput)
	if err != nil {
		return fmt.Errorf("reading %q: %w", parseInput, err)
	}
	return parseHelpText(parseCommand, string(raw))
}

// parseOutput is the --with-report payload shape: the schema field is
// omitted when extraction produced none.
type parseOutput struct {
	Schema *schema.CommandSchema   `json:"schema,omitempty"`
	Report schema.ExtractionReport `json:"report"`
}

func parseHelpText(command, helpText string) error {
	run := extract.ParseText(command, helpText, quality.PermissivePolicy())

	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	if parseWithReport {
		payload := parseOutput{Schema: run.Schema, Report: run.Report}
		switch format {
		case output.FormatJSON:
			raw, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return fmt.Errorf("serializing output: %w", err)
			}
			fmt.Println(string(raw))
		case output.FormatYAML:
			raw, err := yaml.Marshal(payload)
			if err != nil {
				return fmt.Errorf("serializing output: %w", err)
			}
			fmt.Print(string(raw))
		default:
			if run.Schema != nil {
				rendered, err := output.FormatSchema(*run.Schema, format)
				if err != nil {
					return err
				}
				fmt.Print(rendered)
			}
			rendered, err := output.FormatReport(run.Report, format)
			if err != nil {
				return err
			}
			fmt.Print(rendered)
		}
		return nil
	}

	if run.Schema == nil {
		return fmt.Errorf("no schema extracted for %q", command)
	}
	rendered, err := output.FormatSchema(*run.Schema, format)
	if err != nil {
		return err
	}
	fmt.Print(rendered)
	return nil
}
