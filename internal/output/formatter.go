package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/anthropics/cmdschema/internal/schema"
)

// FormatSchema renders a CommandSchema in the requested format.
func FormatSchema(sch schema.CommandSchema, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return marshalJSON(sch)
	case FormatYAML:
		return marshalYAML(sch)
	case FormatMarkdown:
		return schemaToMarkdown(sch), nil
	case FormatTable:
		return schemaToTable(sch), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// FormatReport renders an ExtractionReport in the requested format.
func FormatReport(report schema.ExtractionReport, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return marshalJSON(report)
	case FormatYAML:
		return marshalYAML(report)
	case FormatMarkdown:
		return reportToMarkdown(report), nil
	case FormatTable:
		return reportToTable(report), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// FormatPackage renders a SchemaPackage in the requested format.
// Markdown and table concatenate each schema's own rendering, since a
// package has no single-entity layout of its own.
func FormatPackage(pkg schema.SchemaPackage, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return marshalJSON(pkg)
	case FormatYAML:
		return marshalYAML(pkg)
	case FormatMarkdown, FormatTable:
		var out strings.Builder
		for _, sch := range pkg.Schemas {
			rendered, err := FormatSchema(sch, format)
			if err != nil {
				return "", err
			}
			out.WriteString(rendered)
		}
		return out.String(), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// FormatBundle renders an ExtractionReportBundle in the requested
// format. Markdown and table concatenate each report's own rendering,
// since a bundle has no single-entity layout of its own.
func FormatBundle(b schema.ExtractionReportBundle, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return marshalJSON(b)
	case FormatYAML:
		return marshalYAML(b)
	case FormatMarkdown, FormatTable:
		var out strings.Builder
		for _, r := range b.Reports {
			rendered, err := FormatReport(r, format)
			if err != nil {
				return "", err
			}
			out.WriteString(rendered)
		}
		return out.String(), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func marshalYAML(v any) (string, error) {
	raw, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func flagLabel(f schema.FlagSchema) string {
	switch {
	case f.Short != "" && f.Long != "":
		return f.Short + ", " + f.Long
	case f.Short != "":
		return f.Short
	case f.Long != "":
		return f.Long
	default:
		return "?"
	}
}

func schemaToMarkdown(sch schema.CommandSchema) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", sch.Command)
	if sch.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", sch.Description)
	}
	if sch.Version != "" {
		fmt.Fprintf(&b, "**Version:** %s\n\n", sch.Version)
	}
	fmt.Fprintf(&b, "**Confidence:** %.0f%%\n\n", sch.Confidence*100)

	if len(sch.GlobalFlags) > 0 {
		b.WriteString("## Global Flags\n\n")
		b.WriteString("| Flag | Description |\n")
		b.WriteString("|------|-------------|\n")
		for _, f := range sch.GlobalFlags {
			fmt.Fprintf(&b, "| `%s` | %s |\n", flagLabel(f), f.Description)
		}
		b.WriteString("\n")
	}

	if len(sch.Positional) > 0 {
		b.WriteString("## Arguments\n\n")
		b.WriteString("| Argument | Required | Description |\n")
		b.WriteString("|----------|----------|-------------|\n")
		for _, a := range sch.Positional {
			required := "no"
			if a.Required {
				required = "yes"
			}
			fmt.Fprintf(&b, "| `%s` | %s | %s |\n", a.Name, required, a.Description)
		}
		b.WriteString("\n")
	}

	if len(sch.Subcommands) > 0 {
		b.WriteString("## Subcommands\n\n")
		b.WriteString("| Subcommand | Description |\n")
		b.WriteString("|------------|-------------|\n")
		for _, sub := range sch.Subcommands {
			fmt.Fprintf(&b, "| `%s` | %s |\n", sub.Name, sub.Description)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func schemaToTable(sch schema.CommandSchema) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Command: %s  Confidence: %.0f%%", sch.Command, sch.Confidence*100)
	if sch.Version != "" {
		fmt.Fprintf(&b, "  Version: %s", sch.Version)
	}
	b.WriteString("\n")
	if sch.Description != "" {
		fmt.Fprintf(&b, "  %s\n", sch.Description)
	}

	if len(sch.GlobalFlags) > 0 {
		b.WriteString("\nFlags:\n")
		width := 0
		labels := make([]string, len(sch.GlobalFlags))
		for i, f := range sch.GlobalFlags {
			labels[i] = flagLabel(f)
			if len(labels[i]) > width {
				width = len(labels[i])
			}
		}
		for i, f := range sch.GlobalFlags {
			fmt.Fprintf(&b, "  %-*s  %s\n", width, labels[i], f.Description)
		}
	}

	if len(sch.Subcommands) > 0 {
		b.WriteString("\nSubcommands:\n")
		width := 0
		for _, sub := range sch.Subcommands {
			if len(sub.Name) > width {
				width = len(sub.Name)
			}
		}
		for _, sub := range sch.Subcommands {
			fmt.Fprintf(&b, "  %-*s  %s\n", width, sub.Name, sub.Description)
		}
	}

	return b.String()
}

func reportToMarkdown(report schema.ExtractionReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Extraction Report: %s\n\n", report.Command)
	success := "no"
	if report.Success {
		success = "yes"
	}
	fmt.Fprintf(&b, "- **Success:** %s\n", success)
	fmt.Fprintf(&b, "- **Quality Tier:** %s\n", report.QualityTier)
	fmt.Fprintf(&b, "- **Confidence:** %.2f\n", report.Confidence)
	fmt.Fprintf(&b, "- **Coverage:** %.2f\n", report.Coverage)

	if report.FailureCode != nil {
		fmt.Fprintf(&b, "- **Failure Code:** %s\n", *report.FailureCode)
	}

	if len(report.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return b.String()
}

func reportToTable(report schema.ExtractionReport) string {
	status := "OK"
	if !report.Success {
		status = "FAIL"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %-6s %-10s conf=%.2f cov=%.2f", report.Command, status, report.QualityTier, report.Confidence, report.Coverage)
	if report.FailureCode != nil {
		fmt.Fprintf(&b, "  [%s]", *report.FailureCode)
	}
	b.WriteString("\n")
	return b.String()
}
