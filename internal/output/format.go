// Package output renders command schemas and extraction reports in the
// CLI's supported output formats.
package output

import (
	"fmt"
	"strings"
)

// Format represents an output rendering format.
type Format string

const (
	// FormatJSON renders pretty-printed JSON.
	FormatJSON Format = "json"

	// FormatYAML renders YAML.
	FormatYAML Format = "yaml"

	// FormatMarkdown renders a human-readable Markdown document.
	FormatMarkdown Format = "markdown"

	// FormatTable renders a compact plain-text table for terminals.
	FormatTable Format = "table"
)

// DefaultFormat is used when no --format flag is given.
const DefaultFormat = FormatJSON

// ParseFormat parses a format string, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "table":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("invalid format: %q (expected json, yaml, markdown, or table)", s)
	}
}

// String returns the format's string representation.
func (f Format) String() string {
	return string(f)
}

// ValidFormat reports whether f is one of the recognized formats.
func ValidFormat(f Format) bool {
	switch f {
	case FormatJSON, FormatYAML, FormatMarkdown, FormatTable:
		return true
	default:
		return false
	}
}
