package parser

import (
	"regexp"
	"strings"

	"github.com/anthropics/cmdschema/internal/schema"
)

// Package-level precompiled regex table — the Go analog of the Rust
// source's lazily-initialized static pattern table (spec.md §9).
var (
	combinedFlagRe = regexp.MustCompile(`^(-[A-Za-z0-9?@])\s*[,/]?\s*(--[A-Za-z][A-Za-z0-9_.-]{1,})`)
	longOnlyRe     = regexp.MustCompile(`^(--[A-Za-z][A-Za-z0-9_.-]{1,})`)
	shortOnlyRe    = regexp.MustCompile(`^(-[A-Za-z0-9?@])\b`)
	shortClusterRe = regexp.MustCompile(`^-([A-Za-z0-9]{3,})\b`)
	valueSuffixRe  = regexp.MustCompile(`=<?[A-Za-z0-9_]+>?|\s<[A-Za-z0-9_]+>|\s\[[A-Za-z0-9_]+\]|\s[A-Z][A-Z0-9_]+\b`)
	choiceSetRe    = regexp.MustCompile(`\{([^}]+)\}|\(([a-zA-Z0-9_,|\s-]+\|[a-zA-Z0-9_,|\s-]+)\)`)
	trailingDotsRe = regexp.MustCompile(`\.\.\.\s*$`)
	noPrefixRe     = regexp.MustCompile(`^--\[no-\](.+)$`)
)

// FlagLine is one parsed flag-defining line: its names, takes-value
// flag, and raw description text (continuation lines not yet merged).
type FlagLine struct {
	Short       string
	Long        string
	TakesValue  bool
	Multiple    bool
	Value       schema.ValueType
	Description string
}

// ParseFlagLine attempts to parse a single line as a flag definition. It
// implements the "flag parsing rules (shared across strategies)" of
// spec.md §4.4: combined short/long forms, value detection, value-type
// inference, --[no-]flag normalization, trailing "..." multiple
// detection, and short-cluster expansion (returned as multiple
// FlagLines, one per letter).
func ParseFlagLine(line string) []FlagLine {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" || trimmed[0] != '-' {
		return nil
	}

	left, description := splitColumns(trimmed)

	if m := combinedFlagRe.FindStringSubmatch(left); m != nil {
		return []FlagLine{buildFlagLine(m[1], normalizeLong(m[2]), left, description)}
	}

	if m := shortClusterRe.FindStringSubmatch(left); m != nil && !strings.Contains(left, "--") {
		letters := m[1]
		out := make([]FlagLine, 0, len(letters))
		for _, r := range letters {
			out = append(out, FlagLine{Short: "-" + string(r), Value: schema.Bool()})
		}
		return out
	}

	if m := longOnlyRe.FindStringSubmatch(left); m != nil {
		return []FlagLine{buildFlagLine("", normalizeLong(m[1]), left, description)}
	}

	if m := shortOnlyRe.FindStringSubmatch(left); m != nil {
		return []FlagLine{buildFlagLine(m[1], "", left, description)}
	}

	return nil
}

func normalizeLong(long string) string {
	if m := noPrefixRe.FindStringSubmatch(long); m != nil {
		return "--" + m[1]
	}
	return long
}

func buildFlagLine(short, long, left, description string) FlagLine {
	fl := FlagLine{Short: short, Long: long, Description: strings.TrimSpace(description)}

	if valueSuffixRe.MatchString(left) {
		fl.TakesValue = true
		fl.Value = schema.String()
	} else {
		fl.Value = schema.Bool()
	}

	if trailingDotsRe.MatchString(left) || strings.Contains(description, "multiple times") {
		fl.Multiple = true
	}

	fl.Value = inferValueType(fl.Value, fl.TakesValue, description)
	return fl
}

// inferValueType applies the description/definition-based value-type
// inference rules of spec.md §4.4.
func inferValueType(current schema.ValueType, takesValue bool, description string) schema.ValueType {
	if !takesValue {
		return current
	}
	lower := strings.ToLower(description)

	if m := choiceSetRe.FindStringSubmatch(description); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '|' })
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				values = append(values, p)
			}
		}
		if len(values) > 0 {
			return schema.Choice(values)
		}
	}

	switch {
	case strings.Contains(lower, "file") || strings.Contains(lower, "path"):
		return schema.File()
	case strings.Contains(lower, "dir"):
		return schema.Directory()
	case strings.Contains(lower, "url") || strings.Contains(lower, "uri"):
		return schema.URL()
	case strings.Contains(lower, "number") || strings.Contains(lower, "count") || strings.Contains(lower, "num"):
		return schema.Number()
	default:
		return schema.String()
	}
}

// candidateFlag converts a parsed FlagLine into a schema.FlagSchema.
func candidateFlag(fl FlagLine) schema.FlagSchema {
	return schema.FlagSchema{
		Short: fl.Short, Long: fl.Long, Value: fl.Value,
		TakesValue: fl.TakesValue, Description: fl.Description, Multiple: fl.Multiple,
	}
}

// splitColumns splits a two-column row on a tab or on two-or-more
// spaces, per spec.md §4.4's description-extraction rule.
var columnSplitRe = regexp.MustCompile(`\t| {2,}`)

func splitColumns(line string) (left, right string) {
	loc := columnSplitRe.FindStringIndex(line)
	if loc == nil {
		return line, ""
	}
	return strings.TrimRight(line[:loc[0]], " "), strings.TrimSpace(line[loc[1]:])
}
