package parser

import (
	"regexp"
	"strings"

	"github.com/anthropics/cmdschema/internal/normalize"
	"github.com/anthropics/cmdschema/internal/schema"
)

// sectionHeaderRe matches explicit section headers: "commands",
// "subcommands", "available commands", "flags", "options", "arguments",
// "positional arguments", case-insensitive, optionally colon-terminated.
var sectionHeaderRe = regexp.MustCompile(`(?i)^\s*(commands|subcommands|available commands|flags|options|arguments|positional arguments)\s*:?\s*$`)

const sectionConfidenceCommands = 0.88
const sectionConfidenceFlags = 0.90

// Section finds explicit headers and parses the indented block beneath
// each until the next blank line or a new "X:" header (spec.md §4.4
// "Section" strategy, confidence 0.88-0.90).
func Section(lines []normalize.Line) Candidates {
	var out Candidates

	for i := 0; i < len(lines); i++ {
		m := sectionHeaderRe.FindStringSubmatch(lines[i].Text)
		if m == nil {
			continue
		}
		header := strings.ToLower(m[1])
		isCommandSection := strings.Contains(header, "command")

		block := collectBlock(lines, i+1)
		merged := mergeContinuations(block)

		for _, row := range merged {
			if isCommandSection {
				name, desc, ok := splitTwoColumnName(row.text)
				if !ok {
					continue
				}
				out.Subcommands = append(out.Subcommands, SubcommandCandidate{
					Name: name, Description: desc,
					Span: Span{Start: row.start, End: row.end},
					Strategy: "section", Confidence: sectionConfidenceCommands,
				})
				continue
			}

			if header == "arguments" || header == "positional arguments" {
				name, desc, ok := splitTwoColumnName(row.text)
				if !ok {
					continue
				}
				out.Args = append(out.Args, ArgCandidate{
					Arg:      schema.ArgSchema{Name: name, Description: desc, Value: schema.String()},
					Span:     Span{Start: row.start, End: row.end},
					Strategy: "section", Confidence: sectionConfidenceFlags,
				})
				continue
			}

			for _, fl := range ParseFlagLine(row.text) {
				if fl.Description == "" {
					fl.Description = row.extra
				}
				out.Flags = append(out.Flags, FlagCandidate{
					Flag: schema.FlagSchema{
						Short: fl.Short, Long: fl.Long, Value: fl.Value,
						TakesValue: fl.TakesValue, Description: fl.Description, Multiple: fl.Multiple,
					},
					Span: Span{Start: row.start, End: row.end},
					Strategy: "section", Confidence: sectionConfidenceFlags,
				})
			}
		}
	}

	return out
}

// collectBlock returns the indented lines following a header, until a
// blank line or a new "X:" header.
func collectBlock(lines []normalize.Line, start int) []normalize.Line {
	var block []normalize.Line
	for i := start; i < len(lines); i++ {
		text := lines[i].Text
		if strings.TrimSpace(text) == "" {
			break
		}
		if looksLikeNewHeader(text) {
			break
		}
		block = append(block, lines[i])
	}
	return block
}

var newHeaderRe = regexp.MustCompile(`^[A-Za-z][A-Za-z ]*:\s*$`)

func looksLikeNewHeader(text string) bool {
	if strings.HasPrefix(text, " ") || strings.HasPrefix(text, "\t") {
		return false
	}
	return newHeaderRe.MatchString(strings.TrimSpace(text)) || newHeaderRe.MatchString(text)
}

type mergedRow struct {
	text       string
	extra      string
	start, end int
}

// mergeContinuations folds wrapped description continuation lines (that
// do not start with a flag/name token) into the preceding row.
func mergeContinuations(block []normalize.Line) []mergedRow {
	var rows []mergedRow
	for _, l := range block {
		trimmed := strings.TrimLeft(l.Text, " \t")
		isContinuation := len(rows) > 0 && trimmed != "" && !strings.HasPrefix(trimmed, "-") &&
			(strings.HasPrefix(l.Text, "    ") || strings.HasPrefix(l.Text, "\t\t"))
		if isContinuation {
			rows[len(rows)-1].extra += " " + strings.TrimSpace(trimmed)
			rows[len(rows)-1].end = l.Index
			continue
		}
		rows = append(rows, mergedRow{text: l.Text, start: l.Index, end: l.Index})
	}
	return rows
}

// splitTwoColumnName splits a two-column row into a name token and
// description, rejecting rows whose left column is not a plausible
// command/arg name token.
func splitTwoColumnName(line string) (name, desc string, ok bool) {
	left, right := splitColumns(strings.TrimSpace(line))
	left = strings.TrimSpace(left)
	if left == "" || !nameTokenRe.MatchString(left) {
		return "", "", false
	}
	return left, right, true
}

var nameTokenRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
