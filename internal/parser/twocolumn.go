package parser

import (
	"regexp"
	"strings"

	"github.com/anthropics/cmdschema/internal/normalize"
)

const twoColumnConfidence = 0.80

// nonCommandBlockWords reject runs whose block header names non-command
// content.
var nonCommandBlockWords = []string{"variables", "formats", "columns"}

var keybindingTokenRe = regexp.MustCompile(`(?i)ESC-|Ctrl-|\^`)

// TwoColumnGeneric collects contiguous runs of rows outside explicit
// sections whose left column is a command-name token; rejects runs
// whose block header names non-command content and rejects keybinding
// tables (spec.md §4.4 "Two-column generic").
func TwoColumnGeneric(lines []normalize.Line) Candidates {
	var out Candidates

	i := 0
	for i < len(lines) {
		text := lines[i].Text
		trimmed := strings.TrimSpace(text)

		if trimmed == "" || sectionHeaderRe.MatchString(text) || looksLikeNewHeader(text) {
			i++
			continue
		}

		lower := strings.ToLower(trimmed)
		isBlockedHeader := false
		for _, w := range nonCommandBlockWords {
			if strings.Contains(lower, w) {
				isBlockedHeader = true
				break
			}
		}
		if isBlockedHeader {
			i++
			continue
		}

		if _, _, ok := splitTwoColumnName(text); !ok {
			i++
			continue
		}

		// Reject keybinding tables: scan the run for markers.
		runEnd := i
		keybindingHits := 0
		rowCount := 0
		var runRows []struct {
			name, desc string
			idx        int
		}
		for j := i; j < len(lines); j++ {
			t := strings.TrimSpace(lines[j].Text)
			if t == "" {
				break
			}
			n, d, ok := splitTwoColumnName(lines[j].Text)
			if !ok {
				break
			}
			if keybindingTokenRe.MatchString(t) || (len(n) <= 3 && strings.ToUpper(n) == n) {
				keybindingHits++
			}
			runRows = append(runRows, struct {
				name, desc string
				idx        int
			}{n, d, j})
			rowCount++
			runEnd = j
		}

		if rowCount >= 1 && keybindingHits*2 >= rowCount {
			i = runEnd + 1
			continue
		}

		for _, r := range runRows {
			out.Subcommands = append(out.Subcommands, SubcommandCandidate{
				Name: r.name, Description: r.desc,
				Span: Span{Start: r.idx, End: r.idx},
				Strategy: "two_column_generic", Confidence: twoColumnConfidence,
			})
		}
		i = runEnd + 1
	}

	return out
}
