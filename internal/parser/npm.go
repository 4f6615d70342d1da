package parser

import (
	"regexp"
	"strings"

	"github.com/anthropics/cmdschema/internal/normalize"
)

var allCommandsHeaderRe = regexp.MustCompile(`(?i)^\s*all commands:\s*$`)

const npmConfidence = 0.85

// NPMStyle finds an "All commands:" header followed by comma-separated
// tokens spanning multiple lines, deduplicating tokens into one
// subcommand candidate per name (spec.md §4.4 "NPM-style list").
func NPMStyle(lines []normalize.Line) Candidates {
	var out Candidates
	seen := make(map[string]bool)

	for i := 0; i < len(lines); i++ {
		if !allCommandsHeaderRe.MatchString(lines[i].Text) {
			continue
		}
		start := i
		end := i
		var tokens []string
		for j := i + 1; j < len(lines); j++ {
			text := strings.TrimSpace(lines[j].Text)
			if text == "" {
				break
			}
			end = j
			for _, tok := range strings.Split(text, ",") {
				tok = strings.TrimSpace(tok)
				if tok != "" {
					tokens = append(tokens, tok)
				}
			}
		}
		for _, tok := range tokens {
			if seen[tok] {
				continue
			}
			seen[tok] = true
			out.Subcommands = append(out.Subcommands, SubcommandCandidate{
				Name: tok, Span: Span{Start: start, End: end},
				Strategy: "npm_style", Confidence: npmConfidence,
			})
		}
	}

	return out
}
