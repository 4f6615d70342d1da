package parser

import (
	"regexp"
	"strings"

	"github.com/anthropics/cmdschema/internal/normalize"
)

var gridHeaderRe = regexp.MustCompile(`(?i)^\s*(\S[\w -]*\bcommands?\S*)\s*:?\s*$`)
var summaryOfRe = regexp.MustCompile(`(?i)^summary of`)

// secondarySectionWords is an empirically derived list of header words
// that mark a section as secondary (skipped when a primary command
// section already exists). May need to evolve — see DESIGN.md Open
// Questions.
var secondarySectionWords = []string{"digest", "cipher", "legacy", "debug", "completion"}

const gridMinConfidence = 0.82
const gridMaxConfidence = 0.90

// DenseGrid reads multi-token rows from sections whose header matches
// "*command(s)*" but not "summary of*"; every token must be a valid
// command name. Secondary sections are skipped once a primary section
// has already produced subcommands (spec.md §4.4 "Dense command grid").
func DenseGrid(lines []normalize.Line) Candidates {
	var out Candidates
	sawPrimary := false

	for i := 0; i < len(lines); i++ {
		m := gridHeaderRe.FindStringSubmatch(lines[i].Text)
		if m == nil || summaryOfRe.MatchString(strings.TrimSpace(lines[i].Text)) {
			continue
		}

		headerLower := strings.ToLower(m[1])
		isSecondary := false
		for _, w := range secondarySectionWords {
			if strings.Contains(headerLower, w) {
				isSecondary = true
				break
			}
		}
		if isSecondary && sawPrimary {
			continue
		}

		produced := 0
		for j := i + 1; j < len(lines); j++ {
			text := strings.TrimSpace(lines[j].Text)
			if text == "" {
				break
			}
			tokens := strings.Fields(text)
			if len(tokens) == 0 {
				continue
			}
			allValid := true
			for _, t := range tokens {
				if !nameTokenRe.MatchString(t) {
					allValid = false
					break
				}
			}
			if !allValid {
				break
			}
			for _, t := range tokens {
				out.Subcommands = append(out.Subcommands, SubcommandCandidate{
					Name: t, Span: Span{Start: j, End: j},
					Strategy: "dense_grid", Confidence: gridConfidenceFor(len(tokens)),
				})
				produced++
			}
		}
		if produced > 0 && !isSecondary {
			sawPrimary = true
		}
	}

	return out
}

func gridConfidenceFor(rowWidth int) float64 {
	if rowWidth >= 4 {
		return gridMaxConfidence
	}
	return gridMinConfidence
}
