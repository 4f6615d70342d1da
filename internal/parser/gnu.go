package parser

import "github.com/anthropics/cmdschema/internal/normalize"

const gnuSectionlessConfidence = 0.55

// GNUSectionless always runs as a top-up: any line whose first token
// matches the flag-start shape contributes a flag candidate, regardless
// of whether it sits inside a recognized section (spec.md §4.4 "GNU /
// sectionless flags").
func GNUSectionless(lines []normalize.Line) Candidates {
	var out Candidates
	for _, l := range lines {
		for _, fl := range ParseFlagLine(l.Text) {
			out.Flags = append(out.Flags, FlagCandidate{
				Flag: candidateFlag(fl),
				Span: Span{Start: l.Index, End: l.Index},
				Strategy: "gnu_sectionless", Confidence: gnuSectionlessConfidence,
			})
		}
	}
	return out
}
