// Package filter applies the false-positive rejection rules of spec.md
// §4.6 before candidates reach the merge/gate stage: placeholder
// tokens, env-var-looking names, keybinding rows, known non-command
// value tokens, and prose sentence heads.
package filter

import (
	"regexp"
	"strings"

	"github.com/anthropics/cmdschema/internal/parser"
)

var allDigitsRe = regexp.MustCompile(`^[0-9]+$`)
var envVarRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]+$`)
var allUppercaseShortRe = regexp.MustCompile(`^[A-Z]{1,3}$`)
var keybindingRe = regexp.MustCompile(`(?i)ESC-|Ctrl-|\^`)

var nonCommandValueTokens = map[string]bool{
	"none": true, "off": true, "numbered": true, "simple": true,
	"never": true, "auto": true, "always": true, "default": true,
}

var proseSentenceHeadRe = regexp.MustCompile(`^[A-Z][a-z]+\s+[a-z]+\s`)

// Result carries the filtered candidates plus the count of filter hits,
// surfaced in diagnostics per spec.md §4.6.
type Result struct {
	Candidates parser.Candidates
	Hits       int
}

// Apply drops subcommand candidates that fail the false-positive rules.
// Flags and args are unaffected: the filter set in spec.md §4.6 is
// scoped to subcommand/name candidates (placeholder tokens, env-var
// names, keybinding rows, non-command value words, prose heads).
func Apply(cands parser.Candidates) Result {
	var kept []parser.SubcommandCandidate
	hits := 0

	for _, c := range cands.Subcommands {
		if isFalsePositive(c.Name) {
			hits++
			continue
		}
		kept = append(kept, c)
	}

	out := cands
	out.Subcommands = kept
	return Result{Candidates: out, Hits: hits}
}

func isFalsePositive(name string) bool {
	lower := strings.ToLower(name)

	if allDigitsRe.MatchString(name) {
		return true
	}
	if envVarRe.MatchString(name) {
		return true
	}
	if allUppercaseShortRe.MatchString(name) {
		return true
	}
	if keybindingRe.MatchString(name) {
		return true
	}
	if nonCommandValueTokens[lower] {
		return true
	}
	if proseSentenceHeadRe.MatchString(name) {
		return true
	}
	return false
}
