package parser

import (
	"regexp"
	"strings"

	"github.com/anthropics/cmdschema/internal/normalize"
	"github.com/anthropics/cmdschema/internal/schema"
)

var usageLineRe = regexp.MustCompile(`(?i)^\s*usage:\s*(.*)$`)
var bracketGroupRe = regexp.MustCompile(`\[([^\[\]]+)\]`)
var braceAlternationRe = regexp.MustCompile(`\{([^{}]+)\}`)
var compactClusterRe = regexp.MustCompile(`^-([a-zA-Z]{2,})$`)
var placeholderRe = regexp.MustCompile(`^(<[^>]+>|\[[A-Z_]+\]|[A-Z][A-Z0-9_]*)$`)

const usageCompactConfidence = 0.60
const usagePositionalConfidence = 0.55

var nonPositionalWords = map[string]bool{
	"COMMAND": true, "SUBCOMMAND": true, "OPTIONS": true, "ARGS": true,
}

// collectUsageLikeText gathers the "Usage:" line and any indented
// continuation lines immediately following it.
func collectUsageLikeText(lines []normalize.Line) (string, Span, bool) {
	for i, l := range lines {
		m := usageLineRe.FindStringSubmatch(l.Text)
		if m == nil {
			continue
		}
		text := m[1]
		end := i
		for j := i + 1; j < len(lines); j++ {
			t := lines[j].Text
			if strings.TrimSpace(t) == "" || !strings.HasPrefix(t, " ") {
				break
			}
			text += " " + strings.TrimSpace(t)
			end = j
		}
		return text, Span{Start: i, End: end}, true
	}
	return "", Span{}, false
}

// UsageCompactFlags parses "Usage:" and continuation lines for
// bracketed groups, brace alternation, and compact short clusters; runs
// only when no other flags were found (spec.md §4.4 "Usage compact
// flags").
func UsageCompactFlags(lines []normalize.Line) Candidates {
	var out Candidates
	text, span, ok := collectUsageLikeText(lines)
	if !ok {
		return out
	}

	for _, m := range bracketGroupRe.FindAllStringSubmatch(text, -1) {
		addUsageTokenFlags(&out, m[1], span)
	}
	for _, m := range braceAlternationRe.FindAllStringSubmatch(text, -1) {
		for _, alt := range strings.Split(m[1], "|") {
			addUsageTokenFlags(&out, strings.TrimSpace(alt), span)
		}
	}

	return out
}

func addUsageTokenFlags(out *Candidates, token string, span Span) {
	token = strings.TrimSpace(token)
	if m := compactClusterRe.FindStringSubmatch(token); m != nil {
		for _, r := range m[1] {
			out.Flags = append(out.Flags, FlagCandidate{
				Flag:     schema.FlagSchema{Short: "-" + string(r), Value: schema.Bool()},
				Span:     span,
				Strategy: "usage_compact", Confidence: usageCompactConfidence,
			})
		}
		return
	}
	for _, fl := range ParseFlagLine(token) {
		out.Flags = append(out.Flags, FlagCandidate{
			Flag: candidateFlag(fl), Span: span,
			Strategy: "usage_compact", Confidence: usageCompactConfidence,
		})
	}
}

// UsagePositionals extracts uppercase placeholder tokens from the usage
// line; skips tokens matching known non-positional words when
// subcommands already exist (spec.md §4.4 "Usage positionals").
func UsagePositionals(lines []normalize.Line, haveSubcommands bool) Candidates {
	var out Candidates
	text, span, ok := collectUsageLikeText(lines)
	if !ok {
		return out
	}

	for _, raw := range strings.Fields(text) {
		if !placeholderRe.MatchString(raw) && !isPlaceholderToken(strings.Trim(raw, "[]<>.")) {
			continue
		}
		tok := strings.Trim(raw, "[]<>.")
		if tok == "" {
			continue
		}
		if haveSubcommands && nonPositionalWords[strings.ToUpper(tok)] {
			continue
		}
		out.Args = append(out.Args, ArgCandidate{
			Arg: schema.ArgSchema{Name: strings.ToLower(tok), Value: schema.String()},
			Span: span, Strategy: "usage_positionals", Confidence: usagePositionalConfidence,
		})
	}

	return out
}

func isPlaceholderToken(tok string) bool {
	if strings.ToUpper(tok) == tok && len(tok) > 1 {
		return true
	}
	return false
}
