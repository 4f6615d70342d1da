package parser

import (
	"regexp"

	"github.com/anthropics/cmdschema/internal/normalize"
)

const namedSettingConfidence = 0.72

// NamedSettingScope restricts this strategy to known tools (e.g. stty)
// whose help output lists named settings rather than flags/commands.
var NamedSettingScope = map[string]bool{
	"stty": true,
}

var namedSettingRowRe = regexp.MustCompile(`^([a-z][a-z0-9_-]*)\s{2,}(same as |print |set |tell )`)

// NamedSettingRows accepts rows whose left is a lowercase single token
// and whose right begins with a known phrase (spec.md §4.4
// "Named-setting rows"). Only invoked for commands in NamedSettingScope.
func NamedSettingRows(command string, lines []normalize.Line) Candidates {
	var out Candidates
	if !NamedSettingScope[command] {
		return out
	}

	for _, l := range lines {
		m := namedSettingRowRe.FindStringSubmatch(l.Text)
		if m == nil {
			continue
		}
		_, desc := splitColumns(l.Text)
		out.Subcommands = append(out.Subcommands, SubcommandCandidate{
			Name: m[1], Description: desc,
			Span: Span{Start: l.Index, End: l.Index},
			Strategy: "named_setting", Confidence: namedSettingConfidence,
		})
	}

	return out
}
