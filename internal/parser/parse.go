package parser

import "github.com/anthropics/cmdschema/internal/normalize"

// Parse runs the strategy set over a normalized line stream and returns
// the union of all candidates. Section, NPM-style, dense-grid,
// GNU/sectionless and usage-positional strategies always run;
// two-column and named-setting rows run only while no subcommand has
// been found, and usage compact flags only when no flag has been found.
func Parse(command string, lines []normalize.Line) Candidates {
	var out Candidates

	out.merge(Section(lines))
	out.merge(NPMStyle(lines))
	out.merge(DenseGrid(lines))

	if len(out.Subcommands) == 0 {
		out.merge(TwoColumnGeneric(lines))
	}
	if len(out.Subcommands) == 0 {
		out.merge(NamedSettingRows(command, lines))
	}

	// GNU/sectionless flags always run as a top-up.
	out.merge(GNUSectionless(lines))

	if len(out.Flags) == 0 {
		out.merge(UsageCompactFlags(lines))
	}

	out.merge(UsagePositionals(lines, len(out.Subcommands) > 0))

	return out
}
