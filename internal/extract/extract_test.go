package extract

import (
	"strings"
	"testing"

	"github.com/anthropics/cmdschema/internal/quality"
	"github.com/anthropics/cmdschema/internal/schema"
)

func TestIsParentHelpEchoRequiresSharedSiblingsAndSelfListing(t *testing.T) {
	parent := map[string]bool{"add": true, "commit": true, "push": true, "pull": true}
	child := &schema.CommandSchema{Subcommands: []schema.SubcommandSchema{
		schema.NewSubcommand("add"), schema.NewSubcommand("commit"), schema.NewSubcommand("remote"),
	}}
	if isParentHelpEcho(child, parent, "remote") {
		t.Fatal("expected no echo: only 2 shared siblings")
	}

	child.Subcommands = append(child.Subcommands, schema.NewSubcommand("push"))
	if !isParentHelpEcho(child, parent, "remote") {
		t.Fatal("expected echo: 3 shared siblings and self-listed")
	}
}

func TestClearSelfReferencingNestedClearsAndWarns(t *testing.T) {
	child := &schema.CommandSchema{Subcommands: []schema.SubcommandSchema{
		schema.NewSubcommand("remote"),
	}}
	report := &schema.ExtractionReport{}
	clearSelfReferencingNested(child, "remote", report)

	if child.Subcommands != nil {
		t.Fatalf("expected nested subcommands cleared, got %+v", child.Subcommands)
	}
	if len(report.Warnings) != 1 {
		t.Fatalf("expected one warning, got %+v", report.Warnings)
	}
}

func TestNoProbeNamesSkipHelpAndVersion(t *testing.T) {
	for _, n := range []string{"help", "version", "completion", "completions"} {
		if !noProbeNames[n] {
			t.Fatalf("expected %s in no-probe set", n)
		}
	}
}

func TestParseTextBuildsSchemaFromRawHelpOutput(t *testing.T) {
	text := "Available Commands:\n  serve    Start the server\n  version  Print the version\n\nFlags:\n  -v, --verbose   Enable verbose output\n\nUse \"mytool [command] --help\" for more information about a command."

	run := ParseText("mytool", text, quality.PermissivePolicy())
	if run.Schema == nil {
		t.Fatalf("expected schema, report: %+v", run.Report)
	}
	if !run.Report.Success {
		t.Fatalf("expected success, got report: %+v", run.Report)
	}
	if len(run.Schema.GlobalFlags) == 0 {
		t.Fatal("expected at least one global flag")
	}
	if len(run.Schema.Subcommands) == 0 {
		t.Fatal("expected at least one subcommand")
	}
}

func TestParseTextFailsOnEmptyText(t *testing.T) {
	run := ParseText("mytool", "", quality.PermissivePolicy())
	if run.Schema != nil {
		t.Fatal("expected no schema for empty help text")
	}
	if run.Report.Success {
		t.Fatal("expected failure reported for empty help text")
	}
}

func TestAdaptServiceHelpOutputAddsStructuredSections(t *testing.T) {
	cases := []struct {
		name       string
		command    string
		text       string
		wantAdapt  bool
		wantSubstr []string
	}{
		{
			name:      "service synopsis with no Options or Arguments section gets adapted",
			command:   "service",
			text:      "Usage: service < option > | --status-all | [ service_name [ command | --full-restart ] ]\n",
			wantAdapt: true,
			wantSubstr: []string{
				"Options:", "--status-all", "Arguments:",
			},
		},
		{
			name:      "command name with arguments dispatches on the base command",
			command:   "service httpd",
			text:      "Usage: service < option > | --status-all\n",
			wantAdapt: true,
			wantSubstr: []string{
				"Options:", "Arguments:",
			},
		},
		{
			name:      "non-service commands are left untouched",
			command:   "git",
			text:      "usage: git [--version] [--help] <command> [<args>]\n",
			wantAdapt: false,
		},
		{
			name:      "service text lacking the Usage: service marker is left untouched",
			command:   "service",
			text:      "some unrelated output\n",
			wantAdapt: false,
		},
		{
			name:      "service text already carrying an Options section is left untouched",
			command:   "service",
			text:      "Usage: service < option >\n\nOptions:\n  --status-all  list services\n",
			wantAdapt: false,
		},
		{
			name:      "service text already carrying a Flags section is left untouched",
			command:   "service",
			text:      "Usage: service < option >\n\nFlags:\n  --status-all  list services\n",
			wantAdapt: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			adapted, ok := adaptHelpOutputForCommand(tc.command, tc.text)
			if ok != tc.wantAdapt {
				t.Fatalf("adaptHelpOutputForCommand(%q) ok = %v, want %v", tc.command, ok, tc.wantAdapt)
			}
			if !tc.wantAdapt {
				if adapted != tc.text {
					t.Fatalf("expected text unchanged, got %q", adapted)
				}
				return
			}
			for _, substr := range tc.wantSubstr {
				if !strings.Contains(adapted, substr) {
					t.Fatalf("adapted text %q missing %q", adapted, substr)
				}
			}
		})
	}
}

func TestBuildSchemaFromTextWarnsOnServiceAdaptation(t *testing.T) {
	report := &schema.ExtractionReport{}
	_, _ = buildSchemaFromText([]string{"service"}, "Usage: service < option > | --status-all\n", report)

	found := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "heuristic") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a heuristic warning in report.Warnings, got %+v", report.Warnings)
	}
}

func TestIsRelevantLineCategories(t *testing.T) {
	cases := []struct {
		name string
		line string
		want bool
	}{
		{"blank line", "   ", false},
		{"ornamental rule", "--------", false},
		{"usage line", "Usage: mytool [options] <command>", true},
		{"usage synopsis without prefix", "service < option > | --status-all | [ service_name [ command | --full-restart ] ]", true},
		{"section header", "Options:", true},
		{"flags section header variant", "Global Flags", true},
		{"flag row start", "  -v, --verbose    Enable verbose output", true},
		{"structured two column subcommands", "  commit    Record changes to the repository", true},
		{"comma command list", "add, commit, push, pull", true},
		{"keybinding row", "  Ctrl-C      Exit the pager", false},
		{"compact keybinding cluster", "  q  Q  :q   Exit", false},
		{"prose paragraph", "This tool reads configuration from the environment and falls back to sensible defaults when none is present.", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isRelevantLine(tc.line); got != tc.want {
				t.Fatalf("isRelevantLine(%q) = %v, want %v", tc.line, got, tc.want)
			}
		})
	}
}

func TestCoverageCountsExcludesProseFromDenominator(t *testing.T) {
	text := "Usage: mytool [options] <command>\n" +
		"\n" +
		"mytool is a small utility that demonstrates coverage accounting. It reads\n" +
		"its configuration from the environment and documents its behavior here in\n" +
		"a long paragraph of plain prose that no parser strategy should ever claim\n" +
		"to recognize as a flag, subcommand, or positional argument.\n" +
		"\n" +
		"Options:\n" +
		"  -v, --verbose    Enable verbose output\n"

	report := &schema.ExtractionReport{}
	sch, ok := buildSchemaFromText([]string{"mytool"}, text, report)
	if !ok {
		t.Fatalf("expected schema to build, report: %+v", report)
	}
	if len(sch.GlobalFlags) == 0 {
		t.Fatal("expected at least one global flag")
	}

	lines := append([]string{}, splitTestLines(text)...)
	var proseRelevant int
	for _, l := range lines {
		if strings.Contains(l, "demonstrates coverage accounting") || strings.Contains(l, "documents its behavior") || strings.Contains(l, "long paragraph of plain prose") {
			if isRelevantLine(l) {
				proseRelevant++
			}
		}
	}
	if proseRelevant != 0 {
		t.Fatalf("expected prose lines to be irrelevant, got %d counted as relevant", proseRelevant)
	}
	if report.RelevantLines == 0 {
		t.Fatal("expected at least one relevant line")
	}
}

func splitTestLines(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			out = append(out, text[start:i])
			start = i + 1
		}
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}
