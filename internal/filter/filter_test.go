package filter

import (
	"testing"

	"github.com/anthropics/cmdschema/internal/parser"
)

func TestApplyRejectsPlaceholdersAndEnvVars(t *testing.T) {
	cands := parser.Candidates{
		Subcommands: []parser.SubcommandCandidate{
			{Name: "commit"},
			{Name: "N"},
			{Name: "FOO_BAR"},
			{Name: "123"},
			{Name: "never"},
		},
	}

	result := Apply(cands)
	if len(result.Candidates.Subcommands) != 1 || result.Candidates.Subcommands[0].Name != "commit" {
		t.Fatalf("expected only commit to survive, got %+v", result.Candidates.Subcommands)
	}
	if result.Hits != 4 {
		t.Fatalf("expected 4 filter hits, got %d", result.Hits)
	}
}

func TestApplyRejectsKeybindingRows(t *testing.T) {
	cands := parser.Candidates{
		Subcommands: []parser.SubcommandCandidate{{Name: "Ctrl-b"}},
	}
	result := Apply(cands)
	if len(result.Candidates.Subcommands) != 0 {
		t.Fatalf("expected keybinding row rejected, got %+v", result.Candidates.Subcommands)
	}
}
