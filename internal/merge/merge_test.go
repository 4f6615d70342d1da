package merge

import (
	"testing"

	"github.com/anthropics/cmdschema/internal/parser"
	"github.com/anthropics/cmdschema/internal/schema"
)

func TestMergeFlagsTiersByConfidence(t *testing.T) {
	cands := []parser.FlagCandidate{
		{Flag: schema.Boolean("-v", "--verbose"), Confidence: 0.88},
		{Flag: schema.Boolean("-v", "--verbose"), Confidence: 0.5},
		{Flag: schema.Boolean("", "--maybe"), Confidence: 0.45},
		{Flag: schema.Boolean("", "--nope"), Confidence: 0.1},
	}

	result := MergeFlags(cands)
	if len(result.Accepted) != 1 || result.Accepted[0].Long != "--verbose" {
		t.Fatalf("expected --verbose accepted, got %+v", result.Accepted)
	}
	if len(result.Medium) != 1 || result.Medium[0].Long != "--maybe" {
		t.Fatalf("expected --maybe medium, got %+v", result.Medium)
	}
	if result.Discarded != 1 {
		t.Fatalf("expected 1 discarded, got %d", result.Discarded)
	}
}

func TestMergeFlagsRejectsInvalidNamesRegardlessOfConfidence(t *testing.T) {
	cands := []parser.FlagCandidate{
		{Flag: schema.FlagSchema{Short: "-", Value: schema.Bool()}, Confidence: 0.95},
		{Flag: schema.FlagSchema{Long: "---foo", Value: schema.Bool()}, Confidence: 0.95},
	}
	result := MergeFlags(cands)
	if len(result.Accepted) != 0 || len(result.Medium) != 0 {
		t.Fatalf("expected all invalid flags discarded, got accepted=%+v medium=%+v", result.Accepted, result.Medium)
	}
	if result.Discarded != 2 {
		t.Fatalf("expected 2 discarded, got %d", result.Discarded)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	cands := []parser.FlagCandidate{
		{Flag: schema.Boolean("-v", "--verbose"), Confidence: 0.88},
	}
	doubled := append(append([]parser.FlagCandidate{}, cands...), cands...)

	r1 := MergeFlags(cands)
	r2 := MergeFlags(doubled)
	if len(r1.Accepted) != len(r2.Accepted) || r1.Accepted[0].Long != r2.Accepted[0].Long {
		t.Fatalf("expected idempotent merge, got %+v vs %+v", r1.Accepted, r2.Accepted)
	}
}

func TestFinalizeSchemaIsOrderInvariant(t *testing.T) {
	a := schema.New("git", schema.SourceHelpCommand)
	a.GlobalFlags = []schema.FlagSchema{schema.Boolean("", "--zebra"), schema.Boolean("", "--apple")}
	a.Subcommands = []schema.SubcommandSchema{schema.NewSubcommand("zeta"), schema.NewSubcommand("alpha")}

	b := schema.New("git", schema.SourceHelpCommand)
	b.GlobalFlags = []schema.FlagSchema{schema.Boolean("", "--apple"), schema.Boolean("", "--zebra")}
	b.Subcommands = []schema.SubcommandSchema{schema.NewSubcommand("alpha"), schema.NewSubcommand("zeta")}

	FinalizeSchema(&a)
	FinalizeSchema(&b)

	if a.GlobalFlags[0].Long != b.GlobalFlags[0].Long || a.Subcommands[0].Name != b.Subcommands[0].Name {
		t.Fatalf("expected identical sorted output, got %+v vs %+v", a, b)
	}
}
