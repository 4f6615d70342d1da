package semantic

import (
	"context"
	"testing"

	"github.com/anthropics/cmdschema/internal/schema"
)

func TestEnabledWithoutBuildTag(t *testing.T) {
	if Enabled() {
		t.Fatal("Enabled() = true without the semantic build tag")
	}
}

func TestClusterWithoutBuildTagIsNoOp(t *testing.T) {
	pkg := schema.NewPackage("1", "2026-01-01T00:00:00Z")
	pkg.Schemas = append(pkg.Schemas, schema.CommandSchema{
		Command: "git",
		GlobalFlags: []schema.FlagSchema{
			{Long: "verbose", Description: "print extra output"},
		},
	})

	hints, err := Cluster(context.Background(), pkg)
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}
	if hints != nil {
		t.Fatalf("Cluster() = %v, want nil without the semantic build tag", hints)
	}
}

func TestCosineSimilarity(t *testing.T) {
	identical := cosineSimilarity([]float32{1, 0, 0}, []float32{1, 0, 0})
	if identical != 1 {
		t.Errorf("cosineSimilarity(identical vectors) = %v, want 1", identical)
	}

	orthogonal := cosineSimilarity([]float32{1, 0}, []float32{0, 1})
	if orthogonal != 0 {
		t.Errorf("cosineSimilarity(orthogonal vectors) = %v, want 0", orthogonal)
	}

	mismatched := cosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
	if mismatched != 0 {
		t.Errorf("cosineSimilarity(mismatched lengths) = %v, want 0", mismatched)
	}
}

func TestCollectDescriptions(t *testing.T) {
	pkg := schema.NewPackage("1", "2026-01-01T00:00:00Z")
	pkg.Schemas = append(pkg.Schemas, schema.CommandSchema{
		Command: "git",
		GlobalFlags: []schema.FlagSchema{
			{Long: "verbose", Description: "print extra output"},
			{Long: "quiet", Description: ""},
		},
		Subcommands: []schema.SubcommandSchema{
			{
				Name: "commit",
				Flags: []schema.FlagSchema{
					{Long: "message", Description: "commit message"},
				},
			},
		},
	})

	entries := collectDescriptions(pkg)
	if len(entries) != 2 {
		t.Fatalf("collectDescriptions() returned %d entries, want 2: %+v", len(entries), entries)
	}
	if entries[0].command != "git" || entries[1].command != "git" {
		t.Errorf("collectDescriptions() entries have unexpected command: %+v", entries)
	}
}
