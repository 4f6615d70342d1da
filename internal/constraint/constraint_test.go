package constraint

import (
	"testing"

	"github.com/anthropics/cmdschema/internal/schema"
)

func TestApplyHarvestsConflictsAndRequires(t *testing.T) {
	flags := []schema.FlagSchema{
		{Long: "--quiet", Description: "conflicts with --verbose, cannot be used with -v"},
		{Long: "--config", Description: "requires --profile to be set"},
		{Long: "--tag", Description: "can be repeated multiple times"},
	}
	Apply(flags)

	if len(flags[0].ConflictsWith) == 0 {
		t.Fatalf("expected conflicts harvested, got %+v", flags[0])
	}
	for _, c := range flags[0].ConflictsWith {
		if c == "--quiet" {
			t.Fatalf("expected self-reference removed, got %+v", flags[0].ConflictsWith)
		}
	}

	if len(flags[1].Requires) == 0 {
		t.Fatalf("expected requires harvested, got %+v", flags[1])
	}

	if !flags[2].Multiple {
		t.Fatalf("expected multiple=true, got %+v", flags[2])
	}
}
