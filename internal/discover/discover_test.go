package discover

import (
	"testing"

	"github.com/anthropics/cmdschema/internal/schema"
)

func TestToolsDedupesAndAppliesExclusions(t *testing.T) {
	cfg := Config{
		Commands:         []string{"git", "git", "cargo"},
		ExcludedCommands: []string{"cargo"},
	}
	got := Tools(cfg)
	if len(got) != 1 || got[0] != "git" {
		t.Fatalf("expected [git], got %v", got)
	}
}

func TestIsScanPathCandidateFiltersGUILaunchers(t *testing.T) {
	cases := map[string]bool{
		"xdg-open":         false,
		"xmessage":         false,
		"open":             false,
		"sensible-browser": false,
		"awk":              true,
		"cargo":            true,
	}
	for name, want := range cases {
		if got := isScanPathCandidate(name); got != want {
			t.Errorf("isScanPathCandidate(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestDefaultParallelJobsIsNonZeroAndBoundedByWorkload(t *testing.T) {
	if DefaultParallelJobs(0) != 1 {
		t.Fatal("expected 1 job when workload is 0")
	}
	if j := DefaultParallelJobs(1); j < 1 || j > 1 {
		t.Fatalf("expected exactly 1 job for 1 command, got %d", j)
	}
	if DefaultParallelJobs(2000) > 12 {
		t.Fatal("expected jobs capped at 12")
	}
}

func TestDefaultParallelJobsUsesTighterCapForLargeWorkloads(t *testing.T) {
	if DefaultParallelJobs(500) > 8 {
		t.Fatal("expected cap of 8 at 500 commands")
	}
	if DefaultParallelJobs(2000) > 8 {
		t.Fatal("expected cap of 8 for large workloads")
	}
}

func TestFailureCodeSummaryCountsAndSorts(t *testing.T) {
	notInstalled := schema.FailureNotInstalled
	timeout := schema.FailureTimeout
	reports := []schema.ExtractionReport{
		{FailureCode: &notInstalled},
		{FailureCode: &timeout},
		{FailureCode: &notInstalled},
	}
	summary := FailureCodeSummary(reports)
	if len(summary) != 2 {
		t.Fatalf("expected 2 distinct codes, got %+v", summary)
	}
	if summary[0].Code != schema.FailureNotInstalled || summary[0].Count != 2 {
		t.Fatalf("unexpected first entry: %+v", summary[0])
	}
	if summary[1].Code != schema.FailureTimeout || summary[1].Count != 1 {
		t.Fatalf("unexpected second entry: %+v", summary[1])
	}
}
