package quality

import "testing"

func TestGateHighTier(t *testing.T) {
	d := Gate(DefaultPolicy(), false, 0.9, 0.7)
	if d.Tier != "high" || !d.Accepted {
		t.Fatalf("expected high tier accepted, got %+v", d)
	}
}

func TestGateMediumTier(t *testing.T) {
	d := Gate(DefaultPolicy(), false, 0.6, 0.45)
	if d.Tier != "medium" || !d.Accepted {
		t.Fatalf("expected medium tier accepted, got %+v", d)
	}
}

func TestGateLowRejectedWithoutOverride(t *testing.T) {
	d := Gate(DefaultPolicy(), false, 0.2, 0.1)
	if d.Accepted || d.FailureCode == nil || *d.FailureCode != "quality_rejected" {
		t.Fatalf("expected rejected with quality_rejected code, got %+v", d)
	}
}

func TestGateLowAcceptedWithOverride(t *testing.T) {
	policy := DefaultPolicy()
	policy.AllowLowQuality = true
	d := Gate(policy, false, 0.2, 0.1)
	if !d.Accepted || d.Tier != "low" {
		t.Fatalf("expected low tier accepted via override, got %+v", d)
	}
}

func TestGateFailedWhenExtractionFailed(t *testing.T) {
	d := Gate(DefaultPolicy(), true, 0.9, 0.9)
	if d.Accepted || d.Tier != "failed" {
		t.Fatalf("expected failed tier, got %+v", d)
	}
}

func TestCoverageZeroWhenNoRelevantLines(t *testing.T) {
	if Coverage(5, 0) != 0 {
		t.Fatal("expected 0 coverage with no relevant lines")
	}
}

func TestCoverageInUnitRange(t *testing.T) {
	c := Coverage(3, 10)
	if c < 0 || c > 1 {
		t.Fatalf("coverage out of range: %f", c)
	}
}
