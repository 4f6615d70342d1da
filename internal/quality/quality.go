// Package quality implements the confidence/coverage threshold gate of
// spec.md §4.9.
package quality

import "github.com/anthropics/cmdschema/internal/schema"

// Policy is the configurable quality policy gating schema acceptance.
type Policy struct {
	MinConfidence   float64
	MinCoverage     float64
	AllowLowQuality bool
}

// DefaultPolicy matches the original's documented defaults.
func DefaultPolicy() Policy {
	return Policy{MinConfidence: 0.5, MinCoverage: 0.4, AllowLowQuality: false}
}

// PermissivePolicy accepts any non-empty schema, used by the offline
// parse-stdin/parse-file commands where there is no installed-command
// population to gate against.
func PermissivePolicy() Policy {
	return Policy{MinConfidence: 0, MinCoverage: 0, AllowLowQuality: true}
}

// Decision is the outcome of applying a Policy to one extraction's
// confidence/coverage.
type Decision struct {
	Tier        schema.QualityTier
	Accepted    bool
	Reasons     []string
	FailureCode *schema.FailureCode
}

// Gate assigns a quality tier and acceptance decision. extractionFailed
// signals that the pipeline itself produced no schema (probe or parse
// failure upstream); in that case the tier is always Failed.
func Gate(policy Policy, extractionFailed bool, confidence, coverage float64) Decision {
	if extractionFailed {
		return Decision{Tier: schema.TierFailed, Accepted: false, Reasons: []string{"extraction failed upstream"}}
	}

	meetsConfidence := confidence >= policy.MinConfidence
	meetsCoverage := coverage >= policy.MinCoverage

	if meetsConfidence && meetsCoverage {
		tier := schema.TierMedium
		if confidence >= 0.85 && coverage >= 0.6 {
			tier = schema.TierHigh
		}
		return Decision{Tier: tier, Accepted: true}
	}

	var reasons []string
	if !meetsConfidence {
		reasons = append(reasons, "confidence below min_confidence threshold")
	}
	if !meetsCoverage {
		reasons = append(reasons, "coverage below min_coverage threshold")
	}

	if policy.AllowLowQuality {
		return Decision{Tier: schema.TierLow, Accepted: true, Reasons: append(reasons, "override: allow_low_quality")}
	}

	code := schema.FailureQualityRejected
	return Decision{Tier: schema.TierLow, Accepted: false, Reasons: reasons, FailureCode: &code}
}

// Coverage computes recognized-relevant-lines / total-relevant-lines,
// returning 0 when relevantLines is 0 (spec invariant #5).
func Coverage(recognizedLines, relevantLines int) float64 {
	if relevantLines <= 0 {
		return 0
	}
	c := float64(recognizedLines) / float64(relevantLines)
	if c > 1 {
		c = 1
	}
	return c
}
