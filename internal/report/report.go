// Package report assembles the persisted extraction-report.json bundle
// from a discovery run's per-command reports (spec.md §4.10/§6).
package report

import (
	"time"

	"github.com/anthropics/cmdschema/internal/schema"
)

// BuildBundle constructs an ExtractionReportBundle for a discovery run.
func BuildBundle(version string, reports []schema.ExtractionReport, failures []string, generatedAt time.Time) schema.ExtractionReportBundle {
	return schema.ExtractionReportBundle{
		SchemaVersion: schema.SchemaContractVersion,
		GeneratedAt:   generatedAt.UTC().Format(time.RFC3339),
		Version:       version,
		Reports:       reports,
		Failures:      failures,
	}
}
