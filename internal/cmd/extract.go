package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/anthropics/cmdschema/internal/bundle"
	"github.com/anthropics/cmdschema/internal/cache"
	"github.com/anthropics/cmdschema/internal/discover"
	"github.com/anthropics/cmdschema/internal/history"
	"github.com/anthropics/cmdschema/internal/output"
	"github.com/anthropics/cmdschema/internal/quality"
	"github.com/anthropics/cmdschema/internal/report"
	"github.com/anthropics/cmdschema/internal/schema"
	"github.com/anthropics/cmdschema/internal/semantic"
)

var (
	extractCommands       string
	extractAllowlist      bool
	extractScanPath       bool
	extractExclude        string
	extractOutput         string
	extractMinConfidence  float64
	extractMinCoverage    float64
	extractAllowLowQual   bool
	extractInstalledOnly  bool
	extractJobs           int
	extractCacheDir       string
	extractNoCache        bool
	extractHistoryDir     string
	extractSemanticHints  bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract command schemas from local tool help output",
	Long: `Extract resolves a command list from --commands, --allowlist, and/or
--scan-path, probes each one for help text, and writes one schema JSON
file per accepted command plus an extraction-report bundle to --output.

Examples:
  cmdschema extract --commands git,docker,cargo --output ./schemas
  cmdschema extract --allowlist --output ./schemas --jobs 4
  cmdschema extract --scan-path --installed-only --output ./schemas`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractCommands, "commands", "", "Comma-separated explicit commands (e.g. git,docker)")
	extractCmd.Flags().BoolVar(&extractAllowlist, "allowlist", false, "Include installed commands from the curated allowlist")
	extractCmd.Flags().BoolVar(&extractScanPath, "scan-path", false, "Include executables discovered on PATH")
	extractCmd.Flags().StringVar(&extractExclude, "exclude", "", "Comma-separated commands to exclude")
	extractCmd.Flags().StringVar(&extractOutput, "output", "", "Output directory for per-command schema files")
	extractCmd.Flags().Float64Var(&extractMinConfidence, "min-confidence", quality.DefaultPolicy().MinConfidence, "Minimum schema confidence required for acceptance")
	extractCmd.Flags().Float64Var(&extractMinCoverage, "min-coverage", quality.DefaultPolicy().MinCoverage, "Minimum parser coverage required for acceptance")
	extractCmd.Flags().BoolVar(&extractAllowLowQual, "allow-low-quality", false, "Keep low-quality schemas instead of rejecting them")
	extractCmd.Flags().BoolVar(&extractInstalledOnly, "installed-only", false, "Only extract schemas for commands installed on the system")
	extractCmd.Flags().IntVar(&extractJobs, "jobs", 0, "Number of parallel extraction jobs (default: adaptive)")
	extractCmd.Flags().StringVar(&extractCacheDir, "cache-dir", "", "Directory for caching extraction results")
	extractCmd.Flags().BoolVar(&extractNoCache, "no-cache", false, "Disable caching entirely")
	extractCmd.Flags().StringVar(&extractHistoryDir, "history-dir", "", "Dolt database directory recording each accepted schema as a commit")
	extractCmd.Flags().BoolVar(&extractSemanticHints, "semantic-hints", false, "Cluster flag/subcommand descriptions for near-duplicate diagnostics (requires a build with the semantic tag and a model configured)")
	extractCmd.MarkFlagRequired("output")
}

func runExtract(c *cobra.Command, args []string) error {
	commands := splitCSV(extractCommands)
	excluded := splitCSV(extractExclude)

	if len(commands) == 0 && !extractAllowlist && !extractScanPath {
		return fmt.Errorf("specify at least one discovery source: --commands, --allowlist, or --scan-path")
	}
	if extractMinConfidence < 0 || extractMinConfidence > 1 {
		return fmt.Errorf("--min-confidence must be between 0.0 and 1.0")
	}
	if extractMinCoverage < 0 || extractMinCoverage > 1 {
		return fmt.Errorf("--min-coverage must be between 0.0 and 1.0")
	}

	if err := os.MkdirAll(extractOutput, 0o755); err != nil {
		return fmt.Errorf("creating output directory %q: %w", extractOutput, err)
	}

	cacheDir := extractCacheDir
	if !extractNoCache && cacheDir == "" {
		cacheDir = cache.Dir()
	}
	if extractNoCache {
		cacheDir = ""
	}

	cfg := discover.Config{
		Commands:         commands,
		UseAllowlist:     extractAllowlist,
		ScanPath:         extractScanPath,
		ExcludedCommands: excluded,
		QualityPolicy: quality.Policy{
			MinConfidence:   extractMinConfidence,
			MinCoverage:     extractMinCoverage,
			AllowLowQuality: extractAllowLowQual,
		},
		InstalledOnly: extractInstalledOnly,
		Jobs:          extractJobs,
		CacheDir:      cacheDir,
	}

	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	now := time.Now()
	outcome := discover.Run(c.Context(), cfg, Version, now.UTC().Format(time.RFC3339))

	implementationByCommand := make(map[string]string, len(outcome.Reports))
	for _, r := range outcome.Reports {
		implementationByCommand[r.Command] = r.ResolvedImplementation
	}

	written := 0
	for _, sch := range outcome.Package.Schemas {
		stem := bundle.SanitizeFilename(sch.Command, implementationByCommand[sch.Command])
		stem = strings.TrimSuffix(stem, ".json")
		path := filepath.Join(extractOutput, stem+"."+formatExtension(format))

		raw, err := output.FormatSchema(sch, format)
		if err != nil {
			return fmt.Errorf("formatting schema for %q: %w", sch.Command, err)
		}
		if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
			return fmt.Errorf("writing %q: %w", path, err)
		}
		written++
	}

	fmt.Printf("Extracted and wrote %d schema file(s).\n", written)

	if extractHistoryDir != "" {
		if err := recordHistory(extractHistoryDir, Version, outcome); err != nil {
			fmt.Fprintf(os.Stderr, "warning: recording extraction history: %v\n", err)
		}
	}

	if extractSemanticHints {
		if !semantic.Enabled() {
			fmt.Fprintln(os.Stderr, "warning: --semantic-hints requested but this build has no working embedder; skipping")
		} else if err := applySemanticHints(c.Context(), outcome.Package, outcome.Reports); err != nil {
			fmt.Fprintf(os.Stderr, "warning: semantic clustering failed: %v\n", err)
		}
	}

	bundleReport := report.BuildBundle(Version, outcome.Reports, outcome.Failures, now)
	reportRaw, err := output.FormatBundle(bundleReport, format)
	if err != nil {
		return fmt.Errorf("formatting report bundle: %w", err)
	}

	reportPath := filepath.Join(extractOutput, "extraction-report."+formatExtension(format))
	if err := os.WriteFile(reportPath, []byte(reportRaw), 0o644); err != nil {
		return fmt.Errorf("writing %q: %w", reportPath, err)
	}

	if len(outcome.Failures) > 0 {
		summary := discover.FailureCodeSummary(bundleReport.Reports)
		if len(summary) == 0 {
			fmt.Fprintf(os.Stderr, "%d extraction failure(s): %s\n", len(outcome.Failures), strings.Join(outcome.Failures, ", "))
		} else {
			parts := make([]string, 0, len(summary))
			for _, fc := range summary {
				parts = append(parts, fmt.Sprintf("%d %s", fc.Count, fc.Code))
			}
			fmt.Fprintf(os.Stderr, "%d extraction failure(s) (%s): %s\n",
				len(outcome.Failures), strings.Join(parts, ", "), strings.Join(outcome.Failures, ", "))
		}
	}

	if len(outcome.Warnings) > 0 {
		fmt.Fprintf(os.Stderr, "%d warning(s) emitted during extraction.\n", len(outcome.Warnings))
	}

	return nil
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// recordHistory commits every accepted schema from outcome into the
// Dolt-backed history database at dir, matching report tier to schema.
func recordHistory(dir, runVersion string, outcome discover.Outcome) error {
	h, err := history.Open(dir)
	if err != nil {
		return fmt.Errorf("opening history database %q: %w", dir, err)
	}
	defer h.Close()

	tiers := make(map[string]schema.QualityTier, len(outcome.Reports))
	for _, r := range outcome.Reports {
		tiers[r.Command] = r.QualityTier
	}

	for _, sch := range outcome.Package.Schemas {
		if err := h.RecordRun(sch.Command, runVersion, sch, tiers[sch.Command]); err != nil {
			return fmt.Errorf("recording %q: %w", sch.Command, err)
		}
	}
	return nil
}

// applySemanticHints clusters descriptions across pkg and appends a
// warning to the owning report for every near-duplicate pair found.
// reports is mutated in place so the caller's later report.BuildBundle
// call picks up the added warnings.
func applySemanticHints(ctx context.Context, pkg schema.SchemaPackage, reports []schema.ExtractionReport) error {
	hints, err := semantic.Cluster(ctx, pkg)
	if err != nil {
		return err
	}
	if len(hints) == 0 {
		return nil
	}

	indexByCommand := make(map[string]int, len(reports))
	for i, r := range reports {
		indexByCommand[r.Command] = i
	}

	for _, hint := range hints {
		if i, ok := indexByCommand[hint.Command]; ok {
			reports[i].Warnings = append(reports[i].Warnings, hint.Warning())
		}
	}
	return nil
}

func formatExtension(format output.Format) string {
	switch format {
	case output.FormatYAML:
		return "yaml"
	case output.FormatMarkdown:
		return "md"
	case output.FormatTable:
		return "txt"
	default:
		return "json"
	}
}
