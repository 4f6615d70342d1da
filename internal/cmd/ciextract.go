package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/anthropics/cmdschema/internal/bundle"
	"github.com/anthropics/cmdschema/internal/config"
	"github.com/anthropics/cmdschema/internal/discover"
	"github.com/anthropics/cmdschema/internal/manifest"
	"github.com/anthropics/cmdschema/internal/quality"
	"github.com/anthropics/cmdschema/internal/schema"
)

var (
	ciExtractConfig     string
	ciExtractManifest   string
	ciExtractOutput     string
	ciExtractForce      bool
	ciExtractHistoryDir string
)

var ciExtractCmd = &cobra.Command{
	Use:   "ci-extract",
	Short: "Incrementally extract schemas for a CI-tracked command allowlist",
	Long: `CiExtract reads a scan/quality config, compares each of its allowlisted
commands against a manifest of previously extracted checksums, and
re-extracts only the commands that are new, changed, or force-flagged.
The manifest is updated and saved alongside the written schema files.

Examples:
  cmdschema ci-extract --config ci.yaml --manifest manifest.json --output ./schemas
  cmdschema ci-extract --config ci.yaml --manifest manifest.json --output ./schemas --force`,
	RunE: runCiExtract,
}

func init() {
	rootCmd.AddCommand(ciExtractCmd)

	ciExtractCmd.Flags().StringVar(&ciExtractConfig, "config", "", "Path to the scan/quality config YAML")
	ciExtractCmd.Flags().StringVar(&ciExtractManifest, "manifest", "", "Path to the manifest JSON (created if absent)")
	ciExtractCmd.Flags().StringVar(&ciExtractOutput, "output", "", "Output directory for schema files")
	ciExtractCmd.Flags().BoolVar(&ciExtractForce, "force", false, "Re-extract every allowlisted command, ignoring the manifest")
	ciExtractCmd.Flags().StringVar(&ciExtractHistoryDir, "history-dir", "", "Dolt database directory recording each (re-)extracted schema as a commit")
	ciExtractCmd.MarkFlagRequired("config")
	ciExtractCmd.MarkFlagRequired("manifest")
	ciExtractCmd.MarkFlagRequired("output")
}

func runCiExtract(c *cobra.Command, args []string) error {
	cfg, err := config.LoadFromPath(ciExtractConfig)
	if err != nil {
		return fmt.Errorf("loading CI config %q: %w", ciExtractConfig, err)
	}

	policy := quality.Policy{
		MinConfidence:   cfg.Quality.MinConfidence,
		MinCoverage:     cfg.Quality.MinCoverage,
		AllowLowQuality: cfg.Quality.AllowLowQuality,
	}

	m, err := loadOrCreateManifest(ciExtractManifest, Version, policy)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(ciExtractOutput, 0o755); err != nil {
		return fmt.Errorf("creating output directory %q: %w", ciExtractOutput, err)
	}

	excluded := map[string]bool{}
	for _, ex := range cfg.Scan.Exclude {
		excluded[ex] = true
	}

	var toExtract, skipped []string
	for _, command := range cfg.Scan.Commands {
		if excluded[command] {
			continue
		}
		schemaPath := filepath.Join(ciExtractOutput, bundle.SanitizeFilename(command, ""))
		if ciExtractForce || m.NeedsExtraction(command, schemaPath) {
			toExtract = append(toExtract, command)
		} else {
			skipped = append(skipped, command)
		}
	}

	now := time.Now()
	outcome := discover.Run(c.Context(), discover.Config{
		Commands:      toExtract,
		QualityPolicy: policy,
		Jobs:          cfg.Scan.Jobs,
	}, Version, now.UTC().Format(time.RFC3339))

	reportByCommand := make(map[string]schema.ExtractionReport, len(outcome.Reports))
	for _, r := range outcome.Reports {
		reportByCommand[r.Command] = r
	}

	extracted := 0
	for _, sch := range outcome.Package.Schemas {
		schemaFile := bundle.SanitizeFilename(sch.Command, "")
		schemaPath := filepath.Join(ciExtractOutput, schemaFile)

		raw, err := json.MarshalIndent(sch, "", "  ")
		if err != nil {
			return fmt.Errorf("serializing schema for %q: %w", sch.Command, err)
		}
		if err := os.WriteFile(schemaPath, raw, 0o644); err != nil {
			return fmt.Errorf("writing %q: %w", schemaPath, err)
		}

		checksum, err := manifest.ChecksumFile(schemaPath)
		if err != nil {
			return fmt.Errorf("checksumming %q: %w", schemaPath, err)
		}

		report := reportByCommand[sch.Command]
		entry := manifest.CommandEntry{
			Version:        sch.Version,
			ExtractedAt:    now.UTC().Format(time.RFC3339),
			QualityTier:    string(report.QualityTier),
			Checksum:       checksum,
			Implementation: report.ResolvedImplementation,
			SchemaFile:     schemaFile,
		}
		if path, err := exec.LookPath(sch.Command); err == nil {
			entry.ExecutablePath = filepath.Base(path)
			if info, err := os.Stat(path); err == nil {
				entry.MtimeSecs = info.ModTime().Unix()
				entry.SizeBytes = info.Size()
			}
		}

		m.Commands[sch.Command] = entry
		extracted++
	}

	m.QualityPolicy = manifest.QualityPolicy{
		MinConfidence:   policy.MinConfidence,
		MinCoverage:     policy.MinCoverage,
		AllowLowQuality: policy.AllowLowQuality,
	}
	m.ToolVersion = Version
	m.UpdatedAt = now.UTC().Format(time.RFC3339)

	if err := manifest.Save(ciExtractManifest, m); err != nil {
		return fmt.Errorf("saving manifest %q: %w", ciExtractManifest, err)
	}

	if ciExtractHistoryDir != "" && len(outcome.Package.Schemas) > 0 {
		if err := recordHistory(ciExtractHistoryDir, Version, outcome); err != nil {
			fmt.Fprintf(os.Stderr, "warning: recording extraction history: %v\n", err)
		}
	}

	fmt.Println("CI Extract Summary:")
	fmt.Printf("  Total commands: %d\n", len(cfg.Scan.Commands))
	fmt.Printf("  Extracted: %d (new + updated)\n", extracted)
	fmt.Printf("  Skipped: %d (unchanged)\n", len(skipped))
	fmt.Printf("  Failed: %d\n", len(outcome.Failures))

	if extracted > 0 {
		fmt.Println("\nChanged commands:")
		for _, sch := range outcome.Package.Schemas {
			fmt.Printf("  %s\n", sch.Command)
		}
	}

	if len(outcome.Failures) > 0 {
		fmt.Fprintln(os.Stderr, "\nFailures:")
		for _, f := range outcome.Failures {
			fmt.Fprintf(os.Stderr, "  %s\n", f)
		}
	}

	return nil
}

func loadOrCreateManifest(path, toolVersion string, policy quality.Policy) (manifest.Manifest, error) {
	if _, err := os.Stat(path); err == nil {
		return manifest.Load(path)
	}
	return manifest.New("1", toolVersion, policy), nil
}
