// Package manifest reads and writes the CI manifest JSON used by
// ci-extract for incremental, checksum-gated re-extraction (spec.md §6).
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/anthropics/cmdschema/internal/quality"
)

// QualityPolicy mirrors quality.Policy in the manifest's own JSON shape.
type QualityPolicy struct {
	MinConfidence   float64 `json:"min_confidence"`
	MinCoverage     float64 `json:"min_coverage"`
	AllowLowQuality bool    `json:"allow_low_quality"`
}

// CommandEntry is one command's metadata in a manifest.
type CommandEntry struct {
	Version          string `json:"version,omitempty"`
	ExecutablePath   string `json:"executable_path"`
	MtimeSecs        int64  `json:"mtime_secs"`
	SizeBytes        int64  `json:"size_bytes"`
	ExtractedAt      string `json:"extracted_at"`
	QualityTier      string `json:"quality_tier"`
	Checksum         string `json:"checksum"`
	Implementation   string `json:"implementation,omitempty"`
	SchemaFile       string `json:"schema_file"`
}

// Manifest is the persisted ci-extract manifest.
type Manifest struct {
	SchemaVersion string                  `json:"schema_version"`
	Version       string                  `json:"version"`
	ToolVersion   string                  `json:"tool_version"`
	QualityPolicy QualityPolicy           `json:"quality_policy"`
	UpdatedAt     string                  `json:"updated_at"`
	Commands      map[string]CommandEntry `json:"commands"`
}

// New constructs an empty manifest.
func New(version, toolVersion string, policy quality.Policy) Manifest {
	return Manifest{
		SchemaVersion: "1",
		Version:       version,
		ToolVersion:   toolVersion,
		QualityPolicy: QualityPolicy{
			MinConfidence:   policy.MinConfidence,
			MinCoverage:     policy.MinCoverage,
			AllowLowQuality: policy.AllowLowQuality,
		},
		Commands: map[string]CommandEntry{},
	}
}

// Load reads a manifest from path.
func Load(path string) (Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Commands == nil {
		m.Commands = map[string]CommandEntry{}
	}
	return m, nil
}

// Save writes m to path as indented JSON.
func Save(path string, m Manifest) error {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ChecksumFile returns the lowercase hex SHA-256 checksum of a schema
// file's contents.
func ChecksumFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read schema file for checksum: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// NeedsExtraction reports whether command requires re-extraction: it is
// absent from the manifest, or its recorded checksum no longer matches
// the on-disk schema file (the incremental-extraction gate for
// ci-extract without --force).
func (m Manifest) NeedsExtraction(command, schemaFilePath string) bool {
	entry, ok := m.Commands[command]
	if !ok {
		return true
	}
	sum, err := ChecksumFile(schemaFilePath)
	if err != nil {
		return true
	}
	return sum != entry.Checksum
}
