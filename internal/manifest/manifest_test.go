package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/anthropics/cmdschema/internal/quality"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")

	m := New("1.0.0", "cmdschema-0.1.0", quality.DefaultPolicy())
	m.Commands["git"] = CommandEntry{
		ExecutablePath: "git",
		QualityTier:    "high",
		Checksum:       "deadbeef",
		SchemaFile:     "git.json",
	}

	if err := Save(path, m); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Version != "1.0.0" || loaded.Commands["git"].Checksum != "deadbeef" {
		t.Fatalf("unexpected round-trip: %+v", loaded)
	}
}

func TestNeedsExtractionDetectsChecksumMismatch(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "git.json")
	if err := os.WriteFile(schemaPath, []byte(`{"command":"git"}`), 0o644); err != nil {
		t.Fatalf("write schema file: %v", err)
	}

	sum, err := ChecksumFile(schemaPath)
	if err != nil {
		t.Fatalf("ChecksumFile: %v", err)
	}

	m := New("1.0.0", "cmdschema-0.1.0", quality.DefaultPolicy())
	m.Commands["git"] = CommandEntry{Checksum: sum}

	if m.NeedsExtraction("git", schemaPath) {
		t.Fatal("expected no extraction needed when checksum matches")
	}

	if err := os.WriteFile(schemaPath, []byte(`{"command":"git","changed":true}`), 0o644); err != nil {
		t.Fatalf("rewrite schema file: %v", err)
	}
	if !m.NeedsExtraction("git", schemaPath) {
		t.Fatal("expected extraction needed after schema file changed")
	}

	if !m.NeedsExtraction("new-command", schemaPath) {
		t.Fatal("expected extraction needed for command absent from manifest")
	}
}
