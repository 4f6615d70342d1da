package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Quality.MinConfidence != 0.5 {
		t.Errorf("expected min_confidence 0.5, got %f", cfg.Quality.MinConfidence)
	}
	if cfg.Quality.MinCoverage != 0.4 {
		t.Errorf("expected min_coverage 0.4, got %f", cfg.Quality.MinCoverage)
	}
	if cfg.Output.DefaultFormat != "json" {
		t.Errorf("expected default_format json, got %s", cfg.Output.DefaultFormat)
	}
}

func TestIsValidFormat(t *testing.T) {
	tests := []struct {
		format string
		valid  bool
	}{
		{"json", true},
		{"yaml", true},
		{"table", true},
		{"markdown", true},
		{"invalid", false},
		{"", false},
		{"JSON", false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := isValidFormat(tt.format); got != tt.valid {
				t.Errorf("isValidFormat(%q) = %v, want %v", tt.format, got, tt.valid)
			}
		})
	}
}

func TestValidateRejectsOutOfRangeConfidence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Quality.MinConfidence = 1.5
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for out-of-range min_confidence")
	}
}

func TestValidateRejectsUnknownFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.DefaultFormat = "xml"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for unknown default_format")
	}
}

func TestLoadFromPathMergesWithDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	raw := "quality:\n  min_confidence: 0.8\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Quality.MinConfidence != 0.8 {
		t.Errorf("expected overridden min_confidence 0.8, got %f", cfg.Quality.MinConfidence)
	}
	if cfg.Quality.MinCoverage != 0.4 {
		t.Errorf("expected default min_coverage 0.4 to survive merge, got %f", cfg.Quality.MinCoverage)
	}
	if cfg.Output.DefaultFormat != "json" {
		t.Errorf("expected default output format to survive merge, got %s", cfg.Output.DefaultFormat)
	}
}

func TestLoadFromPathMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Quality.MinConfidence != DefaultConfig().Quality.MinConfidence {
		t.Fatal("expected defaults when config file is absent")
	}
}

func TestFindConfigDirWalksUpToAncestor(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ConfigDirName), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}

	found, err := FindConfigDir(nested)
	if err != nil {
		t.Fatalf("FindConfigDir: %v", err)
	}
	want := filepath.Join(root, ConfigDirName)
	if found != want {
		t.Fatalf("expected %s, got %s", want, found)
	}
}
