package bundle

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeFilenameReplacesIllegalCharacters(t *testing.T) {
	if got := SanitizeFilename("git remote", ""); got != "git-remote.json" {
		t.Fatalf("got %q", got)
	}
}

func TestSanitizeFilenameFallsBackForSymbolicNames(t *testing.T) {
	if got := SanitizeFilename("[", ""); got != "lbracket.json" {
		t.Fatalf("got %q", got)
	}
	if got := SanitizeFilename("]", ""); got != "rbracket.json" {
		t.Fatalf("got %q", got)
	}
}

func TestSanitizeFilenameIncludesImplementation(t *testing.T) {
	if got := SanitizeFilename("grep", "gnu"); got != "grep__gnu.json" {
		t.Fatalf("got %q", got)
	}
}

func TestCollectSchemaPathsFromDirFiltersNonJSON(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "git.json")
	reportPath := filepath.Join(dir, "extraction-report.json")
	txtPath := filepath.Join(dir, "notes.txt")
	os.WriteFile(jsonPath, []byte("{}"), 0o644)
	os.WriteFile(reportPath, []byte("{}"), 0o644)
	os.WriteFile(txtPath, []byte("ignore"), 0o644)

	paths, err := CollectSchemaPaths([]string{dir})
	if err != nil {
		t.Fatalf("CollectSchemaPaths: %v", err)
	}
	if len(paths) != 1 || paths[0] != jsonPath {
		t.Fatalf("expected [%s], got %v", jsonPath, paths)
	}
}

func TestBundleSchemaFilesRejectsDuplicateCommands(t *testing.T) {
	dir := t.TempDir()
	raw := `{"command":"git","description":"Git tool","global_flags":[{"short":"-v","long":"--verbose","value":{"kind":"bool"}}],"source":"bootstrap","confidence":1.0}`

	fileA := filepath.Join(dir, "a.json")
	fileB := filepath.Join(dir, "b.json")
	os.WriteFile(fileA, []byte(raw), 0o644)
	os.WriteFile(fileB, []byte(raw), 0o644)

	_, err := BundleSchemaFiles([]string{fileA, fileB}, "1.0.0", "", "", "2026-07-31T00:00:00Z")
	if err == nil {
		t.Fatal("expected error for duplicate commands")
	}
}
