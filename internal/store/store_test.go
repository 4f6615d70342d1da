package store

import (
	"path/filepath"
	"testing"

	"github.com/anthropics/cmdschema/internal/schema"
)

func TestValidatePrefixRejectsIllegalCharacters(t *testing.T) {
	if err := ValidatePrefix("cx_"); err != nil {
		t.Fatalf("expected valid prefix, got %v", err)
	}
	if err := ValidatePrefix("cx-bad"); err == nil {
		t.Fatal("expected error for prefix containing a hyphen")
	}
}

func TestSaveCommandAndListCommandsRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "schemas.db")
	s, err := Open(dbPath, "cx_")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	sch := schema.New("git", schema.SourceHelpCommand)
	sch.GlobalFlags = []schema.FlagSchema{schema.Boolean("-v", "--verbose")}
	sch.Subcommands = []schema.SubcommandSchema{schema.NewSubcommand("commit")}

	if err := s.SaveCommand(sch); err != nil {
		t.Fatalf("SaveCommand: %v", err)
	}

	names, err := s.ListCommands()
	if err != nil {
		t.Fatalf("ListCommands: %v", err)
	}
	if len(names) != 1 || names[0] != "git" {
		t.Fatalf("expected [git], got %v", names)
	}

	status, err := s.MigrateStatus()
	if err != nil {
		t.Fatalf("MigrateStatus: %v", err)
	}
	if status.Commands != 1 || status.Flags != 1 || status.Subcommands != 1 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestSaveCommandReplacesExisting(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "schemas.db")
	s, err := Open(dbPath, "cx_")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	first := schema.New("git", schema.SourceHelpCommand)
	first.GlobalFlags = []schema.FlagSchema{schema.Boolean("-v", "--verbose")}
	if err := s.SaveCommand(first); err != nil {
		t.Fatalf("SaveCommand first: %v", err)
	}

	second := schema.New("git", schema.SourceHelpCommand)
	if err := s.SaveCommand(second); err != nil {
		t.Fatalf("SaveCommand second: %v", err)
	}

	status, err := s.MigrateStatus()
	if err != nil {
		t.Fatalf("MigrateStatus: %v", err)
	}
	if status.Commands != 1 || status.Flags != 0 {
		t.Fatalf("expected replaced row with no flags, got %+v", status)
	}
}

func TestMigrateDownDropsTables(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "schemas.db")
	s, err := Open(dbPath, "cx_")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.MigrateDown(); err != nil {
		t.Fatalf("MigrateDown: %v", err)
	}
	if _, err := s.ListCommands(); err == nil {
		t.Fatal("expected error querying dropped table")
	}
}
