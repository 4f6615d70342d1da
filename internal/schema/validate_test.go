package schema

import "testing"

func TestValidatePackageRejectsDuplicateCommands(t *testing.T) {
	pkg := NewPackage("1.0.0", "2026-02-07T00:00:00Z")
	pkg.Schemas = append(pkg.Schemas,
		New("git", SourceBootstrap),
		New("git", SourceBootstrap),
	)

	errs := ValidatePackage(pkg)
	if len(errs) != 1 || errs[0].Kind != DuplicateCommand || errs[0].Detail != "git" {
		t.Fatalf("expected single DuplicateCommand error, got %+v", errs)
	}
}

func TestValidateSchemaRejectsBadShortFlag(t *testing.T) {
	s := New("git", SourceBootstrap)
	s.GlobalFlags = append(s.GlobalFlags, WithValue("v", "--verbose", Bool()))

	errs := ValidateSchema(s)
	if len(errs) != 1 || errs[0].Kind != InvalidShortFlag {
		t.Fatalf("expected InvalidShortFlag error, got %+v", errs)
	}
}

func TestValidateSchemaRejectsSubcommandCycle(t *testing.T) {
	s := New("git", SourceBootstrap)
	remote := NewSubcommand("remote")
	remote.Subcommands = append(remote.Subcommands, NewSubcommand("git"))
	s.Subcommands = append(s.Subcommands, remote)

	errs := ValidateSchema(s)
	if len(errs) != 1 || errs[0].Kind != SubcommandCycle || errs[0].Detail != "git remote git" {
		t.Fatalf("expected SubcommandCycle error, got %+v", errs)
	}
}

func TestValidateSchemaAcceptsValidSchema(t *testing.T) {
	s := New("git", SourceBootstrap)
	s.GlobalFlags = append(s.GlobalFlags, Boolean("-v", "--verbose"))
	s.Subcommands = append(s.Subcommands, NewSubcommand("commit"))

	if errs := ValidateSchema(s); len(errs) != 0 {
		t.Fatalf("expected no errors, got %+v", errs)
	}
}

func TestEntityCountZeroForEmptySchema(t *testing.T) {
	s := New("nothing", SourceBootstrap)
	if s.EntityCount() != 0 {
		t.Fatalf("expected zero entities, got %d", s.EntityCount())
	}
}

func TestChoicePanicsOnEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on empty Choice")
		}
	}()
	Choice(nil)
}
