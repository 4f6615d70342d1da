package mcpserver

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/anthropics/cmdschema/internal/schema"
)

func testPackage() schema.SchemaPackage {
	pkg := schema.NewPackage("1.0.0", "2026-07-31T00:00:00Z")

	git := schema.New("git", schema.SourceHelpCommand)
	git.GlobalFlags = []schema.FlagSchema{
		schema.Boolean("-v", "--verbose"),
		schema.Boolean("-q", "--quiet"),
	}
	git.Subcommands = []schema.SubcommandSchema{
		{
			Name:  "commit",
			Flags: []schema.FlagSchema{schema.Boolean("-a", "--all")},
		},
	}

	curl := schema.New("curl", schema.SourceHelpCommand)
	curl.GlobalFlags = []schema.FlagSchema{schema.Boolean("-s", "--silent")}

	pkg.Schemas = []schema.CommandSchema{git, curl}
	return pkg
}

func TestExecuteLookupFindsTopLevelCommand(t *testing.T) {
	s := &Server{pkg: testPackage()}

	out, err := s.executeLookup("git")
	if err != nil {
		t.Fatalf("executeLookup: %v", err)
	}
	var got schema.CommandSchema
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Command != "git" {
		t.Fatalf("expected git, got %q", got.Command)
	}
}

func TestExecuteLookupFindsSubcommand(t *testing.T) {
	s := &Server{pkg: testPackage()}

	out, err := s.executeLookup("git commit")
	if err != nil {
		t.Fatalf("executeLookup: %v", err)
	}
	var got schema.SubcommandSchema
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Name != "commit" {
		t.Fatalf("expected commit, got %q", got.Name)
	}
}

func TestExecuteLookupUnknownCommandErrors(t *testing.T) {
	s := &Server{pkg: testPackage()}
	if _, err := s.executeLookup("nosuchtool"); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestExecuteSearchFlagsMatchesAcrossCommands(t *testing.T) {
	s := &Server{pkg: testPackage()}

	out, err := s.executeSearchFlags("s", 20)
	if err != nil {
		t.Fatalf("executeSearchFlags: %v", err)
	}
	if !strings.Contains(out, "silent") && !strings.Contains(out, "verbose") {
		t.Fatalf("expected a match for 's', got %s", out)
	}
}

func TestExecuteSearchFlagsRespectsLimit(t *testing.T) {
	s := &Server{pkg: testPackage()}

	out, err := s.executeSearchFlags("", 1)
	if err != nil {
		t.Fatalf("executeSearchFlags: %v", err)
	}
	var result struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("expected count 1, got %d", result.Count)
	}
}

func TestExecuteListReturnsAllCommands(t *testing.T) {
	s := &Server{pkg: testPackage()}

	out, err := s.executeList()
	if err != nil {
		t.Fatalf("executeList: %v", err)
	}
	if !strings.Contains(out, "git") || !strings.Contains(out, "curl") {
		t.Fatalf("expected both commands listed, got %s", out)
	}
}

func TestNewRegistersDefaultTools(t *testing.T) {
	s, err := New(testPackage(), Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tools := s.ListTools()
	if len(tools) != 3 {
		t.Fatalf("expected 3 default tools, got %d: %v", len(tools), tools)
	}
}

func TestNewRejectsUnknownTool(t *testing.T) {
	if _, err := New(testPackage(), Config{Tools: []string{"not_a_tool"}}); err == nil {
		t.Fatal("expected error for unknown tool")
	}
}
