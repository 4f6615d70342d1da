package parser

import (
	"testing"

	"github.com/anthropics/cmdschema/internal/normalize"
)

func TestParseClapStyleInput(t *testing.T) {
	text := "USAGE: myapp [OPTIONS] <SUBCOMMAND>\nFLAGS:\n  -v, --verbose ...\nOPTIONS:\n  -c, --config <FILE> ...\nSUBCOMMANDS:\n  build   Build the project"
	lines := normalize.Lines(text)
	cands := Parse("myapp", lines)

	var haveVerbose, haveConfig, haveBuild bool
	for _, f := range cands.Flags {
		if f.Flag.Long == "--verbose" {
			haveVerbose = true
		}
		if f.Flag.Long == "--config" && f.Flag.TakesValue {
			haveConfig = true
		}
	}
	for _, s := range cands.Subcommands {
		if s.Name == "build" {
			haveBuild = true
		}
	}

	if !haveVerbose {
		t.Error("expected --verbose flag candidate")
	}
	if !haveConfig {
		t.Error("expected --config value-taking flag candidate")
	}
	if !haveBuild {
		t.Error("expected build subcommand candidate")
	}
}

func TestParseTmuxUsageLine(t *testing.T) {
	text := "usage: tmux [-2CDlNuVv] [-c shell-command] [-f file]"
	lines := normalize.Lines(text)
	cands := Parse("tmux", lines)

	shorts := map[string]bool{}
	for _, f := range cands.Flags {
		shorts[f.Flag.Short] = true
	}
	for _, want := range []string{"-2", "-C", "-D", "-l", "-N", "-u", "-V", "-v"} {
		if !shorts[want] {
			t.Errorf("expected short flag %s from compact cluster", want)
		}
	}
}

func TestParseNPMAllCommands(t *testing.T) {
	text := "All commands:\n    access, adduser, bugs,\n    cache, ci, completion"
	lines := normalize.Lines(text)
	cands := Parse("npm", lines)

	names := map[string]bool{}
	for _, s := range cands.Subcommands {
		names[s.Name] = true
	}
	for _, want := range []string{"access", "adduser", "bugs", "cache", "ci", "completion"} {
		if !names[want] {
			t.Errorf("expected subcommand %s", want)
		}
	}
}

func TestParseCobraAvailableCommands(t *testing.T) {
	text := "Available Commands:\n  serve    Start the server\n  version  Print the version\n\nFlags:\n  -v, --verbose   Enable verbose output\n\nUse \"mytool [command] --help\" for more information about a command."
	lines := normalize.Lines(text)
	cands := Parse("mytool", lines)

	names := map[string]bool{}
	for _, s := range cands.Subcommands {
		names[s.Name] = true
	}
	if !names["serve"] || !names["version"] {
		t.Errorf("expected serve and version subcommands, got %+v", cands.Subcommands)
	}
}
