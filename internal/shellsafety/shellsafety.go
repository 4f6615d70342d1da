// Package shellsafety enforces the security boundary on the probe
// runner's bash-builtin fallback (spec.md §4.1, §9): a composed command
// line is only ever handed to `bash -lc` once it has cleared a
// metacharacter blacklist and, as a second, AST-level line of defense,
// a tree-sitter bash parse confirming it is a single simple command
// with no pipeline, substitution, or redirection.
package shellsafety

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
)

// metacharacters that must never reach bash -lc unescaped; checked
// unconditionally regardless of how the command line was assembled.
const metacharacters = "|;&$`(){}<>!'\"\\\n\r"

// Safe reports whether line may be passed to `bash -lc`. It first runs
// the cheap blacklist scan, then, if the grammar is available, parses
// the line and rejects anything whose AST is not a single simple
// command.
func Safe(line string) bool {
	if strings.ContainsAny(line, metacharacters) {
		return false
	}
	return astIsSimpleCommand(line)
}

// astIsSimpleCommand parses line with the bash grammar and confirms the
// program consists of exactly one simple_command node and nothing else
// (no pipeline, list, subshell, command_substitution, or redirection
// nodes). On parser failure we fail closed (reject).
func astIsSimpleCommand(line string) bool {
	parser := sitter.NewParser()
	parser.SetLanguage(bash.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(line))
	if err != nil || tree == nil {
		return false
	}
	root := tree.RootNode()
	if root == nil || root.HasError() {
		return false
	}

	// A clean "program" should contain exactly one child, and that
	// child must be a simple_command.
	if int(root.NamedChildCount()) != 1 {
		return false
	}
	child := root.NamedChild(0)
	if child.Type() != "simple_command" {
		return false
	}

	return !containsDisallowedNode(child)
}

var disallowedKinds = map[string]bool{
	"pipeline":              true,
	"command_substitution":  true,
	"process_substitution":  true,
	"file_redirect":         true,
	"subshell":               true,
	"list":                   true,
	"variable_assignment":    false, // allowed: env-style prefix assignments are benign
}

func containsDisallowedNode(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	if bad, known := disallowedKinds[n.Type()]; known && bad {
		return true
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if containsDisallowedNode(n.NamedChild(i)) {
			return true
		}
	}
	return false
}
