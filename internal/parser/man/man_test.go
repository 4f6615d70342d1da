package man

import "testing"

func TestTitleTokensSplitsOnHyphenOnly(t *testing.T) {
	tokens := TitleTokens("GIT-REBASE")
	if !tokens["git"] || !tokens["rebase"] {
		t.Fatalf("expected git and rebase tokens, got %v", tokens)
	}

	dotted := TitleTokens("git.remote.1")
	if len(dotted) != 1 || !dotted["git.remote.1"] {
		t.Fatalf("expected title to NOT split on dots, got %v", dotted)
	}
}

func TestExtractMdocFlagsAndPositionals(t *testing.T) {
	text := ".Dt GIT-REBASE 1\n.Sh SYNOPSIS\n.Ar upstream\n.Sh OPTIONS\n.It\n.Fl v\nverbose output\n"
	doc := ParseMdoc(text)
	cands := Extract(doc)

	foundUpstream := false
	for _, a := range cands.Args {
		if a.Arg.Name == "upstream" {
			foundUpstream = true
		}
	}
	if !foundUpstream {
		t.Fatalf("expected upstream positional, got %+v", cands.Args)
	}

	foundV := false
	for _, f := range cands.Flags {
		if f.Flag.Short == "-v" {
			foundV = true
		}
	}
	if !foundV {
		t.Fatalf("expected -v flag, got %+v", cands.Flags)
	}
}
