// Package parser implements the competing parse strategies that turn a
// normalized help-text line stream into candidate flags, subcommands,
// and positional arguments (spec.md §4.4).
package parser

import "github.com/anthropics/cmdschema/internal/schema"

// Span identifies the source lines a candidate was derived from.
type Span struct {
	Start int
	End   int
}

// FlagCandidate is an unmerged flag parse result.
type FlagCandidate struct {
	Flag       schema.FlagSchema
	Span       Span
	Strategy   string
	Confidence float64
}

// SubcommandCandidate is an unmerged subcommand parse result.
type SubcommandCandidate struct {
	Name       string
	Description string
	Span       Span
	Strategy   string
	Confidence float64
}

// ArgCandidate is an unmerged positional-argument parse result.
type ArgCandidate struct {
	Arg        schema.ArgSchema
	Span       Span
	Strategy   string
	Confidence float64
}

// Candidates is the uniform output shape every strategy produces:
// three candidate vectors. Strategies are composable and order-
// independent in their side effects (SPEC_FULL.md §9).
type Candidates struct {
	Flags       []FlagCandidate
	Subcommands []SubcommandCandidate
	Args        []ArgCandidate
}

func (c *Candidates) merge(other Candidates) {
	c.Flags = append(c.Flags, other.Flags...)
	c.Subcommands = append(c.Subcommands, other.Subcommands...)
	c.Args = append(c.Args, other.Args...)
}
