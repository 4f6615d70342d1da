// Package merge groups candidates by canonical key, picks the
// best-confidence candidate per group, and tiers acceptance, per
// spec.md §4.5.
package merge

import (
	"regexp"
	"sort"
	"strings"

	"github.com/anthropics/cmdschema/internal/parser"
	"github.com/anthropics/cmdschema/internal/schema"
)

// Thresholds for tiering a group's best candidate.
const (
	HighThreshold   = 0.6
	MediumThreshold = 0.4
)

// Tier is the acceptance tier assigned to a merged candidate group.
type Tier int

const (
	Accepted Tier = iota
	Medium
	Discarded
)

var invalidFlagNameRe = regexp.MustCompile(`[\[\]/]`)

// isValidFlagSchema rejects invalid flag-name candidates (e.g. "-",
// "--", "---foo", names containing brackets or slashes) regardless of
// confidence.
func isValidFlagSchema(f schema.FlagSchema) bool {
	if f.Short == "" && f.Long == "" {
		return false
	}
	if f.Short != "" && (f.Short == "-" || invalidFlagNameRe.MatchString(f.Short)) {
		return false
	}
	if f.Long != "" {
		if f.Long == "--" || strings.HasPrefix(f.Long, "---") || invalidFlagNameRe.MatchString(f.Long) {
			return false
		}
	}
	return true
}

// GateResult is the outcome of merging one category's candidates:
// accepted items, medium-confidence diagnostic items, and a discard
// count.
type GateResult[T any] struct {
	Accepted []T
	Medium   []T
	Discarded int
}

// gate picks, for each canonical key, the candidate with the highest
// initial confidence and tiers it. Keys are visited in sorted order;
// among candidates tied on confidence the earliest in input order wins,
// so tied candidates that differ in other fields can yield a different
// pick when the input is permuted.
func gate[T any](keyed map[string][]scored[T]) GateResult[T] {
	var result GateResult[T]

	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		group := keyed[k]
		best := group[0]
		for _, g := range group[1:] {
			if g.confidence > best.confidence {
				best = g
			}
		}

		switch {
		case best.confidence >= HighThreshold:
			result.Accepted = append(result.Accepted, best.value)
		case best.confidence >= MediumThreshold:
			result.Medium = append(result.Medium, best.value)
		default:
			result.Discarded++
		}
	}

	return result
}

type scored[T any] struct {
	value      T
	confidence float64
}

// MergeFlags groups flag candidates by canonical key (long name if
// present else short), discards invalid flag names regardless of
// confidence, and tiers the rest.
func MergeFlags(cands []parser.FlagCandidate) GateResult[schema.FlagSchema] {
	keyed := make(map[string][]scored[schema.FlagSchema])
	discardedInvalid := 0

	for _, c := range cands {
		if !isValidFlagSchema(c.Flag) {
			discardedInvalid++
			continue
		}
		key := c.Flag.CanonicalKey()
		keyed[key] = append(keyed[key], scored[schema.FlagSchema]{value: c.Flag, confidence: c.Confidence})
	}

	result := gate(keyed)
	result.Discarded += discardedInvalid
	sort.Slice(result.Accepted, func(i, j int) bool {
		return result.Accepted[i].CanonicalKey() < result.Accepted[j].CanonicalKey()
	})
	sort.Slice(result.Medium, func(i, j int) bool {
		return result.Medium[i].CanonicalKey() < result.Medium[j].CanonicalKey()
	})
	return result
}

// MergeSubcommands groups subcommand candidates by lowercased name.
func MergeSubcommands(cands []parser.SubcommandCandidate) GateResult[schema.SubcommandSchema] {
	keyed := make(map[string][]scored[schema.SubcommandSchema])

	for _, c := range cands {
		key := strings.ToLower(c.Name)
		sub := schema.NewSubcommand(c.Name)
		sub.Description = c.Description
		keyed[key] = append(keyed[key], scored[schema.SubcommandSchema]{value: sub, confidence: c.Confidence})
	}

	result := gate(keyed)
	sort.Slice(result.Accepted, func(i, j int) bool { return result.Accepted[i].Name < result.Accepted[j].Name })
	sort.Slice(result.Medium, func(i, j int) bool { return result.Medium[i].Name < result.Medium[j].Name })
	return result
}

// MergeArgs groups positional-argument candidates by lowercased name.
func MergeArgs(cands []parser.ArgCandidate) GateResult[schema.ArgSchema] {
	keyed := make(map[string][]scored[schema.ArgSchema])

	for _, c := range cands {
		key := strings.ToLower(c.Arg.Name)
		keyed[key] = append(keyed[key], scored[schema.ArgSchema]{value: c.Arg, confidence: c.Confidence})
	}

	result := gate(keyed)
	sort.Slice(result.Accepted, func(i, j int) bool { return result.Accepted[i].Name < result.Accepted[j].Name })
	sort.Slice(result.Medium, func(i, j int) bool { return result.Medium[i].Name < result.Medium[j].Name })
	return result
}

// FinalizeSchema sorts all entity slices within a schema deterministically
// by canonical name, recursively for nested subcommands, so that
// permuting the input candidates yields byte-identical sorted output
// (spec invariant #4).
func FinalizeSchema(s *schema.CommandSchema) {
	sort.Slice(s.GlobalFlags, func(i, j int) bool {
		return s.GlobalFlags[i].CanonicalKey() < s.GlobalFlags[j].CanonicalKey()
	})
	sort.Slice(s.Positional, func(i, j int) bool { return s.Positional[i].Name < s.Positional[j].Name })
	sort.Slice(s.Subcommands, func(i, j int) bool { return s.Subcommands[i].Name < s.Subcommands[j].Name })
	for i := range s.Subcommands {
		finalizeSubcommand(&s.Subcommands[i])
	}
}

func finalizeSubcommand(s *schema.SubcommandSchema) {
	sort.Slice(s.Flags, func(i, j int) bool { return s.Flags[i].CanonicalKey() < s.Flags[j].CanonicalKey() })
	sort.Slice(s.Positional, func(i, j int) bool { return s.Positional[i].Name < s.Positional[j].Name })
	sort.Slice(s.Subcommands, func(i, j int) bool { return s.Subcommands[i].Name < s.Subcommands[j].Name })
	for i := range s.Subcommands {
		finalizeSubcommand(&s.Subcommands[i])
	}
}
