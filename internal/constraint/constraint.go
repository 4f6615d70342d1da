// Package constraint extracts conflicts/requires/multiple relationships
// from accepted flag descriptions, per spec.md §4.7.
package constraint

import (
	"regexp"
	"strings"

	"github.com/anthropics/cmdschema/internal/schema"
)

var conflictMarkers = []string{
	"conflicts with", "cannot be used with", "mutually exclusive", "incompatible with", "overrides ",
}
var requirementMarkers = []string{
	"requires ", "must be used with", "only with", "equivalent to specifying both",
}
var multipleMarkers = []string{
	"multiple times", "may be repeated", "can be used multiple times", "repeatable",
}

var flagRefRe = regexp.MustCompile(`--[A-Za-z][A-Za-z0-9_.-]*|-[A-Za-z0-9]\b`)

// Apply scans every flag's description and populates ConflictsWith,
// Requires, and Multiple, removing self-references.
func Apply(flags []schema.FlagSchema) {
	for i := range flags {
		applyOne(&flags[i], flags[i].Description)
	}
}

func applyOne(f *schema.FlagSchema, description string) {
	lower := strings.ToLower(description)
	self := map[string]bool{}
	if f.Short != "" {
		self[f.Short] = true
	}
	if f.Long != "" {
		self[f.Long] = true
	}

	for _, marker := range conflictMarkers {
		if strings.Contains(lower, marker) {
			f.ConflictsWith = append(f.ConflictsWith, harvestRefs(description, self)...)
		}
	}
	for _, marker := range requirementMarkers {
		if strings.Contains(lower, marker) {
			f.Requires = append(f.Requires, harvestRefs(description, self)...)
		}
	}
	for _, marker := range multipleMarkers {
		if strings.Contains(lower, marker) {
			f.Multiple = true
		}
	}

	f.ConflictsWith = dedupe(f.ConflictsWith)
	f.Requires = dedupe(f.Requires)
}

func harvestRefs(description string, self map[string]bool) []string {
	var out []string
	for _, ref := range flagRefRe.FindAllString(description, -1) {
		if self[ref] {
			continue
		}
		out = append(out, ref)
	}
	return out
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
