// Package semantic clusters flag and subcommand descriptions across a
// schema package to surface likely near-duplicates (e.g. a "--verbose"
// description in one tool and "--debug" in another that mean the same
// thing). It is diagnostic only: its output is appended to
// ExtractionReport.Warnings and never gates acceptance.
//
// The real implementation embeds descriptions with a local ONNX
// sentence-transformer via hugot and is built only under the "semantic"
// build tag, since it depends on a model file the operator must supply
// and is not vendored with the module. Without the tag, Cluster is a
// no-op so the rest of the pipeline never takes a hard dependency on a
// model being present.
package semantic

import (
	"context"
	"math"

	"github.com/anthropics/cmdschema/internal/schema"
)

// Hint is one surfaced near-duplicate pair, ready to be rendered as a
// warning string on the command that owns the second entry.
type Hint struct {
	Command     string
	EntryA      string
	EntryB      string
	Similarity  float64
}

// Warning renders the hint as the warning string form attached to an
// ExtractionReport.
func (h Hint) Warning() string {
	return "semantic: " + h.EntryA + " closely resembles " + h.EntryB
}

// descriptionEntry is one (command, flag-or-arg, description) triple
// pulled out of a schema package for embedding.
type descriptionEntry struct {
	command     string
	label       string
	description string
}

func collectDescriptions(pkg schema.SchemaPackage) []descriptionEntry {
	var out []descriptionEntry
	for _, cmd := range pkg.Schemas {
		for _, f := range cmd.GlobalFlags {
			if f.Description != "" {
				out = append(out, descriptionEntry{cmd.Command, cmd.Command + " " + f.CanonicalKey(), f.Description})
			}
		}
		collectSubcommandDescriptions(cmd.Command, cmd.Subcommands, &out)
	}
	return out
}

func collectSubcommandDescriptions(command string, subs []schema.SubcommandSchema, out *[]descriptionEntry) {
	for _, sub := range subs {
		for _, f := range sub.Flags {
			if f.Description != "" {
				*out = append(*out, descriptionEntry{command, command + " " + sub.Name + " " + f.CanonicalKey(), f.Description})
			}
		}
		collectSubcommandDescriptions(command, sub.Subcommands, out)
	}
}

// Cluster finds near-duplicate descriptions across pkg and returns one
// Hint per pair above the similarity threshold. Callers should treat a
// non-nil error as non-fatal: log it and continue without hints, since
// this package never influences extraction acceptance.
func Cluster(ctx context.Context, pkg schema.SchemaPackage) ([]Hint, error) {
	return cluster(ctx, pkg)
}

// Enabled reports whether this build was compiled with the "semantic"
// build tag and has a working embedder.
func Enabled() bool {
	return enabled()
}

// similarityThreshold is the cosine similarity above which two
// descriptions are reported as a near-duplicate pair. Chosen well above
// the baseline similarity of unrelated short sentences under
// all-MiniLM-style embeddings, to keep the hint list small and specific.
const similarityThreshold = 0.86

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
