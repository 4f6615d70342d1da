// Package classify produces weighted format scores used to rank parser
// strategy order. The top format is reported for diagnostics but never
// alone decides extraction (spec.md §4.3).
package classify

import (
	"regexp"
	"strings"
)

// manSectionRe mirrors the probe runner's own man-page acceptance check
// (internal/probe.IsManPageOutput). Duplicated intentionally: the
// classifier's Man score is advisory ranking input only and must not
// become coupled to the probe's acceptance decision (see SPEC_FULL.md
// §4.3b).
var manSectionRe = regexp.MustCompile(`(?m)^[A-Z][A-Z0-9 ]{2,}$`)

func manBucket(text string) bool {
	matches := manSectionRe.FindAllString(text, -1)
	if len(matches) >= 2 {
		return true
	}
	lines := strings.SplitN(text, "\n", 2)
	return len(lines) > 0 && strings.Contains(lines[0], "(") && strings.Contains(lines[0], ")") && len(matches) >= 1
}

// Format is one of the recognized help-output idioms.
type Format string

const (
	Clap     Format = "clap"
	Cobra    Format = "cobra"
	GNU      Format = "gnu"
	Argparse Format = "argparse"
	Docopt   Format = "docopt"
	Man      Format = "man"
	Unknown  Format = "unknown"
)

// Scores maps each recognized format to its accumulated weight in
// [0, 1] (capped).
type Scores map[Format]float64

// Top returns the highest-scoring format, breaking ties by the fixed
// precedence order below (Clap, Cobra, Argparse, Docopt, GNU, Man),
// falling back to Unknown when nothing scored above zero.
func (s Scores) Top() Format {
	precedence := []Format{Clap, Cobra, Argparse, Docopt, GNU, Man}
	best := Unknown
	bestScore := 0.0
	for _, f := range precedence {
		if v := s[f]; v > bestScore {
			bestScore = v
			best = f
		}
	}
	return best
}

// Classify scores each format by accumulating weights from marker
// substrings found anywhere in the text. Matching is literal-case and
// additive per marker (not all-or-nothing), and each format's markers
// are scored independently of every other format's — this is the
// binding numeric contract of the original classify_formats
// (SPEC_FULL.md §4; original_source/discovery/src/parser/mod.rs
// classify_formats).
func Classify(text string) Scores {
	scores := make(Scores)
	scores[Unknown] = 0.05

	add := func(f Format, weight float64) {
		v := scores[f] + weight
		if v > 1 {
			v = 1
		}
		scores[f] = v
	}

	if strings.Contains(text, "USAGE:") {
		add(Clap, 0.35)
	}
	if strings.Contains(text, "FLAGS:") {
		add(Clap, 0.25)
	}
	if strings.Contains(text, "OPTIONS:") {
		add(Clap, 0.2)
	}
	if strings.Contains(text, "SUBCOMMANDS:") || strings.Contains(text, "Commands:") {
		add(Clap, 0.2)
	}

	if strings.Contains(text, "Available Commands:") {
		add(Cobra, 0.5)
	}
	if strings.Contains(text, "Use \"") && strings.Contains(text, "--help") {
		add(Cobra, 0.35)
	}
	if strings.Contains(text, "Flags:") {
		add(Cobra, 0.15)
	}

	if strings.Contains(text, "Usage:") {
		add(GNU, 0.25)
	}
	if strings.Contains(text, "--help") {
		add(GNU, 0.2)
	}
	if strings.Contains(text, "--version") {
		add(GNU, 0.2)
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "-") {
			add(GNU, 0.2)
			break
		}
	}

	if strings.Contains(text, "positional arguments:") {
		add(Argparse, 0.45)
	}
	if strings.Contains(text, "optional arguments:") {
		add(Argparse, 0.45)
	}

	if strings.HasPrefix(text, "Usage:") {
		add(Docopt, 0.75)
	}

	if manBucket(text) {
		add(Man, 0.5)
	}

	return scores
}
