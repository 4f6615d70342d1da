package classify

import (
	"math"
	"testing"
)

func TestClassifyClapStyle(t *testing.T) {
	text := "USAGE: myapp [OPTIONS] <SUBCOMMAND>\nFLAGS:\n  -v, --verbose\nOPTIONS:\n  -c, --config <FILE>\n"
	scores := Classify(text)
	if scores.Top() != Clap {
		t.Fatalf("expected Clap top format, got %s (%v)", scores.Top(), scores)
	}
}

func TestClassifyCobraStyle(t *testing.T) {
	text := "Available Commands:\n  serve\n  version\nFlags:\n  -v, --verbose\nUse \"mytool [command] --help\" for more information."
	scores := Classify(text)
	if scores.Top() != Cobra {
		t.Fatalf("expected Cobra top format, got %s (%v)", scores.Top(), scores)
	}
}

func TestClassifyUnknownWhenNothingMatches(t *testing.T) {
	scores := Classify("this is just some prose with no structure at all")
	if scores.Top() != Unknown {
		t.Fatalf("expected Unknown, got %s", scores.Top())
	}
	if got := scores[Unknown]; got != 0.05 {
		t.Fatalf("expected Unknown baseline 0.05, got %v", got)
	}
}

func TestClassifyClapWeightsAreAdditivePerMarker(t *testing.T) {
	scores := Classify("USAGE: myapp\n")
	if got := scores[Clap]; got != 0.35 {
		t.Fatalf("expected Clap score 0.35 for USAGE: alone, got %v", got)
	}

	scores = Classify("USAGE: myapp\nFLAGS:\n")
	if got := scores[Clap]; got != 0.6 {
		t.Fatalf("expected Clap score 0.6 for USAGE:+FLAGS:, got %v", got)
	}

	scores = Classify("USAGE: myapp\nFLAGS:\nOPTIONS:\nSUBCOMMANDS:\n")
	if got := scores[Clap]; got != 1.0 {
		t.Fatalf("expected Clap score capped at 1.0 with all four markers, got %v", got)
	}
}

func TestClassifyClapMarkersAreLiteralCase(t *testing.T) {
	scores := Classify("usage: myapp\nflags:\noptions:\n")
	if got := scores[Clap]; got != 0 {
		t.Fatalf("expected lowercase markers not to score Clap, got %v", got)
	}
}

func TestClassifyGnuMarkersScoreIndependently(t *testing.T) {
	scores := Classify("Usage: myapp\n")
	if got := scores[GNU]; got != 0.25 {
		t.Fatalf("expected GNU score 0.25 for Usage: alone (not gated on --help/--version), got %v", got)
	}

	scores = Classify("Usage: myapp\n--help\n--version\n  -v\n")
	if got := scores[GNU]; math.Abs(got-0.85) > 1e-9 {
		t.Fatalf("expected GNU score 0.85 with all four markers (0.25+0.2+0.2+0.2), got %v", got)
	}
}

func TestClassifyArgparseMarkersScoreIndependently(t *testing.T) {
	scores := Classify("positional arguments:\n")
	if got := scores[Argparse]; got != 0.45 {
		t.Fatalf("expected Argparse score 0.45 for positional arguments: alone, got %v", got)
	}

	scores = Classify("positional arguments:\noptional arguments:\n")
	if got := scores[Argparse]; got != 0.9 {
		t.Fatalf("expected Argparse score 0.9 for both markers, got %v", got)
	}
}

func TestClassifyDocoptIsFlatWeight(t *testing.T) {
	scores := Classify("Usage: myapp [options]\n")
	if got := scores[Docopt]; got != 0.75 {
		t.Fatalf("expected Docopt flat weight 0.75, got %v", got)
	}

	scores = Classify("  Usage: myapp [options]\n")
	if got := scores[Docopt]; got != 0 {
		t.Fatalf("expected Docopt score 0 when Usage: is not at the start of the text, got %v", got)
	}
}

func TestClassifyManIsASeparateBucket(t *testing.T) {
	text := "MYTOOL(1)\n\nNAME\n    mytool - does a thing\n\nSYNOPSIS\n    mytool [options]\n"
	scores := Classify(text)
	if got := scores[Man]; got != 0.5 {
		t.Fatalf("expected Man score 0.5, got %v", got)
	}
	if scores[Clap] != 0 || scores[Cobra] != 0 {
		t.Fatalf("man-page markers should not also feed other format buckets: %v", scores)
	}
}
