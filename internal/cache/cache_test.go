package cache

import (
	"testing"

	"github.com/anthropics/cmdschema/internal/schema"
)

func TestPutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	key := Key{Command: "git", ExecutablePath: "/usr/bin/git", MtimeSecs: 100, SizeBytes: 200, MinConfidenceBps: 5000, MinCoverageBps: 4000}
	sch := schema.New("git", schema.SourceHelpCommand)

	if err := c.Put(key, &sch, schema.ExtractionReport{Command: "git", Success: true}, "2.40.0", "--help"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	entry, ok := c.Get(key)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if entry.Schema.Command != "git" || entry.DetectedVersion != "2.40.0" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestGetMissesOnMtimeMismatch(t *testing.T) {
	dir := t.TempDir()
	c, _ := Open(dir)

	key := Key{Command: "git", ExecutablePath: "/usr/bin/git", MtimeSecs: 100, SizeBytes: 200}
	sch := schema.New("git", schema.SourceHelpCommand)
	c.Put(key, &sch, schema.ExtractionReport{}, "", "")

	mismatched := key
	mismatched.MtimeSecs = 999
	if _, ok := c.Get(mismatched); ok {
		t.Fatal("expected miss on mtime mismatch")
	}
}

func TestGetMissesOnPolicyThresholdMismatch(t *testing.T) {
	dir := t.TempDir()
	c, _ := Open(dir)

	key := Key{Command: "git", ExecutablePath: "/usr/bin/git", MinConfidenceBps: 5000}
	sch := schema.New("git", schema.SourceHelpCommand)
	c.Put(key, &sch, schema.ExtractionReport{}, "", "")

	mismatched := key
	mismatched.MinConfidenceBps = 6000
	if _, ok := c.Get(mismatched); ok {
		t.Fatal("expected miss on policy threshold mismatch")
	}
}

func TestGetMissesWhenEntryAbsent(t *testing.T) {
	dir := t.TempDir()
	c, _ := Open(dir)
	if _, ok := c.Get(Key{Command: "nope"}); ok {
		t.Fatal("expected miss for absent entry")
	}
}
