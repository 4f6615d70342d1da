package history

import (
	"testing"

	"github.com/anthropics/cmdschema/internal/schema"
)

func testHistory(t *testing.T) (*History, func()) {
	t.Helper()
	dir := t.TempDir()
	h, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return h, func() { h.Close() }
}

func TestRecordRunAndLog(t *testing.T) {
	h, cleanup := testHistory(t)
	defer cleanup()

	sch := schema.New("git", schema.SourceHelpCommand)
	sch.GlobalFlags = []schema.FlagSchema{schema.Boolean("-v", "--verbose")}
	sch.Confidence = 0.9

	if err := h.RecordRun("git", "1.0.0", sch, schema.TierHigh); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	entries, err := h.Log(5)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected at least one commit after RecordRun")
	}
}
